package solanacopygo

import (
	"context"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// MatchConfidence ranks the evidence source a platform match came from.
type MatchConfidence int

const (
	ConfidenceLog MatchConfidence = iota + 1
	ConfidenceInner
	ConfidenceOuter
	ConfidenceRouter
)

// CloningTarget is the specific instruction selected as the trade instruction,
// lifted out of compact form so the forger can apply account substitution and
// payload surgery to it.
type CloningTarget struct {
	ProgramID solana.PublicKey
	Accounts  []*solana.AccountMeta
	Data      []byte
}

// PlatformMatch is one piece of platform evidence. OriginIndex is the outer
// instruction the evidence came from, -1 for log-only evidence.
type PlatformMatch struct {
	Platform    Platform
	ProgramID   solana.PublicKey
	Confidence  MatchConfidence
	OriginIndex int
	Descriptor  *PlatformDescriptor

	// Target is set for router matches, where the matched outer instruction
	// itself is the thing to replay.
	Target *CloningTarget

	// MigratedFrom keeps the originally matched venue name when the migration
	// override substituted another one.
	MigratedFrom Platform
}

// MigratedPool is a pool-lookup collaborator's answer: the venue a mint trades
// on now.
type MigratedPool struct {
	Platform  Platform
	ProgramID solana.PublicKey
	PoolID    solana.PublicKey
}

// PoolLocator reports whether a mint has migrated to a different venue than
// the one observed in the transaction, e.g. a bonding-curve token that now
// trades on its AMM.
type PoolLocator interface {
	FindMigratedPool(ctx context.Context, mint solana.PublicKey) (*MigratedPool, error)
}

// PlatformIdentifier fuses program-id evidence from outer instructions, inner
// instructions and invocation-trace log lines into an ordered list of platform
// matches.
type PlatformIdentifier struct {
	registry *PlatformRegistry
	pools    PoolLocator
	Log      *logrus.Logger
}

func NewPlatformIdentifier(registry *PlatformRegistry) *PlatformIdentifier {
	return &PlatformIdentifier{
		registry: registry,
		Log:      newDefaultLogger(),
	}
}

// WithPoolLocator enables the migration override pass.
func (pi *PlatformIdentifier) WithPoolLocator(pools PoolLocator) *PlatformIdentifier {
	pi.pools = pools
	return pi
}

// Identify collects platform evidence from every source and returns matches
// ordered best-first. hintMint, when nonzero, is the traded mint used for the
// migration override; pass the zero key to skip it.
//
// A router match short-circuits everything else: if a known router's outer
// instruction references the trader, that instruction is the one to replay and
// the exchanges it called internally are irrelevant.
func (pi *PlatformIdentifier) Identify(ctx context.Context, record *TransactionRecord, trader solana.PublicKey, hintMint solana.PublicKey) []PlatformMatch {
	if match := pi.matchRouter(record, trader); match != nil {
		return []PlatformMatch{*match}
	}

	var matches []PlatformMatch
	matches = append(matches, pi.matchOuter(record)...)
	matches = append(matches, pi.matchInner(record)...)
	matches = append(matches, pi.matchTrace(record)...)

	// Priority order, higher first; stable sort keeps first-seen order for
	// ties. Unknown-program trace entries carry no descriptor and sink to the
	// bottom.
	sort.SliceStable(matches, func(i, j int) bool {
		return matchPriority(matches[i]) > matchPriority(matches[j])
	})

	if len(matches) > 0 && !hintMint.IsZero() {
		pi.applyMigrationOverride(ctx, &matches[0], hintMint)
	}

	return matches
}

func matchPriority(match PlatformMatch) int {
	if match.Descriptor == nil {
		return -1
	}
	return match.Descriptor.Priority
}

// BestMatch returns the first recognized match, nil when only unknown-program
// evidence was collected.
func BestMatch(matches []PlatformMatch) *PlatformMatch {
	for i := range matches {
		if matches[i].Platform != UNKNOWN {
			return &matches[i]
		}
	}
	return nil
}

func (pi *PlatformIdentifier) matchRouter(record *TransactionRecord, trader solana.PublicKey) *PlatformMatch {
	for i, instr := range record.Instructions {
		programID, ok := record.Account(instr.ProgramIDIndex)
		if !ok {
			continue
		}
		desc, ok := pi.registry.Lookup(programID)
		if !ok || !desc.Router {
			continue
		}
		// The router requires the trader as a signer, so the trader must
		// appear among the instruction's referenced accounts.
		if !instructionReferences(record, instr, trader) {
			continue
		}
		target := pi.cloningTargetFrom(record, instr)
		if target == nil {
			continue
		}
		pi.Log.Debugf("router %s matched at instruction %d", desc.Name, i)
		return &PlatformMatch{
			Platform:    desc.Name,
			ProgramID:   programID,
			Confidence:  ConfidenceRouter,
			OriginIndex: i,
			Descriptor:  desc,
			Target:      target,
		}
	}
	return nil
}

func (pi *PlatformIdentifier) matchOuter(record *TransactionRecord) []PlatformMatch {
	var matches []PlatformMatch
	for i, instr := range record.Instructions {
		programID, ok := record.Account(instr.ProgramIDIndex)
		if !ok {
			continue
		}
		desc, ok := pi.registry.Lookup(programID)
		if !ok || desc.Router {
			continue
		}
		matches = append(matches, PlatformMatch{
			Platform:    desc.Name,
			ProgramID:   programID,
			Confidence:  ConfidenceOuter,
			OriginIndex: i,
			Descriptor:  desc,
		})
	}
	return matches
}

// matchInner looks past aggregator wrappers at the programs the outer
// instruction actually invoked.
func (pi *PlatformIdentifier) matchInner(record *TransactionRecord) []PlatformMatch {
	var matches []PlatformMatch
	for _, group := range sortedInnerGroups(record) {
		for _, instr := range group.instructions {
			programID, ok := record.Account(instr.ProgramIDIndex)
			if !ok {
				continue
			}
			desc, ok := pi.registry.Lookup(programID)
			if !ok || desc.Router {
				continue
			}
			matches = append(matches, PlatformMatch{
				Platform:    desc.Name,
				ProgramID:   programID,
				Confidence:  ConfidenceInner,
				OriginIndex: group.outerIndex,
				Descriptor:  desc,
			})
		}
	}
	return matches
}

func (pi *PlatformIdentifier) matchTrace(record *TransactionRecord) []PlatformMatch {
	var matches []PlatformMatch
	for _, entry := range parseInvocationTrace(record.LogMessages, pi.registry) {
		if !entry.Known {
			matches = append(matches, PlatformMatch{
				Platform:    UNKNOWN,
				ProgramID:   entry.Program,
				Confidence:  ConfidenceLog,
				OriginIndex: -1,
			})
			continue
		}
		desc, _ := pi.registry.Lookup(entry.Program)
		if desc.Router {
			continue
		}
		matches = append(matches, PlatformMatch{
			Platform:    desc.Name,
			ProgramID:   entry.Program,
			Confidence:  ConfidenceLog,
			OriginIndex: -1,
			Descriptor:  desc,
		})
	}
	return matches
}

// applyMigrationOverride swaps the selected venue when the pool-lookup
// collaborator reports the mint now trades elsewhere. The original venue name
// is retained for diagnostics.
func (pi *PlatformIdentifier) applyMigrationOverride(ctx context.Context, match *PlatformMatch, mint solana.PublicKey) {
	if pi.pools == nil {
		return
	}
	pool, err := pi.pools.FindMigratedPool(ctx, mint)
	if err != nil {
		pi.Log.Warnf("pool lookup for %s failed: %v", mint, err)
		return
	}
	if pool == nil || pool.Platform == match.Platform {
		return
	}

	pi.Log.Debugf("mint %s migrated: %s -> %s", mint, match.Platform, pool.Platform)
	match.MigratedFrom = match.Platform
	match.Platform = pool.Platform
	match.ProgramID = pool.ProgramID
	if desc, ok := pi.registry.Lookup(pool.ProgramID); ok {
		match.Descriptor = desc
	}
}

// cloningTargetFrom lifts a compiled instruction into literal form. Returns
// nil when any referenced account is unavailable after a failed table fetch.
func (pi *PlatformIdentifier) cloningTargetFrom(record *TransactionRecord, instr solana.CompiledInstruction) *CloningTarget {
	if !record.AccountsResolvable(instr) {
		pi.Log.Warnf("instruction accounts unavailable, cannot build cloning target")
		return nil
	}

	programID, _ := record.Account(instr.ProgramIDIndex)
	accounts := make([]*solana.AccountMeta, 0, len(instr.Accounts))
	for _, accountIndex := range instr.Accounts {
		key, _ := record.Account(accountIndex)
		accounts = append(accounts, &solana.AccountMeta{
			PublicKey:  key,
			IsSigner:   record.IsSignerIndex(int(accountIndex)),
			IsWritable: record.IsWritableIndex(int(accountIndex)),
		})
	}

	data := make([]byte, len(instr.Data))
	copy(data, instr.Data)

	return &CloningTarget{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
	}
}

func instructionReferences(record *TransactionRecord, instr solana.CompiledInstruction, key solana.PublicKey) bool {
	for _, accountIndex := range instr.Accounts {
		account, ok := record.Account(accountIndex)
		if ok && account.Equals(key) {
			return true
		}
	}
	return false
}

type innerGroup struct {
	outerIndex   int
	instructions []solana.CompiledInstruction
}

// sortedInnerGroups returns inner instruction groups in outer-index order so
// evidence collection stays deterministic.
func sortedInnerGroups(record *TransactionRecord) []innerGroup {
	groups := make([]innerGroup, 0, len(record.InnerInstructions))
	for outerIndex, instructions := range record.InnerInstructions {
		groups = append(groups, innerGroup{outerIndex: outerIndex, instructions: instructions})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].outerIndex < groups[j].outerIndex })
	return groups
}
