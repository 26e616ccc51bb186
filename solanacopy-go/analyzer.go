package solanacopygo

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Analysis is the one verdict external callers consume: whether the observed
// transaction is a copyable swap, and if so everything the forger needs.
type Analysis struct {
	Copyable bool
	Reason   string

	Intent    *TradeIntent
	Platform  Platform
	ProgramID solana.PublicKey

	// Target is the selected trade instruction in literal form. RouterTrade
	// marks targets whose payload must be replayed byte-for-byte.
	Target      *CloningTarget
	CoreIndex   int
	RouterTrade bool

	// Matches keeps the full evidence list for diagnostics.
	Matches []PlatformMatch
}

// Analyzer orchestrates balance-delta classification and platform
// identification into one verdict. It is the only classification entry point
// external callers use.
type Analyzer struct {
	registry   *PlatformRegistry
	identifier *PlatformIdentifier
	resolver   *AddressTableResolver
	Log        *logrus.Logger
}

func NewAnalyzer(registry *PlatformRegistry) *Analyzer {
	return &Analyzer{
		registry:   registry,
		identifier: NewPlatformIdentifier(registry),
		Log:        newDefaultLogger(),
	}
}

// WithResolver lets Analyze expand unresolved lookup tables before
// classification.
func (a *Analyzer) WithResolver(resolver *AddressTableResolver) *Analyzer {
	a.resolver = resolver
	return a
}

// WithPoolLocator enables the platform identifier's migration override.
func (a *Analyzer) WithPoolLocator(pools PoolLocator) *Analyzer {
	a.identifier.WithPoolLocator(pools)
	return a
}

// Analyze classifies one transaction for the given trader. It never returns an
// error: every failure mode is a structured not-copyable verdict.
func (a *Analyzer) Analyze(ctx context.Context, record *TransactionRecord, trader solana.PublicKey) *Analysis {
	if record == nil {
		return &Analysis{Reason: "missing execution metadata"}
	}
	if !record.Succeeded {
		return &Analysis{Reason: "transaction failed on-chain"}
	}

	if len(record.TableReferences) > 0 && a.resolver != nil {
		keys, writable, unavailable := a.resolver.Resolve(ctx, record)
		record = record.WithExpandedKeys(keys, writable, unavailable)
	}

	intent, noSwapReason := ClassifyBalanceDeltas(record, trader)

	hintMint := solana.PublicKey{}
	if intent != nil {
		hintMint = intent.TradedMint()
	}
	matches := a.identifier.Identify(ctx, record, trader, hintMint)
	best := BestMatch(matches)

	if intent == nil {
		reason := fmt.Sprintf("no swap: %s", noSwapReason)
		if best == nil {
			reason = fmt.Sprintf("no swap (%s) and no known platform", noSwapReason)
		}
		return &Analysis{Reason: reason, Matches: matches}
	}

	if best == nil {
		// Forging needs the platform's instruction layout; guessing offsets
		// for an unrecognized program risks an invalid or unsafe instruction.
		return &Analysis{
			Reason:  "platform unrecognized",
			Intent:  intent,
			Matches: matches,
		}
	}

	a.refineIntent(record, intent, best)

	coreIndex := best.OriginIndex
	if coreIndex < 0 {
		coreIndex = DefaultCoreIndex(record)
	}

	target := best.Target
	if target == nil && coreIndex >= 0 && coreIndex < len(record.Instructions) {
		target = a.identifier.cloningTargetFrom(record, record.Instructions[coreIndex])
	}
	if target == nil {
		// Classification succeeded on balance evidence, but the trade
		// instruction's accounts never resolved (failed table fetch).
		return &Analysis{
			Reason:    "trade instruction accounts unavailable",
			Intent:    intent,
			Platform:  best.Platform,
			ProgramID: best.ProgramID,
			CoreIndex: coreIndex,
			Matches:   matches,
		}
	}

	return &Analysis{
		Copyable:    true,
		Reason:      "ok",
		Intent:      intent,
		Platform:    best.Platform,
		ProgramID:   best.ProgramID,
		Target:      target,
		CoreIndex:   coreIndex,
		RouterTrade: best.Confidence == ConfidenceRouter,
		Matches:     matches,
	}
}

// refineIntent replaces balance-delta-inferred mints with platform-specific
// extractions where one exists. Balance deltas can be ambiguous in multi-hop
// routes; the venue's own event or a fixed account position is authoritative.
func (a *Analyzer) refineIntent(record *TransactionRecord, intent *TradeIntent, best *PlatformMatch) {
	if best.OriginIndex < 0 {
		return
	}

	switch best.Platform {
	case PUMP_FUN:
		event, err := decodePumpfunTradeEvent(record, best.OriginIndex)
		if err != nil {
			a.Log.Warnf("failed to decode pump.fun trade event: %v", err)
		}
		if event != nil {
			if event.IsBuy {
				intent.OutputMint = event.Mint
			} else {
				intent.InputMint = event.Mint
			}
			return
		}
	case JUPITER:
		events, err := decodeJupiterRouteEvents(record, best.OriginIndex)
		if err != nil {
			a.Log.Warnf("failed to decode jupiter route events: %v", err)
		}
		if len(events) > 0 {
			first, last := events[0], events[len(events)-1]
			if intent.Type != TradeBuy {
				intent.InputMint = first.InputMint
			}
			if intent.Type != TradeSell {
				intent.OutputMint = last.OutputMint
			}
			return
		}
	}

	if best.Descriptor == nil || best.Descriptor.OutputMintIndex < 0 {
		return
	}
	instr := record.Instructions[best.OriginIndex]
	if best.Descriptor.OutputMintIndex >= len(instr.Accounts) {
		return
	}
	mint, ok := record.Account(instr.Accounts[best.Descriptor.OutputMintIndex])
	if !ok {
		return
	}
	if intent.Type == TradeSell {
		intent.InputMint = mint
	} else {
		intent.OutputMint = mint
	}
}

// TradedMint returns the non-SOL side of the intent.
func (i *TradeIntent) TradedMint() solana.PublicKey {
	if i.Type == TradeSell {
		return i.InputMint
	}
	return i.OutputMint
}

// DefaultCoreIndex picks the trade instruction when no explicit index is
// known: the last outer instruction that is not a compute-budget tweak.
// Observed convention, not a protocol guarantee; callers with better
// information should pass their own index to the forger.
func DefaultCoreIndex(record *TransactionRecord) int {
	for i := len(record.Instructions) - 1; i >= 0; i-- {
		programID, ok := record.Account(record.Instructions[i].ProgramIDIndex)
		if ok && programID.Equals(COMPUTE_BUDGET_PROGRAM_ID) {
			continue
		}
		return i
	}
	return -1
}
