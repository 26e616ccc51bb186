package solanacopygo

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// ForgeParams parameterizes one clone request. Amount is the substitute's own
// trade size in raw units; the caller decides sizing and slippage policy.
type ForgeParams struct {
	Substitute  solana.PublicKey
	Amount      uint64
	SlippageBps uint64

	// CoreIndex is the outer instruction carrying the economic trade.
	CoreIndex int

	// RouterTrade skips payload surgery entirely: a router's own accounting,
	// not its payload bytes, determines the traded amount.
	RouterTrade bool
}

// InstructionForger rebuilds a transaction's instruction list for a different
// signer: every account is mapped through the ForgingMap, associated-token-
// account creations are regenerated for the new owner, and the trade
// instruction's amount fields are rewritten where the platform's layout is
// verified.
type InstructionForger struct {
	registry *PlatformRegistry
	Log      *logrus.Logger
}

func NewInstructionForger(registry *PlatformRegistry) *InstructionForger {
	return &InstructionForger{
		registry: registry,
		Log:      newDefaultLogger(),
	}
}

// Forge produces a ready-to-sign instruction sequence replicating the
// original transaction's logic for the substitute signer. Original order is
// preserved; duplicate ATA creations collapse to the first occurrence.
func (f *InstructionForger) Forge(record *TransactionRecord, forgingMap ForgingMap, intent *TradeIntent, params ForgeParams) ([]solana.Instruction, error) {
	if len(forgingMap) == 0 {
		return nil, fmt.Errorf("forging map is empty")
	}
	if params.Substitute.IsZero() {
		return nil, fmt.Errorf("substitute signer is required")
	}
	if params.CoreIndex < 0 || params.CoreIndex >= len(record.Instructions) {
		return nil, fmt.Errorf("core instruction index %d out of range", params.CoreIndex)
	}

	forged := make([]solana.Instruction, 0, len(record.Instructions))
	seenATACreations := make(map[solana.PublicKey]bool)

	for i, instr := range record.Instructions {
		if !record.AccountsResolvable(instr) {
			return nil, fmt.Errorf("instruction %d accounts unavailable", i)
		}
		programID, _ := record.Account(instr.ProgramIDIndex)

		if programID.Equals(solana.SPLAssociatedTokenAccountProgramID) {
			creation, ata, err := f.rebuildATACreation(record, instr, forgingMap, params.Substitute)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			if seenATACreations[ata] {
				continue
			}
			seenATACreations[ata] = true
			forged = append(forged, creation)
			continue
		}

		data := make([]byte, len(instr.Data))
		copy(data, instr.Data)
		if i == params.CoreIndex && !params.RouterTrade {
			f.patchTradeData(programID, data, intent, params)
		}

		accounts := make(solana.AccountMetaSlice, 0, len(instr.Accounts))
		for _, accountIndex := range instr.Accounts {
			original, _ := record.Account(accountIndex)
			mapped := forgingMap.Resolve(original)
			accounts = append(accounts, &solana.AccountMeta{
				PublicKey:  mapped,
				IsWritable: record.IsWritableIndex(int(accountIndex)),
				IsSigner:   mapped.Equals(params.Substitute),
			})
		}

		forged = append(forged, solana.NewInstruction(programID, accounts, data))
	}

	return forged, nil
}

// rebuildATACreation replaces an associated-token-account creation with a
// freshly constructed one for the mapped owner. Remapping alone is not enough:
// the created account address is derived from the owner, so it has to be
// recomputed.
//
// ATA creation account layout: payer, ata, wallet, mint, system program,
// token program.
func (f *InstructionForger) rebuildATACreation(record *TransactionRecord, instr solana.CompiledInstruction, forgingMap ForgingMap, substitute solana.PublicKey) (solana.Instruction, solana.PublicKey, error) {
	if len(instr.Accounts) < 6 {
		return nil, solana.PublicKey{}, fmt.Errorf("ATA creation has %d accounts, want 6", len(instr.Accounts))
	}

	wallet, _ := record.Account(instr.Accounts[2])
	mint, _ := record.Account(instr.Accounts[3])
	systemProgram, _ := record.Account(instr.Accounts[4])
	tokenProgram, _ := record.Account(instr.Accounts[5])

	mappedWallet := forgingMap.Resolve(wallet)
	ata, err := deriveAssociatedTokenAccount(mappedWallet, mint, tokenProgram)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive ATA: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		{PublicKey: substitute, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsWritable: true},
		{PublicKey: mappedWallet},
		{PublicKey: mint},
		{PublicKey: systemProgram},
		{PublicKey: tokenProgram},
	}

	// Keep the original create/createIdempotent selector byte.
	data := make([]byte, len(instr.Data))
	copy(data, instr.Data)

	return solana.NewInstruction(solana.SPLAssociatedTokenAccountProgramID, accounts, data), ata, nil
}

// patchTradeData overwrites the amount and slippage-bound fields in place
// using the platform's verified offsets. Unknown layouts and short payloads
// keep their original bytes: corrupting an unverified layout is worse than
// submitting amounts that fail validation downstream.
func (f *InstructionForger) patchTradeData(programID solana.PublicKey, data []byte, intent *TradeIntent, params ForgeParams) {
	desc, ok := f.registry.Lookup(programID)
	if !ok || desc.AmountOffset < 0 || desc.LimitOffset < 0 {
		f.Log.Warnf("no verified payload layout for program %s, keeping original amounts", programID)
		return
	}
	if params.Amount == 0 {
		f.Log.Warnf("zero trade amount, keeping original amounts")
		return
	}
	if len(data) < desc.AmountOffset+8 || len(data) < desc.LimitOffset+8 {
		f.Log.Warnf("payload too short for %s layout (%d bytes), keeping original amounts", desc.Name, len(data))
		return
	}

	// A buy caps the maximum input spent, a sell floors the minimum output
	// received.
	var limit uint64
	if intent != nil && intent.Type == TradeBuy {
		limit = applyBps(params.Amount, 10_000+params.SlippageBps)
	} else {
		limit = applyBps(params.Amount, 10_000-params.SlippageBps)
	}

	binary.LittleEndian.PutUint64(data[desc.AmountOffset:], params.Amount)
	binary.LittleEndian.PutUint64(data[desc.LimitOffset:], limit)
}

// applyBps computes floor(amount * bps / 10000) without overflowing uint64.
func applyBps(amount, bps uint64) uint64 {
	return amount/10_000*bps + amount%10_000*bps/10_000
}
