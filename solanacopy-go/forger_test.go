package solanacopygo

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pumpfunTradePayload(amount, limit uint64) []byte {
	data := make([]byte, 24)
	copy(data, []byte{102, 6, 61, 18, 1, 218, 235, 234})
	binary.LittleEndian.PutUint64(data[8:], amount)
	binary.LittleEndian.PutUint64(data[16:], limit)
	return data
}

func instructionData(t *testing.T, instr solana.Instruction) []byte {
	t.Helper()
	data, err := instr.Data()
	require.NoError(t, err)
	return data
}

func TestForgeValidation(t *testing.T) {
	keys := testKeys(3)
	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0, 1}},
	}

	forger := NewInstructionForger(DefaultRegistry())

	_, err := forger.Forge(record, ForgingMap{}, nil, ForgeParams{Substitute: keys[1]})
	assert.Error(t, err)

	forgingMap := ForgingMap{keys[0]: keys[1]}

	_, err = forger.Forge(record, forgingMap, nil, ForgeParams{})
	assert.Error(t, err)

	_, err = forger.Forge(record, forgingMap, nil, ForgeParams{Substitute: keys[1], CoreIndex: 5})
	assert.Error(t, err)
}

func TestForgeUnresolvableAccounts(t *testing.T) {
	keys := testKeys(3)
	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0, 99}},
	}

	forger := NewInstructionForger(DefaultRegistry())
	_, err := forger.Forge(record, ForgingMap{keys[0]: keys[1]}, nil, ForgeParams{Substitute: keys[1]})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accounts unavailable")
}

func TestForgeRemapsAccountsAndSignerFlags(t *testing.T) {
	keys := testKeys(4)
	trader, substitute, pool := keys[0], keys[3], keys[1]

	record := newTestRecord(keys)
	record.Writable[1] = false
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0, 1}, Data: solana.Base58{5, 6}},
	}

	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, ForgingMap{trader: substitute}, nil, ForgeParams{
		Substitute: substitute,
		Amount:     1,
	})
	require.NoError(t, err)
	require.Len(t, forged, 1)

	accounts := forged[0].Accounts()
	require.Len(t, accounts, 2)

	assert.Equal(t, substitute, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)

	assert.Equal(t, pool, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsSigner)
	assert.False(t, accounts[1].IsWritable)

	// Unknown program layout, so the payload bytes survive untouched.
	assert.Equal(t, []byte{5, 6}, instructionData(t, forged[0]))
	assert.Equal(t, keys[2], forged[0].ProgramID())
}

func TestForgeIdentityRoundTrip(t *testing.T) {
	keys := testKeys(4)
	trader := keys[0]

	record := newTestRecord(keys)
	record.Writable[2] = false
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 3, Accounts: []uint16{0, 1}, Data: solana.Base58{1, 2, 3}},
		{ProgramIDIndex: 3, Accounts: []uint16{2, 0}, Data: solana.Base58{4, 5}},
	}

	// Substituting the trader for itself with no amount to patch must
	// reproduce the original instructions byte for byte.
	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, ForgingMap{trader: trader}, nil, ForgeParams{
		Substitute: trader,
		CoreIndex:  1,
	})
	require.NoError(t, err)
	require.Len(t, forged, len(record.Instructions))

	for i, instr := range record.Instructions {
		programID, _ := record.Account(instr.ProgramIDIndex)
		assert.Equal(t, programID, forged[i].ProgramID())
		assert.Equal(t, []byte(instr.Data), instructionData(t, forged[i]))

		accounts := forged[i].Accounts()
		require.Len(t, accounts, len(instr.Accounts))
		for j, accountIndex := range instr.Accounts {
			original, _ := record.Account(accountIndex)
			assert.Equal(t, original, accounts[j].PublicKey)
			assert.Equal(t, record.IsWritableIndex(int(accountIndex)), accounts[j].IsWritable)
			assert.Equal(t, original.Equals(trader), accounts[j].IsSigner)
		}
	}
}

func TestForgePatchesPumpfunBuyPayload(t *testing.T) {
	keys := testKeys(2)
	trader, substitute := keys[0], keys[1]
	keys = append(keys, PUMP_FUN_PROGRAM_ID)

	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0}, Data: solana.Base58(pumpfunTradePayload(999, 999))},
	}

	intent := &TradeIntent{Type: TradeBuy}
	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, ForgingMap{trader: substitute}, intent, ForgeParams{
		Substitute:  substitute,
		Amount:      2_000_000,
		SlippageBps: 500,
	})
	require.NoError(t, err)
	require.Len(t, forged, 1)

	data := instructionData(t, forged[0])
	require.Len(t, data, 24)

	// Discriminator untouched, amount replaced, limit padded up by the
	// slippage for a buy.
	assert.Equal(t, pumpfunTradePayload(999, 999)[:8], data[:8])
	assert.Equal(t, uint64(2_000_000), binary.LittleEndian.Uint64(data[8:]))
	assert.Equal(t, uint64(2_100_000), binary.LittleEndian.Uint64(data[16:]))
}

func TestForgePatchesPumpfunSellPayload(t *testing.T) {
	keys := testKeys(2)
	trader, substitute := keys[0], keys[1]
	keys = append(keys, PUMP_FUN_PROGRAM_ID)

	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0}, Data: solana.Base58(pumpfunTradePayload(999, 999))},
	}

	intent := &TradeIntent{Type: TradeSell}
	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, ForgingMap{trader: substitute}, intent, ForgeParams{
		Substitute:  substitute,
		Amount:      2_000_000,
		SlippageBps: 500,
	})
	require.NoError(t, err)

	data := instructionData(t, forged[0])
	assert.Equal(t, uint64(2_000_000), binary.LittleEndian.Uint64(data[8:]))
	assert.Equal(t, uint64(1_900_000), binary.LittleEndian.Uint64(data[16:]))
}

func TestForgeKeepsShortPayload(t *testing.T) {
	keys := testKeys(2)
	trader, substitute := keys[0], keys[1]
	keys = append(keys, PUMP_FUN_PROGRAM_ID)

	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0}, Data: solana.Base58{1, 2, 3, 4}},
	}

	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, ForgingMap{trader: substitute}, &TradeIntent{Type: TradeBuy}, ForgeParams{
		Substitute:  substitute,
		Amount:      2_000_000,
		SlippageBps: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, instructionData(t, forged[0]))
}

func TestForgeRouterSkipsPayloadSurgery(t *testing.T) {
	keys := testKeys(2)
	trader, substitute := keys[0], keys[1]
	keys = append(keys, PUMP_FUN_PROGRAM_ID)

	original := pumpfunTradePayload(999, 999)
	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0}, Data: solana.Base58(original)},
	}

	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, ForgingMap{trader: substitute}, &TradeIntent{Type: TradeBuy}, ForgeParams{
		Substitute:  substitute,
		Amount:      2_000_000,
		SlippageBps: 500,
		RouterTrade: true,
	})
	require.NoError(t, err)
	assert.Equal(t, original, instructionData(t, forged[0]))
}

func TestForgeZeroAmountKeepsPayload(t *testing.T) {
	keys := testKeys(2)
	trader, substitute := keys[0], keys[1]
	keys = append(keys, PUMP_FUN_PROGRAM_ID)

	original := pumpfunTradePayload(999, 777)
	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0}, Data: solana.Base58(original)},
	}

	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, ForgingMap{trader: substitute}, &TradeIntent{Type: TradeBuy}, ForgeParams{
		Substitute: substitute,
	})
	require.NoError(t, err)
	assert.Equal(t, original, instructionData(t, forged[0]))
}

func TestForgeRebuildsATACreation(t *testing.T) {
	keys := testKeys(3)
	trader, substitute, mint := keys[0], keys[1], keys[2]

	traderATA, err := deriveAssociatedTokenAccount(trader, mint, solana.TokenProgramID)
	require.NoError(t, err)
	substituteATA, err := deriveAssociatedTokenAccount(substitute, mint, solana.TokenProgramID)
	require.NoError(t, err)

	accountKeys := solana.PublicKeySlice{
		trader, traderATA, mint,
		solana.SystemProgramID, solana.TokenProgramID,
		solana.SPLAssociatedTokenAccountProgramID,
		PUMP_FUN_PROGRAM_ID,
	}

	ataCreation := solana.CompiledInstruction{
		ProgramIDIndex: 5,
		// payer, ata, wallet, mint, system program, token program
		Accounts: []uint16{0, 1, 0, 2, 3, 4},
		Data:     solana.Base58{1},
	}

	record := newTestRecord(accountKeys)
	record.Instructions = []solana.CompiledInstruction{
		ataCreation,
		ataCreation,
		{ProgramIDIndex: 6, Accounts: []uint16{0, 1}, Data: solana.Base58(pumpfunTradePayload(999, 999))},
	}

	forgingMap := ForgingMap{trader: substitute, traderATA: substituteATA}
	forger := NewInstructionForger(DefaultRegistry())
	forged, err := forger.Forge(record, forgingMap, &TradeIntent{Type: TradeBuy}, ForgeParams{
		Substitute:  substitute,
		Amount:      1_000_000,
		SlippageBps: 100,
		CoreIndex:   2,
	})
	require.NoError(t, err)

	// The duplicate creation collapses, the trade instruction survives.
	require.Len(t, forged, 2)

	creation := forged[0]
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, creation.ProgramID())
	accounts := creation.Accounts()
	require.Len(t, accounts, 6)

	assert.Equal(t, substitute, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)

	assert.Equal(t, substituteATA, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)

	assert.Equal(t, substitute, accounts[2].PublicKey)
	assert.Equal(t, mint, accounts[3].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[4].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)

	// Create/createIdempotent selector byte is preserved.
	assert.Equal(t, []byte{1}, instructionData(t, creation))

	trade := forged[1]
	tradeAccounts := trade.Accounts()
	assert.Equal(t, substitute, tradeAccounts[0].PublicKey)
	assert.Equal(t, substituteATA, tradeAccounts[1].PublicKey)
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(instructionData(t, trade)[8:]))
}

func TestForgeRejectsMalformedATACreation(t *testing.T) {
	keys := testKeys(2)
	trader, substitute := keys[0], keys[1]
	keys = append(keys, solana.SPLAssociatedTokenAccountProgramID)

	record := newTestRecord(keys)
	record.Instructions = []solana.CompiledInstruction{
		{ProgramIDIndex: 2, Accounts: []uint16{0, 1}},
	}

	forger := NewInstructionForger(DefaultRegistry())
	_, err := forger.Forge(record, ForgingMap{trader: substitute}, nil, ForgeParams{Substitute: substitute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ATA creation")
}

func TestApplyBps(t *testing.T) {
	assert.Equal(t, uint64(2_100_000), applyBps(2_000_000, 10_500))
	assert.Equal(t, uint64(1_900_000), applyBps(2_000_000, 9_500))
	assert.Equal(t, uint64(10_498), applyBps(9_999, 10_500))
	assert.Equal(t, uint64(0), applyBps(0, 10_500))

	// A naive amount*bps product would overflow here.
	assert.Equal(t, uint64(17_850_000_000_000_000_000), applyBps(17_000_000_000_000_000_000, 10_500))
}
