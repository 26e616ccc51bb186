package solanacopygo

import (
	"bytes"
	"testing"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func testKeys(n int) solana.PublicKeySlice {
	keys := make(solana.PublicKeySlice, n)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}
	return keys
}

// newTestRecord builds a successful record over the given expanded keys with
// every account writable and the first account as the sole signer.
func newTestRecord(keys solana.PublicKeySlice) *TransactionRecord {
	writable := make([]bool, len(keys))
	for i := range writable {
		writable[i] = true
	}
	return &TransactionRecord{
		StaticKeys:            keys,
		AccountKeys:           keys,
		Writable:              writable,
		InnerInstructions:     make(map[int][]solana.CompiledInstruction),
		PreBalances:           make([]uint64, len(keys)),
		PostBalances:          make([]uint64, len(keys)),
		Succeeded:             true,
		numRequiredSignatures: 1,
	}
}

// setLamportDelta sets the pre/post lamport balances of one account.
func setLamportDelta(record *TransactionRecord, index int, pre, post uint64) {
	record.PreBalances[index] = pre
	record.PostBalances[index] = post
}

func tokenBalanceEntry(owner, mint solana.PublicKey, raw uint64, decimals uint8) TokenBalance {
	return TokenBalance{
		Owner:     owner,
		Mint:      mint,
		RawAmount: raw,
		Decimals:  decimals,
	}
}

func encodePumpfunTradeEvent(t *testing.T, event PumpfunTradeEvent) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, ag_binary.NewBorshEncoder(buf).Encode(event))
	return append(append([]byte{}, PumpfunTradeEventDiscriminator[:]...), buf.Bytes()...)
}

func encodeJupiterSwapEvent(t *testing.T, event JupiterSwapEvent) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, ag_binary.NewBorshEncoder(buf).Encode(event))
	return append(append([]byte{}, JupiterRouteEventDiscriminator[:]...), buf.Bytes()...)
}
