package solanacopygo

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// TradeIntent is the resolved economic effect of one classified swap. It is
// produced once per transaction and consumed immediately by the forger.
type TradeIntent struct {
	Type TradeType

	InputMint  solana.PublicKey
	OutputMint solana.PublicKey

	InputAmountRaw  uint64
	OutputAmountRaw uint64

	// TokenDecimals are the decimals of the non-SOL side (output for a buy,
	// input for a sell).
	TokenDecimals uint8
}

const solDecimals = 9

// InputAmountUI returns the input amount scaled to whole units.
func (i *TradeIntent) InputAmountUI() decimal.Decimal {
	return scaleRaw(i.InputAmountRaw, i.inputDecimals())
}

// OutputAmountUI returns the output amount scaled to whole units.
func (i *TradeIntent) OutputAmountUI() decimal.Decimal {
	return scaleRaw(i.OutputAmountRaw, i.outputDecimals())
}

func (i *TradeIntent) inputDecimals() uint8 {
	if i.Type == TradeBuy {
		return solDecimals
	}
	return i.TokenDecimals
}

func (i *TradeIntent) outputDecimals() uint8 {
	if i.Type == TradeSell {
		return solDecimals
	}
	return i.TokenDecimals
}

func scaleRaw(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(raw).Shift(-int32(decimals))
}

// ClassifyBalanceDeltas infers swap direction, tokens and amounts from the
// trader's lamport delta and per-mint token deltas. It returns a nil intent
// plus the reason the classification refused when no single-direction swap is
// visible; any nonzero movement counts, there is no minimum-size floor.
func ClassifyBalanceDeltas(record *TransactionRecord, trader solana.PublicKey) (*TradeIntent, string) {
	traderIndex := record.AccountIndex(trader)
	if traderIndex < 0 {
		return nil, "trader not present"
	}
	if traderIndex >= len(record.PreBalances) || traderIndex >= len(record.PostBalances) {
		return nil, "trader balances missing"
	}

	solDelta := int64(record.PostBalances[traderIndex]) - int64(record.PreBalances[traderIndex])

	mintDeltas, decimalsByMint := accumulateTokenDeltas(record, trader)

	positives := make([]solana.PublicKey, 0, 1)
	negatives := make([]solana.PublicKey, 0, 1)
	for mint, delta := range mintDeltas {
		switch {
		case delta > 0:
			positives = append(positives, mint)
		case delta < 0:
			negatives = append(negatives, mint)
		}
	}

	switch {
	case solDelta < 0 && len(positives) == 1:
		mint := positives[0]
		return &TradeIntent{
			Type:            TradeBuy,
			InputMint:       NATIVE_SOL_MINT_PROGRAM_ID,
			OutputMint:      mint,
			InputAmountRaw:  uint64(-solDelta),
			OutputAmountRaw: uint64(mintDeltas[mint]),
			TokenDecimals:   decimalsByMint[mint],
		}, ""

	case solDelta > 0 && len(negatives) == 1:
		mint := negatives[0]
		return &TradeIntent{
			Type:            TradeSell,
			InputMint:       mint,
			OutputMint:      NATIVE_SOL_MINT_PROGRAM_ID,
			InputAmountRaw:  uint64(-mintDeltas[mint]),
			OutputAmountRaw: uint64(solDelta),
			TokenDecimals:   decimalsByMint[mint],
		}, ""

	case solDelta == 0 && len(positives) == 1 && len(negatives) == 1 && !positives[0].Equals(negatives[0]):
		in, out := negatives[0], positives[0]
		return &TradeIntent{
			Type:            TradeTokenForToken,
			InputMint:       in,
			OutputMint:      out,
			InputAmountRaw:  uint64(-mintDeltas[in]),
			OutputAmountRaw: uint64(mintDeltas[out]),
			TokenDecimals:   decimalsByMint[out],
		}, ""
	}

	if solDelta == 0 && len(positives) == 0 && len(negatives) == 0 {
		return nil, "no balance movement"
	}
	if len(positives) > 1 || len(negatives) > 1 {
		// Refuse to guess among several candidate mints rather than pick one
		// arbitrarily.
		return nil, fmt.Sprintf("ambiguous token deltas (%d gained, %d lost)", len(positives), len(negatives))
	}
	return nil, fmt.Sprintf("no single-direction swap (sol delta %d, %d mints gained, %d lost)", solDelta, len(positives), len(negatives))
}

// accumulateTokenDeltas nets the trader-owned token balance changes per mint.
// Wrapped SOL is folded out: its movement is already visible in the lamport
// delta once the wrap account closes.
func accumulateTokenDeltas(record *TransactionRecord, trader solana.PublicKey) (map[solana.PublicKey]int64, map[solana.PublicKey]uint8) {
	deltas := make(map[solana.PublicKey]int64)
	decimalsByMint := make(map[solana.PublicKey]uint8)

	for _, balance := range record.PreTokenBalances {
		if !balance.Owner.Equals(trader) || balance.Mint.Equals(NATIVE_SOL_MINT_PROGRAM_ID) {
			continue
		}
		deltas[balance.Mint] -= int64(balance.RawAmount)
		decimalsByMint[balance.Mint] = balance.Decimals
	}
	for _, balance := range record.PostTokenBalances {
		if !balance.Owner.Equals(trader) || balance.Mint.Equals(NATIVE_SOL_MINT_PROGRAM_ID) {
			continue
		}
		deltas[balance.Mint] += int64(balance.RawAmount)
		decimalsByMint[balance.Mint] = balance.Decimals
	}

	return deltas, decimalsByMint
}
