package solanacopygo

import (
	"bytes"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

var PumpfunTradeEventDiscriminator = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 189, 219, 127, 211, 78, 230, 97, 238}

// PumpfunTradeEvent is the self-CPI event the pump.fun program emits for every
// bonding-curve trade. It names the traded mint directly, which makes it the
// preferred output-mint source over balance-delta inference.
type PumpfunTradeEvent struct {
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
}

// decodePumpfunTradeEvent scans the inner instructions of the given outer
// instruction for a pump.fun trade event and decodes the first one found.
func decodePumpfunTradeEvent(record *TransactionRecord, outerIndex int) (*PumpfunTradeEvent, error) {
	for _, instr := range record.InnerInstructionsFor(outerIndex) {
		if !isPumpfunTradeEventInstruction(record, instr) {
			continue
		}

		decodedBytes, err := base58.Decode(instr.Data.String())
		if err != nil {
			return nil, fmt.Errorf("error decoding instruction data: %s", err)
		}
		decoder := ag_binary.NewBorshDecoder(decodedBytes[16:])

		var trade PumpfunTradeEvent
		if err := decoder.Decode(&trade); err != nil {
			return nil, fmt.Errorf("error unmarshaling TradeEvent: %s", err)
		}
		return &trade, nil
	}
	return nil, nil
}

func isPumpfunTradeEventInstruction(record *TransactionRecord, instr solana.CompiledInstruction) bool {
	programID, ok := record.Account(instr.ProgramIDIndex)
	if !ok || !programID.Equals(PUMP_FUN_PROGRAM_ID) || len(instr.Data) < 16 {
		return false
	}
	decodedBytes, err := base58.Decode(instr.Data.String())
	if err != nil || len(decodedBytes) < 16 {
		return false
	}
	return bytes.Equal(decodedBytes[:16], PumpfunTradeEventDiscriminator[:])
}
