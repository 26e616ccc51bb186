package solanacopygo

import (
	"bytes"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

var JupiterRouteEventDiscriminator = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 64, 198, 205, 232, 38, 8, 113, 226}

// JupiterSwapEvent is the route event Jupiter emits per hop. The last hop's
// output mint is the mint the trader actually ends up holding, which resolves
// the ambiguity balance deltas have in multi-hop routes.
type JupiterSwapEvent struct {
	Amm          solana.PublicKey
	InputMint    solana.PublicKey
	InputAmount  uint64
	OutputMint   solana.PublicKey
	OutputAmount uint64
}

// decodeJupiterRouteEvents decodes every route event nested under the given
// outer instruction, in execution order.
func decodeJupiterRouteEvents(record *TransactionRecord, outerIndex int) ([]JupiterSwapEvent, error) {
	var events []JupiterSwapEvent
	for _, instr := range record.InnerInstructionsFor(outerIndex) {
		if !isJupiterRouteEventInstruction(record, instr) {
			continue
		}

		decodedBytes, err := base58.Decode(instr.Data.String())
		if err != nil {
			return nil, fmt.Errorf("error decoding instruction data: %s", err)
		}
		decoder := ag_binary.NewBorshDecoder(decodedBytes[16:])

		var event JupiterSwapEvent
		if err := decoder.Decode(&event); err != nil {
			return nil, fmt.Errorf("error unmarshaling JupiterSwapEvent: %s", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func isJupiterRouteEventInstruction(record *TransactionRecord, instr solana.CompiledInstruction) bool {
	programID, ok := record.Account(instr.ProgramIDIndex)
	if !ok || !programID.Equals(JUPITER_PROGRAM_ID) || len(instr.Data) < 16 {
		return false
	}
	decodedBytes, err := base58.Decode(instr.Data.String())
	if err != nil || len(decodedBytes) < 16 {
		return false
	}
	return bytes.Equal(decodedBytes[:16], JupiterRouteEventDiscriminator[:])
}
