package solanacopygo

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/magiconair/properties"
)

// PlatformDescriptor describes one known exchange program: the program ids it
// answers to, its selection priority, and optional binary layout hints for the
// trade instruction payload. Offsets of -1 mean the layout is unverified and
// the forger must leave the payload bytes untouched.
type PlatformDescriptor struct {
	Name       Platform
	ProgramIDs []solana.PublicKey

	// Priority orders simultaneous matches: direct venues above their AMM
	// variants, AMM variants above generic aggregators. Higher wins.
	Priority int

	// Router marks bot/aggregator programs whose outer instruction must be
	// replayed verbatim (accounts only, no payload surgery).
	Router bool

	// AmountOffset and LimitOffset locate the little-endian u64 amount and
	// slippage-bound fields inside the trade instruction data.
	AmountOffset int
	LimitOffset  int

	// OutputMintIndex is the account position of the traded mint in the
	// platform's buy/sell instruction, -1 when there is no fixed position.
	OutputMintIndex int
}

// PlatformRegistry is the immutable set of descriptors the identifier and
// forger consult. Built once at construction, safe for concurrent reads.
type PlatformRegistry struct {
	descriptors []*PlatformDescriptor
	byProgram   map[solana.PublicKey]*PlatformDescriptor
}

// DefaultRegistry returns the registry of venues this library understands.
//
// Only the pump.fun bonding-curve layout has verified amount/limit offsets
// (8-byte discriminator, u64 amount at 8, u64 sol limit at 16). Every other
// venue ships with -1 so the forger falls back to keeping original bytes.
func DefaultRegistry() *PlatformRegistry {
	descriptors := []*PlatformDescriptor{
		{
			Name:            PUMP_FUN,
			ProgramIDs:      []solana.PublicKey{PUMP_FUN_PROGRAM_ID},
			Priority:        90,
			AmountOffset:    8,
			LimitOffset:     16,
			OutputMintIndex: 2,
		},
		{
			Name:            RAYDIUM,
			ProgramIDs:      []solana.PublicKey{RAYDIUM_V4_PROGRAM_ID},
			Priority:        90,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            MOONSHOT,
			ProgramIDs:      []solana.PublicKey{MOONSHOT_PROGRAM_ID},
			Priority:        85,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            ORCA,
			ProgramIDs:      []solana.PublicKey{ORCA_PROGRAM_ID},
			Priority:        80,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            METEORA,
			ProgramIDs:      []solana.PublicKey{METEORA_DLMM_PROGRAM_ID, METEORA_POOLS_PROGRAM_ID},
			Priority:        80,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            PUMP_FUN_AMM,
			ProgramIDs:      []solana.PublicKey{PUMPFUN_AMM_PROGRAM_ID},
			Priority:        75,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            RAYDIUM_CPMM,
			ProgramIDs:      []solana.PublicKey{RAYDIUM_CPMM_PROGRAM_ID},
			Priority:        75,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            RAYDIUM_CLMM,
			ProgramIDs:      []solana.PublicKey{RAYDIUM_CLMM_PROGRAM_ID},
			Priority:        75,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            JUPITER,
			ProgramIDs:      []solana.PublicKey{JUPITER_PROGRAM_ID, JUPITER_DCA_PROGRAM_ID},
			Priority:        40,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name:            OKX,
			ProgramIDs:      []solana.PublicKey{OKX_DEX_ROUTER_PROGRAM_ID},
			Priority:        40,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
		{
			Name: BOT_ROUTER,
			ProgramIDs: []solana.PublicKey{
				BANANA_GUN_PROGRAM_ID,
				MINTECH_PROGRAM_ID,
				BLOOM_PROGRAM_ID,
				MAESTRO_PROGRAM_ID,
				NOVA_PROGRAM_ID,
			},
			Priority:        100,
			Router:          true,
			AmountOffset:    -1,
			LimitOffset:     -1,
			OutputMintIndex: -1,
		},
	}

	return NewPlatformRegistry(descriptors)
}

func NewPlatformRegistry(descriptors []*PlatformDescriptor) *PlatformRegistry {
	registry := &PlatformRegistry{
		descriptors: descriptors,
		byProgram:   make(map[solana.PublicKey]*PlatformDescriptor),
	}
	for _, desc := range descriptors {
		for _, programID := range desc.ProgramIDs {
			registry.byProgram[programID] = desc
		}
	}
	return registry
}

// Lookup returns the descriptor owning the given program id.
func (r *PlatformRegistry) Lookup(programID solana.PublicKey) (*PlatformDescriptor, bool) {
	desc, ok := r.byProgram[programID]
	return desc, ok
}

// Descriptor returns the descriptor with the given platform name.
func (r *PlatformRegistry) Descriptor(name Platform) (*PlatformDescriptor, bool) {
	for _, desc := range r.descriptors {
		if desc.Name == name {
			return desc, true
		}
	}
	return nil, false
}

// ApplyOverrides patches priorities and layout offsets from a .properties
// file, keyed "<platform>.priority", "<platform>.amount_offset" and
// "<platform>.limit_offset". Meant for operators verifying new instruction
// layouts without a rebuild; unknown platform keys are an error.
func (r *PlatformRegistry) ApplyOverrides(path string) error {
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return fmt.Errorf("failed to load registry overrides: %w", err)
	}

	for _, desc := range r.descriptors {
		prefix := string(desc.Name) + "."
		desc.Priority = props.GetInt(prefix+"priority", desc.Priority)
		desc.AmountOffset = props.GetInt(prefix+"amount_offset", desc.AmountOffset)
		desc.LimitOffset = props.GetInt(prefix+"limit_offset", desc.LimitOffset)
	}

	for _, key := range props.Keys() {
		if !r.knownOverrideKey(key) {
			return fmt.Errorf("registry override for unknown platform key %q", key)
		}
	}
	return nil
}

func (r *PlatformRegistry) knownOverrideKey(key string) bool {
	for _, desc := range r.descriptors {
		prefix := string(desc.Name) + "."
		for _, suffix := range []string{"priority", "amount_offset", "limit_offset"} {
			if key == prefix+suffix {
				return true
			}
		}
	}
	return false
}
