package solanacopygo

import (
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// InvocationTraceEntry is one "Program <address> invoke [<depth>]" line pulled
// out of the execution log. Entries whose address is not in the registry are
// kept with Known=false so operators can investigate unrecognized programs
// offline instead of losing them.
type InvocationTraceEntry struct {
	Program solana.PublicKey
	Depth   int
	Known   bool
}

const invokeLinePrefix = "Program "

// parseInvocationTrace extracts program invocations from raw log lines. Lines
// that do not parse cleanly are skipped; an address that is not 32 bytes of
// base58 is not an address.
func parseInvocationTrace(logLines []string, registry *PlatformRegistry) []InvocationTraceEntry {
	var entries []InvocationTraceEntry

	for _, line := range logLines {
		if !strings.HasPrefix(line, invokeLinePrefix) {
			continue
		}
		fields := strings.Fields(line)
		// "Program", "<address>", "invoke", "[<depth>]"
		if len(fields) != 4 || fields[2] != "invoke" {
			continue
		}

		raw, err := base58.Decode(fields[1])
		if err != nil || len(raw) != solana.PublicKeyLength {
			continue
		}
		program := solana.PublicKeyFromBytes(raw)

		depth := 0
		if bracketed := strings.Trim(fields[3], "[]"); bracketed != "" {
			if parsed, err := strconv.Atoi(bracketed); err == nil {
				depth = parsed
			}
		}

		_, known := registry.Lookup(program)
		entries = append(entries, InvocationTraceEntry{
			Program: program,
			Depth:   depth,
			Known:   known,
		})
	}

	return entries
}
