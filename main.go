package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	solanacopygo "github.com/franco-bianco/solanacopy-go/solanacopy-go"
)

/*
Example transactions:
- PumpFun buy: 4Cod1cNGv6RboJ7rSB79yeVCR4Lfd25rFgLY3eiPJfTJjTGyYP1r2i1upAYZHQsWDqUbGd1bhTRm1bpSQcpWMnEz
- Raydium V4: 5kaAWK5X9DdMmsWm6skaUXLd6prFisuYJavd9B62A941nRGcrmwvncg3tRtUfn7TcMLsrrmjCChdEjK3sjxS6YG9
- Jupiter route: DBctXdTTtvn7Rr4ikeJFCBz4AtHmJRyjHGQFpE59LuY3Shb7UcRJThAXC7TGRXXskXuu9LEm9RqtU6mWxe5cjPF
*/

func main() {
	client := solanacopygo.NewChainClient(rpc.MainNetBeta.RPC)
	txSig := solana.MustSignatureFromBase58("4Cod1cNGv6RboJ7rSB79yeVCR4Lfd25rFgLY3eiPJfTJjTGyYP1r2i1upAYZHQsWDqUbGd1bhTRm1bpSQcpWMnEz")

	record, err := client.FetchTransaction(context.TODO(), txSig)
	if err != nil {
		log.Fatalf("error fetching tx: %s", err)
	}

	// The first static account is the fee payer, which is the trader for a
	// directly signed swap.
	trader := record.StaticKeys[0]

	registry := solanacopygo.DefaultRegistry()
	analyzer := solanacopygo.NewAnalyzer(registry).
		WithResolver(solanacopygo.NewAddressTableResolver(client))

	analysis := analyzer.Analyze(context.TODO(), record, trader)

	marshalled, _ := json.MarshalIndent(analysis, "", "  ")
	fmt.Println(string(marshalled))

	if !analysis.Copyable {
		log.Fatalf("not copyable: %s", analysis.Reason)
	}

	substitute := solana.NewWallet().PublicKey()

	builder := solanacopygo.NewForgingMapBuilder(client)
	forgingMap, err := builder.Build(
		context.TODO(),
		trader,
		substitute,
		analysis.Intent.InputMint,
		analysis.Intent.OutputMint,
	)
	if err != nil {
		log.Fatalf("error building forging map: %s", err)
	}

	forger := solanacopygo.NewInstructionForger(registry)
	forged, err := forger.Forge(record, forgingMap, analysis.Intent, solanacopygo.ForgeParams{
		Substitute:  substitute,
		Amount:      analysis.Intent.InputAmountRaw / 10,
		SlippageBps: 300,
		CoreIndex:   analysis.CoreIndex,
		RouterTrade: analysis.RouterTrade,
	})
	if err != nil {
		log.Fatalf("error forging instructions: %s", err)
	}

	fmt.Printf("forged %d instructions for %s (in %s, out %s)\n",
		len(forged),
		substitute,
		analysis.Intent.InputAmountUI(),
		analysis.Intent.OutputAmountUI(),
	)
}
