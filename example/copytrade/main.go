package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"

	solanacopygo "github.com/franco-bianco/solanacopy-go/solanacopy-go"
)

// Classifies a transaction for a watched trader and prints the verdict.
// Env: RPC_ENDPOINT, TX_SIGNATURE, TRADER_ADDRESS, optional REGISTRY_OVERRIDES.
func main() {
	_ = godotenv.Load()

	endpoint := os.Getenv("RPC_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://api.mainnet-beta.solana.com"
	}

	txSig := solana.MustSignatureFromBase58(os.Getenv("TX_SIGNATURE"))
	trader := solana.MustPublicKeyFromBase58(os.Getenv("TRADER_ADDRESS"))

	registry := solanacopygo.DefaultRegistry()
	if overrides := os.Getenv("REGISTRY_OVERRIDES"); overrides != "" {
		if err := registry.ApplyOverrides(overrides); err != nil {
			log.Fatalf("failed to apply registry overrides: %s", err)
		}
	}

	client := solanacopygo.NewChainClient(endpoint)

	record, err := client.FetchTransaction(context.Background(), txSig)
	if err != nil {
		log.Fatalf("failed to fetch tx: %s", err)
	}

	analyzer := solanacopygo.NewAnalyzer(registry).
		WithResolver(solanacopygo.NewAddressTableResolver(client))

	analysis := analyzer.Analyze(context.Background(), record, trader)

	marshalled, _ := json.MarshalIndent(analysis, "", "  ")
	fmt.Println(string(marshalled))
}
