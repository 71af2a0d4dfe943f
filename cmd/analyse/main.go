// Command analyse runs one problem or code analysis from the command line and prints
// the result as JSON. It uses the same provider configuration as the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/iapss/iapss-backend/internal/app"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/modules/analysis"
	"github.com/iapss/iapss-backend/internal/platform/envutil"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

func main() {
	kind := flag.String("kind", "problem", "problem | code")
	language := flag.String("language", "", "code language (code only)")
	file := flag.String("file", "-", "input file, - for stdin")
	flag.Parse()

	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	payload, err := readInput(*file)
	if err != nil {
		log.Fatal("Read input failed", "error", err)
	}
	k, ok := types.ParseAnalysisKind(*kind)
	if !ok {
		log.Fatal("Unknown kind", "kind", *kind)
	}

	cfg := app.LoadConfig(log).Inference
	gateway := analysis.NewGateway(app.NewProvider(ctx, log, cfg), cfg.Timeout, log)
	result, _, err := analysis.NewOrchestrator(gateway, log).Analyse(ctx, types.AnalysisRequest{
		Kind:     k,
		Payload:  payload,
		Language: *language,
	})
	if err != nil {
		log.Fatal("Invalid request", "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal("Write result failed", "error", err)
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
