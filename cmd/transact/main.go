// Command transact processes one card payment from the command line.
//
//	transact aci --amount=92.00 --currency=EUR --card_number=4200000000000000 \
//	    --card_exp_year=2034 --card_exp_month=05 --card_cvv=123
//
// Provider credentials come from the same environment variables as the
// server, overlaid by the SQLite store named by PROVIDER_CONFIG_DB. The
// config subcommands manage that store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mstgnz/payroute/gateway"
	"github.com/mstgnz/payroute/infra/config"
	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/provider"
)

const usage = `Usage:
  transact <provider> --amount=AMOUNT --currency=CUR --card_number=PAN \
      --card_exp_year=YYYY --card_exp_month=MM --card_cvv=CVV
  transact config set <provider> key=value...
  transact config show [provider]
  transact config delete <provider>
  transact config stats`

var transactionFlags = []string{
	"amount",
	"currency",
	"card_number",
	"card_exp_year",
	"card_exp_month",
	"card_cvv",
}

type transactionService interface {
	ProcessTransaction(ctx context.Context, providerName string, input map[string]any) provider.TransactionResult
}

func main() {
	_ = godotenv.Load(".env")
	cfg := config.ReloadAppConfig()

	log := logger.NewSystemLogger(nil, logger.SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      logger.ParseLevel(cfg.LoggingLevel),
		Service:       "payroute-cli",
		Version:       "1.0.0",
		Environment:   cfg.Environment,
		Output:        os.Stderr,
	})

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "config" {
		os.Exit(runConfig(args[1:], cfg.ProviderConfigDB, cfg.IsProduction(), os.Stdout, os.Stderr))
	}

	providerConfig := config.NewProviderConfig()
	providerConfig.LoadFromEnv(cfg.IsProduction())
	if cfg.ProviderConfigDB != "" {
		if err := loadStoredConfig(providerConfig, cfg.ProviderConfigDB); err != nil {
			fmt.Fprintf(os.Stderr, "provider config store: %v\n", err)
			os.Exit(1)
		}
	}

	gw := gateway.New(providerConfig, gateway.Options{Log: log})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	code := run(ctx, args, gw, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// loadStoredConfig overlays the SQLite provider configs once. The CLI never
// writes back, so the store is closed right away.
func loadStoredConfig(providerConfig *config.ProviderConfig, dbPath string) error {
	storage, err := config.NewSQLiteStorage(dbPath)
	if err != nil {
		return err
	}
	defer storage.Close()

	return providerConfig.AttachStorage(storage)
}

// run processes one transaction and returns the exit code
func run(ctx context.Context, args []string, service transactionService, stdout, stderr io.Writer) int {
	providerName, input, err := parseTransactionArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stdout, usage)
			return 0
		}
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, usage)
		return 1
	}

	result := service.ProcessTransaction(ctx, providerName, input)
	if !result.Succeeded() {
		for _, message := range result.Errors {
			fmt.Fprintln(stderr, message)
		}
		return 1
	}

	return printJSON(stdout, stderr, result)
}

// parseTransactionArgs accepts the provider before or after the flags. Only
// flags that were set end up in the input map.
func parseTransactionArgs(args []string, stderr io.Writer) (string, map[string]any, error) {
	fs := flag.NewFlagSet("transact", flag.ContinueOnError)
	fs.SetOutput(stderr)
	for _, name := range transactionFlags {
		fs.String(name, "", strings.ReplaceAll(name, "_", " "))
	}

	var providerName string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		providerName, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}

	rest := fs.Args()
	if providerName == "" && len(rest) > 0 {
		providerName, rest = rest[0], rest[1:]
	}
	if providerName == "" {
		return "", nil, errors.New("provider argument is required")
	}
	if len(rest) > 0 {
		return "", nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	input := make(map[string]any, len(transactionFlags))
	fs.Visit(func(f *flag.Flag) {
		input[f.Name] = f.Value.String()
	})
	return providerName, input, nil
}

func runConfig(args []string, dbPath string, isProduction bool, stdout, stderr io.Writer) int {
	if dbPath == "" {
		fmt.Fprintln(stderr, "PROVIDER_CONFIG_DB is not set")
		return 1
	}
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	storage, err := config.NewSQLiteStorage(dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "provider config store: %v\n", err)
		return 1
	}
	defer storage.Close()

	switch args[0] {
	case "set":
		return setConfig(args[1:], storage, stdout, stderr)
	case "show":
		return showConfig(args[1:], storage, stdout, stderr)
	case "delete":
		return deleteConfig(args[1:], storage, stdout, stderr)
	case "stats":
		return configStats(storage, isProduction, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown config command %q\n", args[0])
		fmt.Fprintln(stderr, usage)
		return 1
	}
}

func setConfig(args []string, storage *config.SQLiteStorage, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	providerName, ok := supportedName(args[0], stderr)
	if !ok {
		return 1
	}

	values := make(map[string]string, len(args)-1)
	for _, pair := range args[1:] {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			fmt.Fprintf(stderr, "invalid config entry %q, expected key=value\n", pair)
			return 1
		}
		values[key] = value
	}

	if err := storage.SaveProviderConfig(providerName, values); err != nil {
		fmt.Fprintf(stderr, "save %s config: %v\n", providerName, err)
		return 1
	}

	fmt.Fprintf(stdout, "Saved %d value(s) for %s\n", len(values), providerName)
	return 0
}

// showConfig prints the stored keys of one provider, or of all of them, with
// secrets masked
func showConfig(args []string, storage *config.SQLiteStorage, stdout, stderr io.Writer) int {
	stored := make(map[string]map[string]string)

	switch len(args) {
	case 0:
		all, err := storage.LoadAllProviderConfigs()
		if err != nil {
			fmt.Fprintf(stderr, "load configs: %v\n", err)
			return 1
		}
		stored = all
	case 1:
		providerName, ok := supportedName(args[0], stderr)
		if !ok {
			return 1
		}
		values, err := storage.LoadProviderConfig(providerName)
		if err != nil {
			fmt.Fprintf(stderr, "load %s config: %v\n", providerName, err)
			return 1
		}
		stored[providerName] = values
	default:
		fmt.Fprintln(stderr, usage)
		return 1
	}

	for _, values := range stored {
		for key, value := range values {
			if secretKeys[key] {
				values[key] = maskSecret(value)
			}
		}
	}
	return printJSON(stdout, stderr, stored)
}

func deleteConfig(args []string, storage *config.SQLiteStorage, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	providerName, ok := supportedName(args[0], stderr)
	if !ok {
		return 1
	}

	if err := storage.DeleteProviderConfig(providerName); err != nil {
		fmt.Fprintf(stderr, "delete %s config: %v\n", providerName, err)
		return 1
	}

	fmt.Fprintf(stdout, "Deleted stored config for %s\n", providerName)
	return 0
}

// configStats reports the effective configuration: environment values
// overlaid by the store
func configStats(storage *config.SQLiteStorage, isProduction bool, stdout, stderr io.Writer) int {
	providerConfig := config.NewProviderConfig()
	providerConfig.LoadFromEnv(isProduction)
	if err := providerConfig.AttachStorage(storage); err != nil {
		fmt.Fprintf(stderr, "provider config store: %v\n", err)
		return 1
	}

	stats := providerConfig.GetStats()
	stats["providers"] = providerConfig.GetAvailableProviders()
	return printJSON(stdout, stderr, stats)
}

var secretKeys = map[string]bool{
	"bearerToken": true,
	"apiKey":      true,
}

func maskSecret(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + "****"
}

func supportedName(name string, stderr io.Writer) (string, bool) {
	if !provider.IsSupported(name) {
		fmt.Fprintf(stderr, "Unsupported payment provider: %s\n", name)
		return "", false
	}
	return strings.ToLower(name), true
}

func printJSON(stdout, stderr io.Writer, v any) int {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
