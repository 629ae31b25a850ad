// Package payroute is a payment routing gateway. It accepts one normalized
// card transaction, routes it to the selected acquirer and returns a single
// response shape no matter which acquirer answered.
//
// # Overview
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │      ACI        │
//	│  HTTP / CLI     │───►│    PayRoute     │───►│                 │
//	│                 │    │                 │    │     Shift4      │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// Every transaction goes through the same steps:
//
//  1. The raw input is validated. All violations are reported together.
//  2. The provider name selects a processor and an adapter (case-insensitive).
//  3. The processor sends exactly one request to the provider.
//  4. The adapter turns the provider answer into a unified response.
//
// # Supported Providers
//
//   - aci: form encoded POST with a bearer token, amounts in major units
//   - shift4: JSON POST with basic auth, amounts in minor units
//
// # Quick Start
//
//	providers := config.NewProviderConfig()
//	providers.LoadFromEnv(false)
//
//	gw := gateway.New(providers, gateway.Options{})
//	result := gw.ProcessTransaction(ctx, "shift4", map[string]any{
//	    "amount":         "100.00",
//	    "currency":       "USD",
//	    "card_number":    "4242424242424242",
//	    "card_exp_year":  "2034",
//	    "card_exp_month": "11",
//	    "card_cvv":       "123",
//	})
//	if !result.Succeeded() {
//	    fmt.Println(result.Errors)
//	}
//
// # HTTP API
//
//	POST /app/processTransaction/{provider}
//	POST /v1/transactions/{provider}
//	GET  /v1/providers
//	GET  /health
//	GET  /metrics
//
// When API_KEY is set, transaction routes require "Authorization: Bearer <API_KEY>".
//
// # Command Line
//
//	transact aci --amount=92.00 --currency=EUR --card_number=4200000000000000 \
//	    --card_exp_year=2034 --card_exp_month=05 --card_cvv=123
//
// # Configuration
//
// Credentials are read from the environment, optionally overlaid by a SQLite
// store named by PROVIDER_CONFIG_DB:
//
//	ACI_ENTITY_ID, ACI_BEARER_TOKEN, ACI_PAYMENT_URL
//	SHIFT4_API_KEY, SHIFT4_PAYMENT_URL
//
// APP_ENV=production enables TLS verification for ACI. Shift4 always verifies.
//
// # Observability
//
// Logs go to the console and, with ENABLE_OPENSEARCH_LOGGING, to OpenSearch
// together with one card-free event per transaction. Prometheus metrics are
// served on /metrics and traces are exported when OTEL_EXPORTER_OTLP_ENDPOINT
// is set.
package payroute
