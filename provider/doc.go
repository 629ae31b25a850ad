// Package provider routes card payments to external processors and normalizes
// their answers into one response shape.
//
// A caller supplies a provider name and raw transaction fields. The package
// validates the fields, picks the processor for the named provider, sends the
// charge and converts the provider specific result into a UnifiedResponse.
//
// # Core Concepts
//
//   - TransactionRequest: validated, immutable input. Only RequestValidator builds one.
//   - PaymentProcessor: sends one request to one provider and reports the outcome as a RawResult.
//   - ResponseAdapter: turns a RawResult into a UnifiedResponse. It never fails.
//   - ProcessorFactory / AdapterFactory: map a provider name to its processor or adapter.
//   - TransactionService: runs the whole pipeline and returns a TransactionResult.
//
// # Basic Usage
//
//	aciProcessor := aci.NewProcessor(nil)
//	if err := aciProcessor.Initialize(map[string]string{
//	    "entityId":    "8a8294174b7ecb28014b9699220015ca",
//	    "bearerToken": "your-token",
//	    "environment": "sandbox",
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
//	service := provider.NewTransactionService(
//	    provider.NewRequestValidator(nil, nil),
//	    provider.NewProcessorFactory(aciProcessor, shift4Processor),
//	    provider.NewAdapterFactory(aci.NewAdapter(nil), shift4.NewAdapter(nil)),
//	)
//
//	result := service.ProcessTransaction(ctx, "aci", map[string]any{
//	    "amount":         "92.00",
//	    "currency":       "EUR",
//	    "card_number":    "4200000000000000",
//	    "card_exp_year":  "2034",
//	    "card_exp_month": "05",
//	    "card_cvv":       "123",
//	})
//
// # Validation
//
// All field rules are checked in one pass and every violation is reported.
// A request with violations never reaches a provider.
//
// # Supported Providers
//
//   - aci: form encoded debit with a Bearer token
//   - shift4: JSON charge with HTTP basic auth, amounts in minor units
//
// Provider names match case-insensitively. Any other name yields an
// UnsupportedProviderError.
//
// # Error Handling
//
// Processors and adapters do not return errors. Network failures, timeouts
// and declines are encoded in the result. ProcessTransaction recovers from
// panics and reports them as ErrorKindUnexpected, so entry points only need
// to map TransactionResult.Kind to a status code.
//
// # Thread Safety
//
// Processors, adapters, factories and the service are safe for concurrent use
// once initialized.
package provider
