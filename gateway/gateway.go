// Package gateway wires configured providers into a TransactionService.
// The HTTP server and the CLI share it.
package gateway

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/mstgnz/payroute/infra/config"
	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/provider"
	"github.com/mstgnz/payroute/provider/aci"
	"github.com/mstgnz/payroute/provider/shift4"
)

// Options customizes New. Zero values fall back to global defaults.
type Options struct {
	Log       logger.Logger
	Events    provider.EventRecorder
	Validator *validator.Validate
}

// ProviderStatus reports whether a provider has usable credentials
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Error      string `json:"error,omitempty"`
}

type configurable interface {
	provider.PaymentProcessor
	Initialize(conf map[string]string) error
}

// Gateway owns the processors, adapters and service of one process
type Gateway struct {
	service  *provider.TransactionService
	statuses []ProviderStatus
}

// New builds both processors from providers. A provider without valid
// credentials stays routable and answers with a processing error.
func New(providers *config.ProviderConfig, opts Options) *Gateway {
	log := opts.Log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	validate := opts.Validator
	if validate == nil {
		validate = config.App().Validator
	}

	aciProcessor := aci.NewProcessor(log)
	shift4Processor := shift4.NewProcessor(log)

	g := &Gateway{}
	for _, p := range []configurable{aciProcessor, shift4Processor} {
		g.statuses = append(g.statuses, initialize(p, providers, log))
	}

	serviceOpts := []provider.ServiceOption{provider.WithLogger(log)}
	if opts.Events != nil {
		serviceOpts = append(serviceOpts, provider.WithEventRecorder(opts.Events))
	}

	g.service = provider.NewTransactionService(
		provider.NewRequestValidator(validate, nil),
		provider.NewProcessorFactory(aciProcessor, shift4Processor),
		provider.NewAdapterFactory(aci.NewAdapter(log), shift4.NewAdapter(log)),
		serviceOpts...,
	)

	return g
}

func initialize(p configurable, providers *config.ProviderConfig, log logger.Logger) ProviderStatus {
	name := string(p.Provider())
	status := ProviderStatus{Name: name}

	conf := map[string]string{}
	if providers != nil {
		if stored, err := providers.GetConfig(name); err == nil {
			conf = stored
		}
	}

	if err := p.Initialize(conf); err != nil {
		log.Warn("Payment provider is not configured", logger.LogContext{
			Provider: name,
			Fields:   map[string]any{"error": err.Error()},
		})
		status.Error = err.Error()
		return status
	}

	status.Configured = true
	log.Info("Registered payment provider", logger.LogContext{Provider: name})
	return status
}

// ProcessTransaction runs one payment through the service
func (g *Gateway) ProcessTransaction(ctx context.Context, providerName string, input map[string]any) provider.TransactionResult {
	return g.service.ProcessTransaction(ctx, providerName, input)
}

// Providers returns the configuration status of every supported provider
func (g *Gateway) Providers() []ProviderStatus {
	statuses := make([]ProviderStatus, len(g.statuses))
	copy(statuses, g.statuses)
	return statuses
}
