package provider

import (
	"strings"
)

// ProcessorFactory maps a provider name to its long-lived PaymentProcessor.
// The set of providers is fixed at construction.
type ProcessorFactory struct {
	processors map[ProviderID]PaymentProcessor
}

// NewProcessorFactory creates the factory for the supported providers
func NewProcessorFactory(aci, shift4 PaymentProcessor) *ProcessorFactory {
	return &ProcessorFactory{
		processors: map[ProviderID]PaymentProcessor{
			ACI:    aci,
			Shift4: shift4,
		},
	}
}

// Create returns the processor for name, matched case-insensitively
func (f *ProcessorFactory) Create(name string) (PaymentProcessor, error) {
	id, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return f.processors[id], nil
}

// Providers returns the supported provider names
func (f *ProcessorFactory) Providers() []ProviderID {
	return supportedCopy()
}

// AdapterFactory maps a provider name to its ResponseAdapter
type AdapterFactory struct {
	adapters map[ProviderID]ResponseAdapter
}

// NewAdapterFactory creates the factory for the supported providers
func NewAdapterFactory(aci, shift4 ResponseAdapter) *AdapterFactory {
	return &AdapterFactory{
		adapters: map[ProviderID]ResponseAdapter{
			ACI:    aci,
			Shift4: shift4,
		},
	}
}

// Create returns the adapter for name, matched case-insensitively
func (f *AdapterFactory) Create(name string) (ResponseAdapter, error) {
	id, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return f.adapters[id], nil
}

// Providers returns the supported provider names
func (f *AdapterFactory) Providers() []ProviderID {
	return supportedCopy()
}

func lookup(name string) (ProviderID, error) {
	switch ProviderID(strings.ToLower(name)) {
	case ACI:
		return ACI, nil
	case Shift4:
		return Shift4, nil
	default:
		return "", &UnsupportedProviderError{Name: name}
	}
}

// IsSupported reports whether name resolves to a supported provider
func IsSupported(name string) bool {
	_, err := lookup(name)
	return err == nil
}

func supportedCopy() []ProviderID {
	ids := make([]ProviderID, len(SupportedProviders))
	copy(ids, SupportedProviders)
	return ids
}
