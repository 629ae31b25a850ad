package provider

import (
	"errors"
	"fmt"
)

// User facing messages shared across providers
const (
	MsgTransactionSucceeded = "Transaction processed successfully"
	MsgUnexpectedError      = "An unexpected error occurred."
	MsgAdapterFailure       = "An error occurred while processing the payment"
	MsgPaymentFailed        = "Payment failed, please try again later"
	MsgRequestTimedOut      = "Request timed out. Please try again later."
)

// ErrUnsupportedProvider is matched by every UnsupportedProviderError
var ErrUnsupportedProvider = errors.New("unsupported payment provider")

// ErrProviderNotConfigured is returned when a provider is missing credentials
var ErrProviderNotConfigured = errors.New("payment provider is not configured")

// UnsupportedProviderError reports a provider name outside the supported set
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("Unsupported payment provider: %s", e.Name)
}

func (e *UnsupportedProviderError) Is(target error) bool {
	return target == ErrUnsupportedProvider
}

// ErrorKind classifies a failed transaction so entry points can pick a status
type ErrorKind string

const (
	ErrorKindNone                ErrorKind = ""
	ErrorKindValidation          ErrorKind = "validation"
	ErrorKindUnsupportedProvider ErrorKind = "unsupported_provider"
	ErrorKindProvider            ErrorKind = "provider"
	ErrorKindUnexpected          ErrorKind = "unexpected"
)

// TransactionResult is the terminal outcome of TransactionService.ProcessTransaction.
// Exactly one of Data or Errors is set.
type TransactionResult struct {
	Data        *TransactionData `json:"data,omitempty"`
	Message     string           `json:"message,omitempty"`
	Errors      []string         `json:"errors,omitempty"`
	Kind        ErrorKind        `json:"-"`
	ReferenceID string           `json:"-"`
}

// Succeeded reports whether the payment went through
func (r TransactionResult) Succeeded() bool {
	return r.Data != nil && len(r.Errors) == 0
}

// Outcome returns a low-cardinality label for metrics
func (r TransactionResult) Outcome() string {
	if r.Succeeded() {
		return "success"
	}
	if r.Kind == ErrorKindNone {
		return string(ErrorKindUnexpected)
	}
	return string(r.Kind)
}

func failedResult(kind ErrorKind, referenceID string, messages ...string) TransactionResult {
	return TransactionResult{
		Errors:      messages,
		Kind:        kind,
		ReferenceID: referenceID,
	}
}
