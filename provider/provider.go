package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ProviderID identifies a supported payment gateway
type ProviderID string

const (
	ACI    ProviderID = "aci"
	Shift4 ProviderID = "shift4"
)

// SupportedProviders is the closed set of providers the gateway routes to
var SupportedProviders = []ProviderID{ACI, Shift4}

// TimestampLayout is the canonical createdAt format of a unified response
const TimestampLayout = "2006-01-02 15:04:05"

// FailureKind classifies why a provider call did not succeed
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport"
	FailureDecline   FailureKind = "decline"
	FailureInternal  FailureKind = "internal"
)

// ConfigField represents a required configuration field for a payment provider
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "number", "url", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// TransactionRequest is a validated payment request. It can only be built by
// RequestValidator and has no setters.
type TransactionRequest struct {
	provider     string
	amount       decimal.Decimal
	currency     string
	cardNumber   string
	cardExpYear  int
	cardExpMonth string
	cardCvv      string
}

func (r TransactionRequest) Provider() string { return r.provider }
func (r TransactionRequest) Amount() decimal.Decimal { return r.amount }
func (r TransactionRequest) Currency() string { return r.currency }
func (r TransactionRequest) CardNumber() string { return r.cardNumber }
func (r TransactionRequest) CardExpYear() int { return r.cardExpYear }
func (r TransactionRequest) CardCvv() string { return r.cardCvv }

// CardExpMonth returns the two digit expiry month, e.g. "05"
func (r TransactionRequest) CardExpMonth() string { return r.cardExpMonth }

// RawResult is what a PaymentProcessor returns. Data holds the decoded
// provider body and may only be read by the adapter of the same Provider.
type RawResult struct {
	Provider ProviderID
	Success  bool
	Message  string
	Failure  FailureKind
	Data     map[string]any
}

// Outcome returns a low-cardinality label for metrics and logs
func (r RawResult) Outcome() string {
	if r.Success {
		return "success"
	}
	if r.Failure == FailureNone {
		return string(FailureDecline)
	}
	return string(r.Failure)
}

// TransactionData is the normalized payload of a unified response
type TransactionData struct {
	TransactionID string          `json:"transactionId"`
	CreatedAt     string          `json:"createdAt"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CardBin       string          `json:"cardBin"`
}

// MarshalJSON renders amount as a JSON number with two fractional digits
func (d TransactionData) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TransactionID string      `json:"transactionId"`
		CreatedAt     string      `json:"createdAt"`
		Amount        json.Number `json:"amount"`
		Currency      string      `json:"currency"`
		CardBin       string      `json:"cardBin"`
	}{
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt,
		Amount:        json.Number(d.Amount.StringFixed(2)),
		Currency:      d.Currency,
		CardBin:       d.CardBin,
	})
}

// UnifiedResponse is the provider agnostic outcome of a payment
type UnifiedResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    TransactionData `json:"data"`
	Failure FailureKind     `json:"-"`
}

// FailedResponse is returned by adapters that cannot interpret a raw result
func FailedResponse(now time.Time) UnifiedResponse {
	return UnifiedResponse{
		Success: false,
		Message: MsgAdapterFailure,
		Data: TransactionData{
			CreatedAt: now.UTC().Format(TimestampLayout),
			Amount:    decimal.Zero,
			Currency:  "USD",
		},
		Failure: FailureInternal,
	}
}

// PaymentProcessor sends a request to one provider. It never returns an
// error: every failure is encoded in the RawResult.
type PaymentProcessor interface {
	Provider() ProviderID
	ProcessPayment(ctx context.Context, request TransactionRequest) RawResult
}

// ResponseAdapter converts one provider's RawResult into a UnifiedResponse
type ResponseAdapter interface {
	Provider() ProviderID
	ReturnResponse(raw RawResult) UnifiedResponse
}
