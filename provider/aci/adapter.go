package aci

import (
	"time"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/provider"
)

// ACI timestamps look like "2024-05-14 09:21:07.541+0000"
const timestampLayout = "2006-01-02 15:04:05-0700"

const (
	defaultCurrency = "EUR"
	msgSucceeded    = "Payment processed successfully via ACI"
)

// Adapter normalizes ACI results into unified responses
type Adapter struct {
	log logger.Logger
	now func() time.Time
}

// NewAdapter creates an ACI response adapter
func NewAdapter(log logger.Logger) *Adapter {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Adapter{log: log, now: time.Now}
}

// Provider returns the provider identifier
func (a *Adapter) Provider() provider.ProviderID {
	return provider.ACI
}

// ReturnResponse never fails: unreadable results become a generic failure
func (a *Adapter) ReturnResponse(raw provider.RawResult) provider.UnifiedResponse {
	if raw.Provider != provider.ACI {
		a.log.Error("ACI adapter received a foreign result", nil, logger.LogContext{
			Provider: "aci",
			Fields:   map[string]any{"result_provider": string(raw.Provider)},
		})
		return provider.FailedResponse(a.now())
	}

	amount, _, err := provider.DecimalAt(raw.Data, "amount")
	if err != nil {
		a.log.Error("Exception in ACI response adapter", err, logger.LogContext{Provider: "aci"})
		return provider.FailedResponse(a.now())
	}

	transactionID, _ := provider.StringAt(raw.Data, "id")
	currency, ok := provider.StringAt(raw.Data, "currency")
	if !ok {
		currency = defaultCurrency
	}
	bin, _ := provider.StringAt(raw.Data, "card", "bin")

	createdAt := a.now().UTC()
	if ts, ok := provider.StringAt(raw.Data, "timestamp"); ok {
		if parsed, err := time.Parse(timestampLayout, ts); err == nil {
			createdAt = parsed
		}
	}

	message := msgSucceeded
	failure := provider.FailureNone
	if !raw.Success {
		message = raw.Message
		if message == "" {
			message = provider.MsgPaymentFailed
		}
		failure = raw.Failure
		if failure == provider.FailureNone {
			failure = provider.FailureDecline
		}
	}

	return provider.UnifiedResponse{
		Success: raw.Success,
		Message: message,
		Data: provider.TransactionData{
			TransactionID: transactionID,
			CreatedAt:     createdAt.Format(provider.TimestampLayout),
			Amount:        amount.Round(2),
			Currency:      currency,
			CardBin:       provider.Prefix(bin, 6),
		},
		Failure: failure,
	}
}

var (
	_ provider.ResponseAdapter  = (*Adapter)(nil)
	_ provider.PaymentProcessor = (*Processor)(nil)
)
