package shift4

import (
	"time"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/provider"
)

const (
	defaultCurrency = "USD"
	msgSucceeded    = "Payment processed successfully via Shift4"
)

// Adapter normalizes Shift4 charge results into unified responses
type Adapter struct {
	log logger.Logger
	now func() time.Time
}

// NewAdapter creates a Shift4 response adapter
func NewAdapter(log logger.Logger) *Adapter {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Adapter{log: log, now: time.Now}
}

// Provider returns the provider identifier
func (a *Adapter) Provider() provider.ProviderID {
	return provider.Shift4
}

// ReturnResponse never fails: unreadable results become a generic failure
func (a *Adapter) ReturnResponse(raw provider.RawResult) provider.UnifiedResponse {
	if raw.Provider != provider.Shift4 {
		a.log.Error("Shift4 adapter received a foreign result", nil, logger.LogContext{
			Provider: "shift4",
			Fields:   map[string]any{"result_provider": string(raw.Provider)},
		})
		return provider.FailedResponse(a.now())
	}

	minorUnits, _, err := provider.DecimalAt(raw.Data, "amount")
	if err != nil {
		a.log.Error("Exception in Shift4 response adapter", err, logger.LogContext{Provider: "shift4"})
		return provider.FailedResponse(a.now())
	}

	createdAt := a.now().UTC()
	created, ok, err := provider.Int64At(raw.Data, "created")
	if err != nil {
		a.log.Error("Exception in Shift4 response adapter", err, logger.LogContext{Provider: "shift4"})
		return provider.FailedResponse(a.now())
	}
	if ok {
		createdAt = time.Unix(created, 0).UTC()
	}

	transactionID, _ := provider.StringAt(raw.Data, "id")
	currency, ok := provider.StringAt(raw.Data, "currency")
	if !ok {
		currency = defaultCurrency
	}
	first6, _ := provider.StringAt(raw.Data, "card", "first6")

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
			Amount:        minorUnits.Shift(-2),
			Currency:      currency,
			CardBin:       provider.Prefix(first6, 6),
		},
		Failure: failure,
	}
}

var (
	_ provider.ResponseAdapter  = (*Adapter)(nil)
	_ provider.PaymentProcessor = (*Processor)(nil)
)
