package shift4

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mstgnz/payroute/provider"
)

func newTestAdapter() *Adapter {
	log, _ := testLogger()
	a := NewAdapter(log)
	a.now = func() time.Time { return fixedNow }
	return a
}

func TestAdapter_Success(t *testing.T) {
	resp := newTestAdapter().ReturnResponse(provider.RawResult{
		Provider: provider.Shift4,
		Success:  true,
		Message:  "Payment processed successfully",
		Data: map[string]any{
			"id":       "txn123",
			"created":  json.Number("1715678467"),
			"amount":   json.Number("10000"),
			"currency": "USD",
			"card":     map[string]any{"first6": "424242", "last4": "4242"},
		},
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "Payment processed successfully via Shift4", resp.Message)
	assert.Equal(t, "txn123", resp.Data.TransactionID)
	assert.Equal(t, "2024-05-14 09:21:07", resp.Data.CreatedAt)
	assert.Equal(t, "100.00", resp.Data.Amount.StringFixed(2))
	assert.Equal(t, "USD", resp.Data.Currency)
	assert.Equal(t, "424242", resp.Data.CardBin)
}

func TestAdapter_MinorUnits(t *testing.T) {
	tests := []struct {
		amount any
		want   string
	}{
		{amount: json.Number("1"), want: "0.01"},
		{amount: json.Number("9250"), want: "92.50"},
		{amount: float64(199), want: "1.99"},
		{amount: "500", want: "5.00"},
	}

	for _, tt := range tests {
		resp := newTestAdapter().ReturnResponse(provider.RawResult{
			Provider: provider.Shift4,
			Success:  true,
			Data:     map[string]any{"amount": tt.amount},
		})
		assert.Equal(t, tt.want, resp.Data.Amount.StringFixed(2))
	}
}

func TestAdapter_Defaults(t *testing.T) {
	resp := newTestAdapter().ReturnResponse(provider.RawResult{
		Provider: provider.Shift4,
		Success:  true,
		Data:     map[string]any{},
	})

	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data.TransactionID)
	assert.Equal(t, "2030-06-15 10:00:00", resp.Data.CreatedAt)
	assert.True(t, resp.Data.Amount.IsZero())
	assert.Equal(t, "USD", resp.Data.Currency)
	assert.Empty(t, resp.Data.CardBin)
}

func TestAdapter_Failure(t *testing.T) {
	t.Run("declined result keeps its message", func(t *testing.T) {
		resp := newTestAdapter().ReturnResponse(provider.RawResult{
			Provider: provider.Shift4,
			Message:  "The card was declined.",
			Failure:  provider.FailureDecline,
			Data: map[string]any{
				"error": map[string]any{"type": "card_error", "message": "The card was declined."},
			},
		})
		assert.False(t, resp.Success)
		assert.Equal(t, "The card was declined.", resp.Message)
		assert.Equal(t, provider.FailureDecline, resp.Failure)
		assert.Equal(t, "USD", resp.Data.Currency)
	})

	t.Run("empty failure uses fallback message", func(t *testing.T) {
		resp := newTestAdapter().ReturnResponse(provider.RawResult{Provider: provider.Shift4})
		assert.False(t, resp.Success)
		assert.Equal(t, "Payment failed, please try again later", resp.Message)
		assert.Equal(t, provider.FailureDecline, resp.Failure)
	})
}

func TestAdapter_UnreadableResult(t *testing.T) {
	tests := []struct {
		name string
		raw  provider.RawResult
	}{
		{
			name: "foreign provider",
			raw:  provider.RawResult{Provider: provider.ACI, Success: true},
		},
		{
			name: "amount is not a number",
			raw: provider.RawResult{
				Provider: provider.Shift4,
				Success:  true,
				Data:     map[string]any{"amount": "ten thousand"},
			},
		},
		{
			name: "created is fractional",
			raw: provider.RawResult{
				Provider: provider.Shift4,
				Success:  true,
				Data:     map[string]any{"created": json.Number("1715678467.5")},
			},
		},
		{
			name: "created is not a number",
			raw: provider.RawResult{
				Provider: provider.Shift4,
				Success:  true,
				Data:     map[string]any{"created": map[string]any{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newTestAdapter().ReturnResponse(tt.raw)
			assert.False(t, resp.Success)
			assert.Equal(t, "An error occurred while processing the payment", resp.Message)
			assert.Equal(t, provider.FailureInternal, resp.Failure)
			assert.True(t, resp.Data.Amount.IsZero())
			assert.Equal(t, "USD", resp.Data.Currency)
		})
	}
}
