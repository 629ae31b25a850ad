package provider

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, time.June, 15, 10, 0, 0, 0, time.UTC)

func newTestValidator() *RequestValidator {
	return NewRequestValidator(nil, func() time.Time { return fixedNow })
}

func validInput() map[string]any {
	return map[string]any{
		"amount":         "100.00",
		"currency":       "USD",
		"card_number":    "4242424242424242",
		"card_exp_year":  "2034",
		"card_exp_month": "11",
		"card_cvv":       "123",
	}
}

func withField(key string, value any) map[string]any {
	input := validInput()
	if value == nil {
		delete(input, key)
	} else {
		input[key] = value
	}
	return input
}

func TestRequestValidator_Valid(t *testing.T) {
	request, violations := newTestValidator().Validate(" shift4 ", validInput())

	require.Empty(t, violations)
	assert.Equal(t, "shift4", request.Provider())
	assert.Equal(t, "100.00", request.Amount().StringFixed(2))
	assert.Equal(t, "USD", request.Currency())
	assert.Equal(t, "4242424242424242", request.CardNumber())
	assert.Equal(t, 2034, request.CardExpYear())
	assert.Equal(t, "11", request.CardExpMonth())
	assert.Equal(t, "123", request.CardCvv())
}

func TestRequestValidator_DecodedJSONTypes(t *testing.T) {
	request, violations := newTestValidator().Validate("aci", map[string]any{
		"amount":         json.Number("92.00"),
		"currency":       "EUR",
		"card_number":    "4200000000000000",
		"card_exp_year":  json.Number("2034"),
		"card_exp_month": "05",
		"card_cvv":       "1234",
	})

	require.Empty(t, violations)
	assert.Equal(t, "92", request.Amount().String())
	assert.Equal(t, 2034, request.CardExpYear())
	assert.Equal(t, "05", request.CardExpMonth())

	request, violations = newTestValidator().Validate("aci", withField("card_exp_year", float64(2031)))
	require.Empty(t, violations)
	assert.Equal(t, 2031, request.CardExpYear())

	_, violations = newTestValidator().Validate("aci", withField("card_exp_year", 2031))
	assert.Empty(t, violations)
}

func TestRequestValidator_SingleViolation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{name: "amount missing", key: "amount", value: nil, want: "Amount is required"},
		{name: "amount blank", key: "amount", value: "  ", want: "Amount is required"},
		{name: "amount not numeric", key: "amount", value: "abc", want: "Amount must be numeric"},
		{name: "amount zero", key: "amount", value: "0.00", want: "Amount must be greater than 0"},
		{name: "amount negative", key: "amount", value: "-5.00", want: "Amount must be greater than 0"},
		{name: "amount one decimal", key: "amount", value: "92.5", want: "Amount must have up to 12 digits before the decimal and exactly 2 digits after."},
		{name: "amount three decimals", key: "amount", value: "92.500", want: "Amount must have up to 12 digits before the decimal and exactly 2 digits after."},
		{name: "amount too large", key: "amount", value: "1234567890123.00", want: "Amount must have up to 12 digits before the decimal and exactly 2 digits after."},
		{name: "amount float with one decimal", key: "amount", value: float64(92.5), want: "Amount must have up to 12 digits before the decimal and exactly 2 digits after."},
		{name: "currency missing", key: "currency", value: nil, want: "Currency is required"},
		{name: "currency too short", key: "currency", value: "US", want: "Currency must be a 3-letter code"},
		{name: "currency with digit", key: "currency", value: "U5D", want: "Currency must be a 3-letter code"},
		{name: "card number missing", key: "card_number", value: nil, want: "Card number is required"},
		{name: "year missing", key: "card_exp_year", value: nil, want: "Card expiration year is required"},
		{name: "year not a number", key: "card_exp_year", value: "20x4", want: "Expiration year must be a valid year"},
		{name: "year in the past", key: "card_exp_year", value: "2029", want: "Expiration year cannot be in the past."},
		{name: "month missing", key: "card_exp_month", value: nil, want: "Card expiration month is required"},
		{name: "month one digit", key: "card_exp_month", value: "5", want: "Expiration month must be exactly 2 digits long"},
		{name: "month as json number", key: "card_exp_month", value: json.Number("5"), want: "Expiration month must be exactly 2 digits long"},
		{name: "month thirteen", key: "card_exp_month", value: "13", want: "Expiration month must be between 1 and 12"},
		{name: "month zero", key: "card_exp_month", value: "00", want: "Expiration month must be between 1 and 12"},
		{name: "month letters", key: "card_exp_month", value: "ab", want: "Expiration month must be between 1 and 12"},
		{name: "cvv missing", key: "card_cvv", value: nil, want: "CVV is required"},
		{name: "cvv too short", key: "card_cvv", value: "12", want: "CVV must be between 3 and 4 digits"},
		{name: "cvv too long", key: "card_cvv", value: "12345", want: "CVV must be between 3 and 4 digits"},
		{name: "cvv letters", key: "card_cvv", value: "12a", want: "CVV must be between 3 and 4 digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, violations := newTestValidator().Validate("shift4", withField(tt.key, tt.value))
			assert.Equal(t, []string{tt.want}, violations)
			assert.Equal(t, TransactionRequest{}, request)
		})
	}
}

func TestRequestValidator_ProviderRequired(t *testing.T) {
	_, violations := newTestValidator().Validate("   ", validInput())
	assert.Equal(t, []string{"Provider is required"}, violations)
}

func TestRequestValidator_UnknownProviderIsNotAViolation(t *testing.T) {
	request, violations := newTestValidator().Validate("paypal", validInput())
	assert.Empty(t, violations)
	assert.Equal(t, "paypal", request.Provider())
}

func TestRequestValidator_CollectsAllViolations(t *testing.T) {
	_, violations := newTestValidator().Validate("", map[string]any{})

	assert.Equal(t, []string{
		"Provider is required",
		"Amount is required",
		"Currency is required",
		"Card number is required",
		"Card expiration year is required",
		"Card expiration month is required",
		"CVV is required",
	}, violations)
}

func TestRequestValidator_MixedViolations(t *testing.T) {
	_, violations := newTestValidator().Validate("aci", map[string]any{
		"amount":         "abc",
		"currency":       "EUR",
		"card_number":    "4200000000000000",
		"card_exp_year":  "2029",
		"card_exp_month": "05",
		"card_cvv":       "1",
	})

	assert.ElementsMatch(t, []string{
		"Amount must be numeric",
		"CVV must be between 3 and 4 digits",
		"Expiration year cannot be in the past.",
	}, violations)
}

func TestRequestValidator_CurrentYearExpiry(t *testing.T) {
	tests := []struct {
		month string
		want  []string
	}{
		{month: "05", want: []string{"Expiration month must be in the future if the expiration year is the current year."}},
		{month: "01", want: []string{"Expiration month must be in the future if the expiration year is the current year."}},
		{month: "06", want: nil},
		{month: "12", want: nil},
		{month: "13", want: []string{"Expiration month must be between 1 and 12"}},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			input := validInput()
			input["card_exp_year"] = "2030"
			input["card_exp_month"] = tt.month

			_, violations := newTestValidator().Validate("aci", input)
			if tt.want == nil {
				assert.Empty(t, violations)
				return
			}
			assert.Equal(t, tt.want, violations)
		})
	}
}

func TestRequestValidator_PastMonthInFutureYear(t *testing.T) {
	input := validInput()
	input["card_exp_year"] = "2031"
	input["card_exp_month"] = "01"

	_, violations := newTestValidator().Validate("aci", input)
	assert.Empty(t, violations)
}

func TestRequestValidator_Idempotent(t *testing.T) {
	v := newTestValidator()
	input := withField("card_cvv", "1")

	_, first := v.Validate("aci", input)
	_, second := v.Validate("aci", input)
	assert.Equal(t, first, second)

	r1, _ := v.Validate("aci", validInput())
	r2, _ := v.Validate("aci", validInput())
	assert.Equal(t, r1, r2)
}

func TestRequestValidator_DefaultClock(t *testing.T) {
	v := NewRequestValidator(nil, nil)
	input := validInput()
	input["card_exp_year"] = "2000"

	_, violations := v.Validate("aci", input)
	assert.Equal(t, []string{"Expiration year cannot be in the past."}, violations)
}
