package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var amountFormat = regexp.MustCompile(`^[0-9]{1,12}(\.[0-9]{2})?$`)

// transactionFields mirrors the raw input before coercion. Field order is the
// order in which violations are reported.
type transactionFields struct {
	Provider     string `validate:"required"`
	Amount       string `validate:"required,numeric,positive_amount,amount_format"`
	Currency     string `validate:"required,len=3,alpha"`
	CardNumber   string `validate:"required"`
	CardExpYear  string `validate:"required,number"`
	CardExpMonth string `validate:"required,len=2,number,exp_month"`
	CardCvv      string `validate:"required,min=3,max=4,number"`
}

var violationMessages = map[string]string{
	"Provider.required":         "Provider is required",
	"Amount.required":           "Amount is required",
	"Amount.numeric":            "Amount must be numeric",
	"Amount.positive_amount":    "Amount must be greater than 0",
	"Amount.amount_format":      "Amount must have up to 12 digits before the decimal and exactly 2 digits after.",
	"Currency.required":         "Currency is required",
	"Currency.len":              "Currency must be a 3-letter code",
	"Currency.alpha":            "Currency must be a 3-letter code",
	"CardNumber.required":       "Card number is required",
	"CardExpYear.required":      "Card expiration year is required",
	"CardExpYear.number":        "Expiration year must be a valid year",
	"CardExpYear.not_past":      "Expiration year cannot be in the past.",
	"CardExpMonth.required":     "Card expiration month is required",
	"CardExpMonth.len":          "Expiration month must be exactly 2 digits long",
	"CardExpMonth.number":       "Expiration month must be between 1 and 12",
	"CardExpMonth.exp_month":    "Expiration month must be between 1 and 12",
	"CardExpMonth.future_month": "Expiration month must be in the future if the expiration year is the current year.",
	"CardCvv.required":          "CVV is required",
	"CardCvv.min":               "CVV must be between 3 and 4 digits",
	"CardCvv.max":               "CVV must be between 3 and 4 digits",
	"CardCvv.number":            "CVV must be between 3 and 4 digits",
}

// RequestValidator turns raw caller input into a TransactionRequest
type RequestValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewRequestValidator registers the payment rules on validate. A nil now
// defaults to time.Now.
func NewRequestValidator(validate *validator.Validate, now func() time.Time) *RequestValidator {
	if validate == nil {
		validate = validator.New()
	}
	if now == nil {
		now = time.Now
	}

	v := &RequestValidator{validate: validate, now: now}
	_ = validate.RegisterValidation("positive_amount", isPositiveAmount)
	_ = validate.RegisterValidation("amount_format", isAmountFormat)
	_ = validate.RegisterValidation("exp_month", isExpiryMonth)
	validate.RegisterStructValidation(v.validateExpiry, transactionFields{})

	return v
}

// Validate checks every field in one pass. It returns either a request or a
// non-empty list of violation messages, never both.
func (v *RequestValidator) Validate(providerName string, input map[string]any) (TransactionRequest, []string) {
	fields := transactionFields{
		Provider:     strings.TrimSpace(providerName),
		Amount:       inputString(input, "amount"),
		Currency:     inputString(input, "currency"),
		CardNumber:   inputString(input, "card_number"),
		CardExpYear:  inputString(input, "card_exp_year"),
		CardExpMonth: inputString(input, "card_exp_month"),
		CardCvv:      inputString(input, "card_cvv"),
	}

	if err := v.validate.Struct(fields); err != nil {
		return TransactionRequest{}, violationList(err)
	}

	amount, err := decimal.NewFromString(fields.Amount)
	if err != nil {
		return TransactionRequest{}, []string{violationMessages["Amount.numeric"]}
	}
	year, err := strconv.Atoi(fields.CardExpYear)
	if err != nil {
		return TransactionRequest{}, []string{violationMessages["CardExpYear.number"]}
	}

	return TransactionRequest{
		provider:     fields.Provider,
		amount:       amount,
		currency:     fields.Currency,
		cardNumber:   fields.CardNumber,
		cardExpYear:  year,
		cardExpMonth: fields.CardExpMonth,
		cardCvv:      fields.CardCvv,
	}, nil
}

func (v *RequestValidator) validateExpiry(sl validator.StructLevel) {
	fields := sl.Current().Interface().(transactionFields)

	year, err := strconv.Atoi(fields.CardExpYear)
	if err != nil {
		return
	}

	now := v.now()
	if year < now.Year() {
		sl.ReportError(fields.CardExpYear, "card_exp_year", "CardExpYear", "not_past", "")
		return
	}
	if year != now.Year() {
		return
	}

	month, err := strconv.Atoi(fields.CardExpMonth)
	if err != nil || len(fields.CardExpMonth) != 2 || month < 1 || month > 12 {
		return
	}
	if month < int(now.Month()) {
		sl.ReportError(fields.CardExpMonth, "card_exp_month", "CardExpMonth", "future_month", "")
	}
}

func violationList(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{fmt.Sprintf("Invalid transaction request: %v", err)}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		if msg, ok := violationMessages[fe.StructField()+"."+fe.Tag()]; ok {
			messages = append(messages, msg)
			continue
		}
		messages = append(messages, fmt.Sprintf("%s is invalid", fe.StructField()))
	}
	return messages
}

func isPositiveAmount(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(fl.Field().String())
	return err == nil && amount.IsPositive()
}

func isAmountFormat(fl validator.FieldLevel) bool {
	return amountFormat.MatchString(fl.Field().String())
}

func isExpiryMonth(fl validator.FieldLevel) bool {
	month, err := strconv.Atoi(fl.Field().String())
	return err == nil && month >= 1 && month <= 12
}

// inputString coerces a decoded JSON or CLI value into its string form
func inputString(input map[string]any, key string) string {
	switch v := input[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
