package shift4

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/infra/metrics"
	"github.com/mstgnz/payroute/infra/tracing"
	"github.com/mstgnz/payroute/provider"
)

const (
	// DefaultPaymentURL is the Shift4 charges endpoint
	DefaultPaymentURL = "https://api.shift4.com/charges"

	chargeDescription = "Description we agreed on"
	requestTimeout    = 60 * time.Second

	msgChargeAccepted = "Payment processed successfully"
	msgUnknownError   = "An unknown error occurred"
	msgRetry          = "An error occurred, please try again"
	msgInternalError  = "An error occurred while processing payment through Shift4"

	unknownErrorType = "unknown_error"
)

type chargeCard struct {
	Number   string `json:"number"`
	ExpMonth string `json:"expMonth"`
	ExpYear  string `json:"expYear"`
	Cvc      string `json:"cvc"`
}

type chargeRequest struct {
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Card        chargeCard `json:"card"`
	Description string     `json:"description"`
}

// Processor creates Shift4 charges with JSON requests and basic auth
type Processor struct {
	apiKey     string
	paymentURL string
	client     *provider.ProviderHTTPClient
	log        logger.Logger
}

// NewProcessor creates an unconfigured Shift4 processor. Call Initialize before use.
func NewProcessor(log logger.Logger) *Processor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Processor{log: log}
}

// GetRequiredConfig returns the configuration fields required for Shift4
func (p *Processor) GetRequiredConfig(environment string) []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "apiKey",
			Required:    true,
			Type:        "string",
			Description: "Shift4 secret key, sent as the basic auth username",
			Example:     "sk_test_xxxxxxxxxxxxxxxxxxxxxxxx",
			MinLength:   8,
		},
		{
			Key:         "paymentUrl",
			Required:    false,
			Type:        "url",
			Description: "Charges endpoint",
			Example:     DefaultPaymentURL,
		},
		{
			Key:         "environment",
			Required:    true,
			Type:        "string",
			Description: "Environment: sandbox, test or production",
			Example:     environment,
			Pattern:     "^(sandbox|test|production)$",
		},
	}
}

// ValidateConfig validates the provided configuration against Shift4 requirements
func (p *Processor) ValidateConfig(config map[string]string) error {
	return provider.ValidateConfigFields("shift4", config, p.GetRequiredConfig(config["environment"]))
}

// Initialize applies credentials. Shift4 always verifies the TLS peer.
func (p *Processor) Initialize(conf map[string]string) error {
	if err := p.ValidateConfig(conf); err != nil {
		return err
	}

	p.apiKey = conf["apiKey"]
	p.paymentURL = DefaultPaymentURL
	if u := strings.TrimSpace(conf["paymentUrl"]); u != "" {
		p.paymentURL = u
	}
	clientConfig := provider.CreateHTTPClientConfig(p.paymentURL, true, requestTimeout)
	p.client = provider.NewProviderHTTPClient(clientConfig)

	return nil
}

// Provider returns the provider identifier
func (p *Processor) Provider() provider.ProviderID {
	return provider.Shift4
}

// ProcessPayment creates one charge. Every failure is reported in the result.
func (p *Processor) ProcessPayment(ctx context.Context, request provider.TransactionRequest) provider.RawResult {
	ctx, span := tracing.StartSpan(ctx, "shift4.process_payment")
	defer span.End()

	start := time.Now()
	result := p.processPayment(ctx, request)

	metrics.ObserveProviderCall(string(provider.Shift4), result.Outcome(), time.Since(start))
	tracing.RecordOutcome(span, result.Success, result.Outcome())

	return result
}

func (p *Processor) processPayment(ctx context.Context, request provider.TransactionRequest) provider.RawResult {
	logCtx := logger.LogContext{Provider: "shift4"}

	if p.client == nil {
		p.log.Error("Shift4 processor used before initialization", provider.ErrProviderNotConfigured, logCtx)
		return failure(provider.FailureInternal, msgInternalError)
	}

	resp, err := p.client.SendJSON(ctx, &provider.HTTPRequest{
		Method:    http.MethodPost,
		Endpoint:  p.paymentURL,
		Body:      newChargeRequest(request),
		BasicAuth: &provider.BasicAuth{Username: p.apiKey},
	})
	if err != nil {
		if provider.ClassifyTransportError(err) == provider.TransportTimeout {
			p.log.Error("Shift4 request timed out", err, logCtx)
			return failure(provider.FailureTimeout, provider.MsgRequestTimedOut)
		}
		p.log.Error("Error during Shift4 payment", err, logCtx)
		return failure(provider.FailureTransport, msgInternalError)
	}

	var body map[string]any
	parseErr := p.client.ParseJSONResponse(resp, &body)

	if resp.StatusCode == http.StatusOK {
		if parseErr != nil {
			p.log.Error("Error during Shift4 payment", fmt.Errorf("decode charge response: %w", parseErr), logCtx)
			return failure(provider.FailureInternal, msgInternalError)
		}

		chargeID, _ := provider.StringAt(body, "id")
		p.log.Info("Shift4 charge created", logger.LogContext{
			Provider: "shift4",
			Fields:   map[string]any{"charge_id": chargeID},
		})
		return provider.RawResult{
			Provider: provider.Shift4,
			Success:  true,
			Message:  msgChargeAccepted,
			Data:     body,
		}
	}

	errObject, ok := provider.ValueAt(body, "error")
	if _, isMap := errObject.(map[string]any); !ok || !isMap {
		p.log.Error("Unexpected Shift4 response", nil, logger.LogContext{
			Provider: "shift4",
			Fields:   map[string]any{"http_status": resp.StatusCode},
		})
		return provider.RawResult{
			Provider: provider.Shift4,
			Success:  false,
			Message:  msgRetry,
			Failure:  provider.FailureDecline,
			Data:     body,
		}
	}

	errorType, ok := provider.StringAt(body, "error", "type")
	if !ok {
		errorType = unknownErrorType
	}
	errorMessage, ok := provider.StringAt(body, "error", "message")
	if !ok {
		errorMessage = msgUnknownError
	}

	p.log.Error(fmt.Sprintf("Error from Shift4: %s - %s", errorType, errorMessage), nil, logger.LogContext{
		Provider: "shift4",
		Fields:   map[string]any{"type": errorType, "http_status": resp.StatusCode},
	})

	return provider.RawResult{
		Provider: provider.Shift4,
		Success:  false,
		Message:  errorMessage,
		Failure:  provider.FailureDecline,
		Data:     body,
	}
}

// newChargeRequest converts the amount to minor units
func newChargeRequest(request provider.TransactionRequest) chargeRequest {
	return chargeRequest{
		Amount:   request.Amount().Shift(2).Round(0).IntPart(),
		Currency: request.Currency(),
		Card: chargeCard{
			Number:   request.CardNumber(),
			ExpMonth: request.CardExpMonth(),
			ExpYear:  strconv.Itoa(request.CardExpYear()),
			Cvc:      request.CardCvv(),
		},
		Description: chargeDescription,
	}
}

func failure(kind provider.FailureKind, message string) provider.RawResult {
	return provider.RawResult{
		Provider: provider.Shift4,
		Success:  false,
		Message:  message,
		Failure:  kind,
	}
}
