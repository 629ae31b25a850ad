package aci

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/infra/metrics"
	"github.com/mstgnz/payroute/infra/tracing"
	"github.com/mstgnz/payroute/provider"
)

const (
	// DefaultPaymentURL is the ACI (Open Payment Platform) test endpoint
	DefaultPaymentURL = "https://eu-test.oppwa.com/v1/payments"

	// Fixed request values agreed with ACI for card debits
	requestCurrency = "EUR"
	paymentBrand    = "VISA"
	paymentType     = "DB"
	cardHolder      = "Jane Jones"

	// Result codes starting with this prefix are successful transactions
	successCodePrefix = "000.100"

	requestTimeout = 60 * time.Second
	connectTimeout = 60 * time.Second

	msgConnectionError = "Connection error, please try again"
	msgUnknownDecline  = "Payment failed with unknown error"
	msgInternalError   = "An error occurred while processing payment through ACI"
)

// Processor charges cards through ACI with form-encoded requests
type Processor struct {
	entityID     string
	bearerToken  string
	paymentURL   string
	isProduction bool
	client       *provider.ProviderHTTPClient
	log          logger.Logger
}

// NewProcessor creates an unconfigured ACI processor. Call Initialize before use.
func NewProcessor(log logger.Logger) *Processor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Processor{log: log}
}

// GetRequiredConfig returns the configuration fields required for ACI
func (p *Processor) GetRequiredConfig(environment string) []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "entityId",
			Required:    true,
			Type:        "string",
			Description: "ACI entity identifier for the payment channel",
			Example:     "8a8294174b7ecb28014b9699220015ca",
			MinLength:   8,
			MaxLength:   64,
		},
		{
			Key:         "bearerToken",
			Required:    true,
			Type:        "string",
			Description: "ACI API access token sent as a Bearer header",
			Example:     "OGE4Mjk0MTc0YjdlY2IyODAxNGI5Njk5MjIwMDE1Y2N8c3k2S0pzVDg=",
			MinLength:   8,
		},
		{
			Key:         "paymentUrl",
			Required:    false,
			Type:        "url",
			Description: "Payments endpoint, defaults to the ACI test platform",
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

// ValidateConfig validates the provided configuration against ACI requirements
func (p *Processor) ValidateConfig(config map[string]string) error {
	return provider.ValidateConfigFields("aci", config, p.GetRequiredConfig(config["environment"]))
}

// Initialize applies credentials. TLS peer verification is enabled only for production.
func (p *Processor) Initialize(conf map[string]string) error {
	if err := p.ValidateConfig(conf); err != nil {
		return err
	}

	p.entityID = conf["entityId"]
	p.bearerToken = conf["bearerToken"]
	p.paymentURL = DefaultPaymentURL
	if u := strings.TrimSpace(conf["paymentUrl"]); u != "" {
		p.paymentURL = u
	}
	p.isProduction = provider.IsProductionEnvironment(conf)

	clientConfig := provider.CreateHTTPClientConfig(p.paymentURL, p.isProduction, requestTimeout)
	clientConfig.ConnectTimeout = connectTimeout
	p.client = provider.NewProviderHTTPClient(clientConfig)

	return nil
}

// Provider returns the provider identifier
func (p *Processor) Provider() provider.ProviderID {
	return provider.ACI
}

// ProcessPayment sends one debit to ACI. Every failure is reported in the result.
func (p *Processor) ProcessPayment(ctx context.Context, request provider.TransactionRequest) provider.RawResult {
	ctx, span := tracing.StartSpan(ctx, "aci.process_payment")
	defer span.End()

	start := time.Now()
	result := p.processPayment(ctx, request)

	metrics.ObserveProviderCall(string(provider.ACI), result.Outcome(), time.Since(start))
	tracing.RecordOutcome(span, result.Success, result.Outcome())

	return result
}

func (p *Processor) processPayment(ctx context.Context, request provider.TransactionRequest) provider.RawResult {
	if p.client == nil {
		p.log.Error("ACI processor used before initialization", provider.ErrProviderNotConfigured, logger.LogContext{Provider: "aci"})
		return failure(provider.FailureInternal, msgInternalError)
	}

	resp, err := p.client.SendForm(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: p.paymentURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + p.bearerToken,
		},
		FormData: p.prepareRequestData(request),
	})
	if err != nil {
		return p.transportFailure(err)
	}

	var body map[string]any
	if err := p.client.ParseJSONResponse(resp, &body); err != nil {
		p.log.Warn("ACI returned a non-JSON body", logger.LogContext{
			Provider: "aci",
			Fields:   map[string]any{"http_status": resp.StatusCode, "error": err.Error()},
		})
		body = nil
	}

	code, _ := provider.StringAt(body, "result", "code")
	description, hasDescription := provider.StringAt(body, "result", "description")

	if strings.HasPrefix(code, successCodePrefix) {
		return provider.RawResult{
			Provider: provider.ACI,
			Success:  true,
			Message:  description,
			Data:     body,
		}
	}

	if code == "" {
		code = "unknown"
	}
	if !hasDescription {
		description = msgUnknownDecline
	}

	p.log.Error(fmt.Sprintf("Payment failed with code %s: %s", code, description), nil, logger.LogContext{
		Provider: "aci",
		Fields:   map[string]any{"code": code, "http_status": resp.StatusCode},
	})

	return provider.RawResult{
		Provider: provider.ACI,
		Success:  false,
		Message:  description,
		Failure:  provider.FailureDecline,
		Data:     body,
	}
}

func (p *Processor) transportFailure(err error) provider.RawResult {
	logCtx := logger.LogContext{Provider: "aci"}

	switch provider.ClassifyTransportError(err) {
	case provider.TransportTimeout, provider.TransportConnect:
		p.log.Error("ACI request timed out", err, logCtx)
		return failure(provider.FailureTimeout, provider.MsgRequestTimedOut)
	case provider.TransportBuild:
		p.log.Error("Error during ACI payment", err, logCtx)
		return failure(provider.FailureInternal, msgInternalError)
	default:
		p.log.Error("ACI connection error", err, logCtx)
		return failure(provider.FailureTransport, msgConnectionError)
	}
}

// prepareRequestData builds the form body. Field names are fixed by the ACI API.
func (p *Processor) prepareRequestData(request provider.TransactionRequest) url.Values {
	form := url.Values{}
	form.Set("entityId", p.entityID)
	form.Set("amount", request.Amount().StringFixed(2))
	form.Set("currency", requestCurrency)
	form.Set("paymentBrand", paymentBrand)
	form.Set("paymentType", paymentType)
	form.Set("card.number", request.CardNumber())
	form.Set("card.holder", cardHolder)
	form.Set("card.expiryMonth", request.CardExpMonth())
	form.Set("card.expiryYear", strconv.Itoa(request.CardExpYear()))
	form.Set("card.cvv", request.CardCvv())
	return form
}

func failure(kind provider.FailureKind, message string) provider.RawResult {
	return provider.RawResult{
		Provider: provider.ACI,
		Success:  false,
		Message:  message,
		Failure:  kind,
	}
}
