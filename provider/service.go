package provider

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/infra/metrics"
	"github.com/mstgnz/payroute/infra/tracing"
)

// TransactionEvent is the card-free summary of one processed transaction
type TransactionEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	ReferenceID   string    `json:"reference_id"`
	Provider      string    `json:"provider"`
	Outcome       string    `json:"outcome"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	CardBin       string    `json:"card_bin,omitempty"`
	Message       string    `json:"message,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
}

// EventRecorder receives one TransactionEvent per completed call
type EventRecorder interface {
	RecordTransaction(ctx context.Context, event TransactionEvent)
}

// TransactionService runs validation, provider selection, dispatch and
// response adaptation for a single payment.
type TransactionService struct {
	validator  *RequestValidator
	processors *ProcessorFactory
	adapters   *AdapterFactory
	log        logger.Logger
	events     EventRecorder
	newRefID   func() string
}

// ServiceOption customizes a TransactionService
type ServiceOption func(*TransactionService)

// WithLogger replaces the global logger
func WithLogger(l logger.Logger) ServiceOption {
	return func(s *TransactionService) { s.log = l }
}

// WithEventRecorder sends a TransactionEvent for every call
func WithEventRecorder(r EventRecorder) ServiceOption {
	return func(s *TransactionService) { s.events = r }
}

// WithReferenceIDs overrides reference id generation
func WithReferenceIDs(fn func() string) ServiceOption {
	return func(s *TransactionService) { s.newRefID = fn }
}

// NewTransactionService creates a new transaction service
func NewTransactionService(validator *RequestValidator, processors *ProcessorFactory, adapters *AdapterFactory, opts ...ServiceOption) *TransactionService {
	s := &TransactionService{
		validator:  validator,
		processors: processors,
		adapters:   adapters,
		log:        logger.GetGlobalLogger(),
		newRefID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers returns the provider names the service can route to
func (s *TransactionService) Providers() []ProviderID {
	return s.processors.Providers()
}

// ProcessTransaction validates input, charges the card through the named
// provider and returns the unified outcome. It never panics.
func (s *TransactionService) ProcessTransaction(ctx context.Context, providerName string, input map[string]any) (result TransactionResult) {
	start := time.Now()
	referenceID := s.newRefID()
	label := metricLabel(providerName)
	logCtx := logger.LogContext{Provider: label, RequestID: referenceID}

	ctx, span := tracing.StartSpan(ctx, "transaction.process",
		attribute.String("payment.provider", label),
		attribute.String("payment.reference_id", referenceID),
	)
	defer span.End()

	var unified *UnifiedResponse
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("Unexpected error while processing transaction", fmt.Errorf("panic: %v", rec), logger.LogContext{
				Provider:  label,
				RequestID: referenceID,
				Fields:    map[string]any{"stack": string(debug.Stack())},
			})
			result = failedResult(ErrorKindUnexpected, referenceID, MsgUnexpectedError)
			unified = nil
		}

		elapsed := time.Since(start)
		metrics.ObserveTransaction(label, result.Outcome(), elapsed)
		tracing.RecordOutcome(span, result.Succeeded(), result.Outcome())
		s.record(ctx, label, referenceID, result, unified, elapsed)
	}()

	request, violations := s.validator.Validate(providerName, input)
	if len(violations) > 0 {
		s.log.Info("Transaction rejected by validation", logger.LogContext{
			Provider:  label,
			RequestID: referenceID,
			Fields:    map[string]any{"violations": len(violations)},
		})
		return failedResult(ErrorKindValidation, referenceID, violations...)
	}

	processor, err := s.processors.Create(providerName)
	if err != nil {
		return s.selectionFailure(err, referenceID, logCtx)
	}
	adapter, err := s.adapters.Create(providerName)
	if err != nil {
		return s.selectionFailure(err, referenceID, logCtx)
	}

	raw := processor.ProcessPayment(ctx, request)
	response := adapter.ReturnResponse(raw)
	unified = &response

	if !response.Success {
		s.log.Warn("Transaction failed", logger.LogContext{
			Provider:  label,
			RequestID: referenceID,
			Fields:    map[string]any{"failure": string(response.Failure)},
		})
		return failedResult(ErrorKindProvider, referenceID, response.Message)
	}

	data := response.Data
	s.log.Info("Transaction processed", logger.LogContext{
		Provider:  label,
		RequestID: referenceID,
		Fields: map[string]any{
			"transaction_id": data.TransactionID,
			"amount":         data.Amount.StringFixed(2),
			"currency":       data.Currency,
		},
	})

	return TransactionResult{
		Data:        &data,
		Message:     MsgTransactionSucceeded,
		ReferenceID: referenceID,
	}
}

func (s *TransactionService) selectionFailure(err error, referenceID string, logCtx logger.LogContext) TransactionResult {
	if errors.Is(err, ErrUnsupportedProvider) {
		s.log.Warn("Unsupported payment provider requested", logCtx)
		return failedResult(ErrorKindUnsupportedProvider, referenceID, err.Error())
	}

	s.log.Error("Failed to resolve payment provider", err, logCtx)
	return failedResult(ErrorKindUnexpected, referenceID, MsgUnexpectedError)
}

func (s *TransactionService) record(ctx context.Context, label, referenceID string, result TransactionResult, unified *UnifiedResponse, elapsed time.Duration) {
	if s.events == nil {
		return
	}

	event := TransactionEvent{
		Timestamp:   time.Now().UTC(),
		ReferenceID: referenceID,
		Provider:    label,
		Outcome:     result.Outcome(),
		DurationMs:  elapsed.Milliseconds(),
	}
	if len(result.Errors) > 0 {
		event.Message = result.Errors[0]
	}
	if unified != nil {
		event.TransactionID = unified.Data.TransactionID
		event.Amount = unified.Data.Amount.StringFixed(2)
		event.Currency = unified.Data.Currency
		event.CardBin = unified.Data.CardBin
	}

	s.events.RecordTransaction(ctx, event)
}

// metricLabel keeps label cardinality bounded to the supported set
func metricLabel(providerName string) string {
	name := strings.ToLower(strings.TrimSpace(providerName))
	if IsSupported(name) {
		return name
	}
	return "unsupported"
}
