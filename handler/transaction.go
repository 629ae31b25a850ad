package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/infra/response"
	"github.com/mstgnz/payroute/provider"
)

const maxTransactionBody = 1 << 20

const msgInvalidJSON = "Invalid JSON payload"

// TransactionProcessor is the part of the gateway the handler depends on
type TransactionProcessor interface {
	ProcessTransaction(ctx context.Context, providerName string, input map[string]any) provider.TransactionResult
}

// TransactionHandler exposes TransactionService over HTTP
type TransactionHandler struct {
	service TransactionProcessor
	log     logger.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service TransactionProcessor, log logger.Logger) *TransactionHandler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &TransactionHandler{service: service, log: log}
}

// ProcessTransaction handles POST /{provider} with a JSON transaction body.
// 200 on success, 400 for rejected input or declined payments, 500 otherwise.
func (h *TransactionHandler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	input, err := decodeTransaction(http.MaxBytesReader(w, r.Body, maxTransactionBody))
	if err != nil {
		h.log.Warn("Rejected transaction payload", logger.LogContext{
			Provider:  providerName,
			RequestID: middleware.GetReqID(r.Context()),
			Fields:    map[string]any{"error": err.Error()},
		})
		response.Errors(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	result := h.service.ProcessTransaction(r.Context(), providerName, input)
	if result.ReferenceID != "" {
		w.Header().Set("X-Reference-ID", result.ReferenceID)
	}

	_ = response.WriteJSON(w, StatusFor(result), result)
}

// StatusFor maps a transaction outcome to an HTTP status code
func StatusFor(result provider.TransactionResult) int {
	if result.Succeeded() {
		return http.StatusOK
	}
	switch result.Kind {
	case provider.ErrorKindValidation, provider.ErrorKindUnsupportedProvider, provider.ErrorKindProvider:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeTransaction accepts exactly one JSON object. Numbers stay json.Number
// so amounts keep their original digits.
func decodeTransaction(body io.Reader) (map[string]any, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var input map[string]any
	if err := decoder.Decode(&input); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, errors.New("payload must be a JSON object")
	}
	if decoder.More() {
		return nil, errors.New("unexpected data after JSON object")
	}
	return input, nil
}
