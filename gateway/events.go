package gateway

import (
	"context"
	"time"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/infra/opensearch"
	"github.com/mstgnz/payroute/provider"
)

const eventIndexTimeout = 5 * time.Second

type transactionIndexer interface {
	LogTransaction(ctx context.Context, event any) error
}

// OpenSearchRecorder indexes transaction events without blocking the caller
type OpenSearchRecorder struct {
	indexer transactionIndexer
	log     logger.Logger
	wait    chan struct{}
}

// NewOpenSearchRecorder creates a recorder for the transaction index
func NewOpenSearchRecorder(osLogger *opensearch.Logger, log logger.Logger) *OpenSearchRecorder {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &OpenSearchRecorder{indexer: osLogger, log: log}
}

// RecordTransaction indexes event in the background
func (r *OpenSearchRecorder) RecordTransaction(_ context.Context, event provider.TransactionEvent) {
	go func() {
		if r.wait != nil {
			defer func() { r.wait <- struct{}{} }()
		}

		ctx, cancel := context.WithTimeout(context.Background(), eventIndexTimeout)
		defer cancel()

		if err := r.indexer.LogTransaction(ctx, event); err != nil {
			r.log.Warn("Failed to index transaction event", logger.LogContext{
				Provider:  event.Provider,
				RequestID: event.ReferenceID,
				Fields:    map[string]any{"error": err.Error()},
			})
		}
	}()
}
