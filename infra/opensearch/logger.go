package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, event any) error {
	return l.index(ctx, SystemLogIndex, event)
}

// LogTransaction indexes a card-free transaction outcome
func (l *Logger) LogTransaction(ctx context.Context, event any) error {
	return l.index(ctx, TransactionIndex, event)
}

func (l *Logger) index(ctx context.Context, indexName string, document any) error {
	if l == nil || l.client == nil || !l.client.IsEnabled() {
		return nil
	}

	docJSON, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal document for %s: %w", indexName, err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader([]byte(SanitizeForLog(string(docJSON)))),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index document in %s: %w", indexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch index error: %s", res.String())
	}

	return nil
}

var (
	sensitiveFieldPattern = regexp.MustCompile(
		`("(?i:card_?number|card\.number|cvv|cvc|card_cvv|apiKey|api_key|bearerToken|token|authorization|password)"\s*:\s*)"[^"]*"`,
	)
	panPattern = regexp.MustCompile(`\b(\d{6})\d{3,9}(\d{4})\b`)
)

// SanitizeForLog redacts credentials and masks card-number-like digit runs
func SanitizeForLog(data string) string {
	result := sensitiveFieldPattern.ReplaceAllString(data, `$1"***REDACTED***"`)
	return panPattern.ReplaceAllString(result, "$1******$2")
}
