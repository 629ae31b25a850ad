package aci

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/provider"
)

var fixedNow = time.Date(2030, time.June, 15, 10, 0, 0, 0, time.UTC)

func testLogger() (*logger.SystemLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.NewSystemLogger(nil, logger.SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      logger.LevelDebug,
		Output:        buf,
	}), buf
}

func validRequest(t *testing.T) provider.TransactionRequest {
	t.Helper()

	v := provider.NewRequestValidator(nil, func() time.Time { return fixedNow })
	request, violations := v.Validate("aci", map[string]any{
		"amount":         "92.00",
		"currency":       "EUR",
		"card_number":    "4200000000000000",
		"card_exp_year":  "2034",
		"card_exp_month": "05",
		"card_cvv":       "123",
	})
	require.Empty(t, violations)
	return request
}

func newTestProcessor(t *testing.T, url, environment string) (*Processor, *bytes.Buffer) {
	t.Helper()

	log, buf := testLogger()
	p := NewProcessor(log)
	require.NoError(t, p.Initialize(map[string]string{
		"entityId":    "8a8294174b7ecb28014b9699220015ca",
		"bearerToken": "test-bearer-token",
		"paymentUrl":  url,
		"environment": environment,
	}))
	return p, buf
}

func TestProcessor_Initialize(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]string
		wantErr bool
		wantURL string
	}{
		{
			name: "valid with default url",
			config: map[string]string{
				"entityId":    "8a8294174b7ecb28014b9699220015ca",
				"bearerToken": "test-bearer-token",
				"environment": "sandbox",
			},
			wantURL: DefaultPaymentURL,
		},
		{
			name: "custom url",
			config: map[string]string{
				"entityId":    "8a8294174b7ecb28014b9699220015ca",
				"bearerToken": "test-bearer-token",
				"paymentUrl":  "https://aci.example/v1/payments",
				"environment": "production",
			},
			wantURL: "https://aci.example/v1/payments",
		},
		{
			name: "missing entity id",
			config: map[string]string{
				"bearerToken": "test-bearer-token",
				"environment": "sandbox",
			},
			wantErr: true,
		},
		{
			name: "invalid environment",
			config: map[string]string{
				"entityId":    "8a8294174b7ecb28014b9699220015ca",
				"bearerToken": "test-bearer-token",
				"environment": "staging",
			},
			wantErr: true,
		},
		{
			name: "relative payment url",
			config: map[string]string{
				"entityId":    "8a8294174b7ecb28014b9699220015ca",
				"bearerToken": "test-bearer-token",
				"paymentUrl":  "/v1/payments",
				"environment": "sandbox",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := testLogger()
			p := NewProcessor(log)
			err := p.Initialize(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, p.client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, p.paymentURL)
			assert.Equal(t, tt.config["environment"] == "production", p.isProduction)
		})
	}
}

func TestProcessor_WireFormat(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		captured = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"8ac7a4a08f","result":{"code":"000.100.110","description":"Request successfully processed"}}`))
	}))
	defer server.Close()

	p, _ := newTestProcessor(t, server.URL, "sandbox")
	result := p.ProcessPayment(context.Background(), validRequest(t))
	require.True(t, result.Success)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "Bearer test-bearer-token", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/x-www-form-urlencoded", captured.Header.Get("Content-Type"))

	expected := map[string]string{
		"entityId":         "8a8294174b7ecb28014b9699220015ca",
		"amount":           "92.00",
		"currency":         "EUR",
		"paymentBrand":     "VISA",
		"paymentType":      "DB",
		"card.number":      "4200000000000000",
		"card.holder":      "Jane Jones",
		"card.expiryMonth": "05",
		"card.expiryYear":  "2034",
		"card.cvv":         "123",
	}
	assert.Len(t, captured.PostForm, len(expected))
	for key, want := range expected {
		assert.Equal(t, want, captured.PostForm.Get(key), key)
	}
}

func TestProcessor_ProcessPayment(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantMessage string
		wantFailure provider.FailureKind
		wantLog     string
	}{
		{
			name:        "successful debit",
			status:      http.StatusOK,
			body:        `{"id":"8ac7a4a08f","amount":"92.00","currency":"EUR","result":{"code":"000.100.110","description":"Request successfully processed in 'Merchant in Integrator Test Mode'"}}`,
			wantSuccess: true,
			wantMessage: "Request successfully processed in 'Merchant in Integrator Test Mode'",
		},
		{
			name:        "http status is ignored when code succeeds",
			status:      http.StatusAccepted,
			body:        `{"result":{"code":"000.100.112","description":"Request successfully processed"}}`,
			wantSuccess: true,
			wantMessage: "Request successfully processed",
		},
		{
			name:        "declined with description",
			status:      http.StatusBadRequest,
			body:        `{"result":{"code":"800.100.151","description":"transaction declined (invalid card)"}}`,
			wantMessage: "transaction declined (invalid card)",
			wantFailure: provider.FailureDecline,
			wantLog:     "Payment failed with code 800.100.151",
		},
		{
			name:        "pending code is not success",
			status:      http.StatusOK,
			body:        `{"result":{"code":"000.200.000","description":"transaction pending"}}`,
			wantMessage: "transaction pending",
			wantFailure: provider.FailureDecline,
		},
		{
			name:        "declined without description",
			status:      http.StatusBadRequest,
			body:        `{"result":{"code":"100.100.101"}}`,
			wantMessage: "Payment failed with unknown error",
			wantFailure: provider.FailureDecline,
			wantLog:     "Payment failed with code 100.100.101",
		},
		{
			name:        "non json body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "Payment failed with unknown error",
			wantFailure: provider.FailureDecline,
			wantLog:     "Payment failed with code unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p, logs := newTestProcessor(t, server.URL, "sandbox")
			result := p.ProcessPayment(context.Background(), validRequest(t))

			assert.Equal(t, provider.ACI, result.Provider)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantMessage, result.Message)
			assert.Equal(t, tt.wantFailure, result.Failure)
			if tt.wantLog != "" {
				assert.Contains(t, logs.String(), tt.wantLog)
			}
			assert.NotContains(t, logs.String(), "4200000000000000")
		})
	}
}

func TestProcessor_SuccessKeepsDecodedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abc","amount":"92.00","card":{"bin":"420000"},"result":{"code":"000.100.110","description":"ok"}}`))
	}))
	defer server.Close()

	p, _ := newTestProcessor(t, server.URL, "sandbox")
	result := p.ProcessPayment(context.Background(), validRequest(t))

	require.True(t, result.Success)
	assert.Equal(t, "abc", result.Data["id"])
	assert.Equal(t, "92.00", result.Data["amount"])
	bin, _ := provider.StringAt(result.Data, "card", "bin")
	assert.Equal(t, "420000", bin)
}

func TestProcessor_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p, logs := newTestProcessor(t, server.URL, "sandbox")
	p.client = provider.NewProviderHTTPClient(&provider.HTTPClientConfig{Timeout: 50 * time.Millisecond})

	result := p.ProcessPayment(context.Background(), validRequest(t))

	assert.False(t, result.Success)
	assert.Equal(t, "Request timed out. Please try again later.", result.Message)
	assert.Equal(t, provider.FailureTimeout, result.Failure)
	assert.Contains(t, logs.String(), "ACI request timed out")
}

func TestProcessor_ConnectFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p, _ := newTestProcessor(t, url, "sandbox")
	result := p.ProcessPayment(context.Background(), validRequest(t))

	assert.False(t, result.Success)
	assert.Equal(t, "Request timed out. Please try again later.", result.Message)
	assert.Equal(t, provider.FailureTimeout, result.Failure)
}

func TestProcessor_TLSVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"code":"000.100.110","description":"ok"}}`))
	}))
	defer server.Close()

	t.Run("sandbox skips verification", func(t *testing.T) {
		p, _ := newTestProcessor(t, server.URL, "sandbox")
		result := p.ProcessPayment(context.Background(), validRequest(t))
		assert.True(t, result.Success)
	})

	t.Run("production verifies the peer", func(t *testing.T) {
		p, logs := newTestProcessor(t, server.URL, "production")
		result := p.ProcessPayment(context.Background(), validRequest(t))
		assert.False(t, result.Success)
		assert.Equal(t, "Connection error, please try again", result.Message)
		assert.Equal(t, provider.FailureTransport, result.Failure)
		assert.Contains(t, logs.String(), "ACI connection error")
	})
}

func TestProcessor_NotInitialized(t *testing.T) {
	log, logs := testLogger()
	p := NewProcessor(log)

	result := p.ProcessPayment(context.Background(), validRequest(t))

	assert.False(t, result.Success)
	assert.Equal(t, "An error occurred while processing payment through ACI", result.Message)
	assert.Equal(t, provider.FailureInternal, result.Failure)
	assert.Contains(t, logs.String(), "used before initialization")
}

func TestProcessor_ConcurrentCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"code":"000.100.110","description":"ok"}}`))
	}))
	defer server.Close()

	p, _ := newTestProcessor(t, server.URL, "sandbox")
	request := validRequest(t)

	results := make(chan provider.RawResult, 10)
	for i := 0; i < 10; i++ {
		go func() { results <- p.ProcessPayment(context.Background(), request) }()
	}
	for i := 0; i < 10; i++ {
		assert.True(t, (<-results).Success)
	}
}
