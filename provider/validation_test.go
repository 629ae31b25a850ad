package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfigFields(t *testing.T) {
	fields := []ConfigField{
		{Key: "apiKey", Required: true, Type: "string", MinLength: 8, MaxLength: 16},
		{Key: "paymentUrl", Required: false, Type: "url"},
		{Key: "verbose", Required: false, Type: "boolean"},
		{Key: "merchant", Required: false, Type: "string", Pattern: "^[a-z]+$"},
		{Key: "environment", Required: true, Type: "string"},
	}

	tests := []struct {
		name          string
		config        map[string]string
		wantErr       string
		notConfigured bool
	}{
		{
			name:   "minimal valid",
			config: map[string]string{"apiKey": "sk_test_1", "environment": "sandbox"},
		},
		{
			name: "all optional fields",
			config: map[string]string{
				"apiKey":      "sk_test_1",
				"paymentUrl":  "https://api.shift4.com/charges",
				"verbose":     "true",
				"merchant":    "acme",
				"environment": "production",
			},
		},
		{
			name:          "missing required",
			config:        map[string]string{"environment": "sandbox"},
			wantErr:       "shift4: required field 'apiKey' is missing",
			notConfigured: true,
		},
		{
			name:          "blank required",
			config:        map[string]string{"apiKey": "  ", "environment": "sandbox"},
			wantErr:       "shift4: required field 'apiKey' cannot be empty",
			notConfigured: true,
		},
		{
			name:    "too short",
			config:  map[string]string{"apiKey": "sk", "environment": "sandbox"},
			wantErr: "shift4: field 'apiKey' must be at least 8 characters",
		},
		{
			name:    "too long",
			config:  map[string]string{"apiKey": "sk_test_0123456789", "environment": "sandbox"},
			wantErr: "shift4: field 'apiKey' must not exceed 16 characters",
		},
		{
			name:    "relative url",
			config:  map[string]string{"apiKey": "sk_test_1", "paymentUrl": "/charges", "environment": "sandbox"},
			wantErr: "shift4: field 'paymentUrl' must be an absolute URL",
		},
		{
			name:    "bad boolean",
			config:  map[string]string{"apiKey": "sk_test_1", "verbose": "yes", "environment": "sandbox"},
			wantErr: "shift4: field 'verbose' must be 'true' or 'false'",
		},
		{
			name:    "pattern mismatch",
			config:  map[string]string{"apiKey": "sk_test_1", "merchant": "ACME", "environment": "sandbox"},
			wantErr: "shift4: field 'merchant' does not match required pattern",
		},
		{
			name:    "unknown environment",
			config:  map[string]string{"apiKey": "sk_test_1", "environment": "staging"},
			wantErr: "shift4: environment must be one of: sandbox, test, production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigFields("shift4", tt.config, fields)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			if tt.notConfigured {
				assert.ErrorIs(t, err, ErrProviderNotConfigured)
			}
		})
	}
}

func TestIsProductionEnvironment(t *testing.T) {
	assert.True(t, IsProductionEnvironment(map[string]string{"environment": "production"}))
	assert.False(t, IsProductionEnvironment(map[string]string{"environment": "sandbox"}))
	assert.False(t, IsProductionEnvironment(map[string]string{}))
}
