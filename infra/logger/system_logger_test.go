package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(minLevel LogLevel) (*SystemLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewSystemLogger(nil, SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      minLevel,
		Service:       "test-service",
		Version:       "1.0.0",
		Environment:   "test",
		Output:        buf,
	}), buf
}

func TestNewSystemLogger(t *testing.T) {
	config := SystemLoggerConfig{
		EnableConsole:    true,
		EnableOpenSearch: true,
		MinLevel:         LevelWarn,
		Service:          "test-service",
		Version:          "1.0.0",
		Environment:      "test",
	}

	logger := NewSystemLogger(nil, config)

	assert.True(t, logger.enableConsole)
	assert.False(t, logger.enableOpenSearch, "OpenSearch needs a logger instance")
	assert.Equal(t, LevelWarn, logger.minLevel)
	assert.Equal(t, "test-service", logger.service)
	assert.NotNil(t, logger.out)
}

func TestNewSystemLogger_DefaultLevel(t *testing.T) {
	logger := NewSystemLogger(nil, SystemLoggerConfig{})
	assert.Equal(t, LevelInfo, logger.minLevel)
}

func TestSystemLogger_ShouldLog(t *testing.T) {
	tests := []struct {
		minLevel LogLevel
		level    LogLevel
		want     bool
	}{
		{LevelDebug, LevelDebug, true},
		{LevelInfo, LevelDebug, false},
		{LevelInfo, LevelWarn, true},
		{LevelWarn, LevelInfo, false},
		{LevelError, LevelError, true},
		{LevelError, LevelFatal, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.minLevel)+"_"+string(tt.level), func(t *testing.T) {
			logger, _ := newBufferLogger(tt.minLevel)
			assert.Equal(t, tt.want, logger.shouldLog(tt.level))
		})
	}
}

func TestSystemLogger_ConsoleOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	logger.Debug("hidden message")
	logger.Error("ACI request failed", errors.New("dial tcp: refused"), LogContext{
		Provider:  "aci",
		RequestID: "0f8fad5b-d9cb-469f-a165-70867728950e",
		Fields:    map[string]any{"code": "800.100.151", "attempt": 1},
	})

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "ACI request failed - Error: dial tcp: refused")
	assert.Contains(t, out, "provider=aci")
	assert.Contains(t, out, "req_id=0f8fad5b")
	assert.Contains(t, out, "  attempt: 1\n  code: 800.100.151\n")
}

func TestSystemLogger_ShortRequestID(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	assert.NotPanics(t, func() {
		logger.Info("short id", LogContext{RequestID: "abc"})
	})
	assert.Contains(t, buf.String(), "req_id=abc")
}

func TestSystemLogger_ErrorDoesNotMutateFields(t *testing.T) {
	logger, _ := newBufferLogger(LevelInfo)

	fields := map[string]any{"key": "value"}
	logger.Error("failed", errors.New("boom"), LogContext{Fields: fields})

	assert.Equal(t, map[string]any{"key": "value"}, fields)
}

func TestContextLogger(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	cl := logger.WithContext(LogContext{}).
		SetProvider("shift4").
		SetRequestID("req-12345678").
		AddField("charge", "char_1")

	cl.Debug("debug line")
	cl.Info("info line")
	cl.Warn("warn line")
	cl.Error("error line", errors.New("declined"))

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "provider=shift4"))
	assert.Contains(t, out, "req_id=req-1234")
	assert.Contains(t, out, "charge: char_1")
	assert.Contains(t, out, "error line - Error: declined")
}

func TestExtractComponent(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"/src/payroute/provider/aci/aci.go", "provider/aci"},
		{"/src/payroute/provider/service.go", "provider"},
		{"/src/payroute/main.go", "payroute"},
		{"/other/pkg/file.go", "pkg"},
		{"file.go", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractComponent(tt.file), tt.file)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}
