package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, http.StatusOK, "Test successful", map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":200,"success":true,"message":"Test successful","data":{"key":"value"}}`, w.Body.String())
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusUnauthorized, "Invalid API key", errors.New("key mismatch"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":401,"success":false,"message":"Invalid API key","error":"key mismatch"}`, w.Body.String())
}

func TestErrorsResponse(t *testing.T) {
	w := httptest.NewRecorder()

	Errors(w, http.StatusBadRequest, "Amount is required", "CVV is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":["Amount is required","CVV is required"]}`, w.Body.String())

	w = httptest.NewRecorder()
	Errors(w, http.StatusInternalServerError)
	assert.JSONEq(t, `{"errors":[]}`, w.Body.String())
}

func BenchmarkSuccessResponse(b *testing.B) {
	data := map[string]string{"test": "data"}

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		Success(w, http.StatusOK, "Benchmark test", data)
	}
}
