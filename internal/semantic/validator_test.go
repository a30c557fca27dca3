package semantic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loaddocs/internal/config"
)

func modelServer(t *testing.T, fields string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fields":` + fields + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestValidator(t *testing.T, primary, secondary *httptest.Server) *Validator {
	t.Helper()
	v := NewValidator(&config.SemanticConfig{
		PrimaryEndpoint:   primary.URL,
		SecondaryEndpoint: secondary.URL,
		Timeout:           5 * time.Second,
	})
	require.NotNil(t, v)
	return v
}

func TestValidate_FullAgreementEarnsBoost(t *testing.T) {
	primary := modelServer(t, `{"invoice_number":"INV-1001","total":"$2,150.00","vendor":"Acme Transport LLC"}`)
	secondary := modelServer(t, `{"invoice_number":"INV-1001","total":"2150.00","vendor":"acme transport llc"}`)

	result, err := newTestValidator(t, primary, secondary).Validate(context.Background(), "Invoice #INV-1001")

	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Agreement, 1e-9)
	assert.InDelta(t, agreementBoost, result.ConfidenceAdjustment, 1e-9)
	assert.Equal(t, "INV-1001", result.PrimaryFields["invoice_number"])
}

func TestValidate_DisagreementBelowToleranceGetsNoBoost(t *testing.T) {
	primary := modelServer(t, `{"invoice_number":"INV-1001","total":"2150.00","vendor":"Acme","due_date":"01/15/2026"}`)
	secondary := modelServer(t, `{"invoice_number":"INV-9999","total":"980.00","vendor":"Beta Logistics","due_date":"01/15/2026"}`)

	result, err := newTestValidator(t, primary, secondary).Validate(context.Background(), "Invoice")

	require.NoError(t, err)
	assert.InDelta(t, 0.25, result.Agreement, 1e-9)
	assert.Zero(t, result.ConfidenceAdjustment)
}

func TestValidate_MissingFieldCountsAgainstAgreement(t *testing.T) {
	primary := modelServer(t, `{"invoice_number":"INV-1001","total":"2150.00"}`)
	secondary := modelServer(t, `{"invoice_number":"INV-1001"}`)

	result, err := newTestValidator(t, primary, secondary).Validate(context.Background(), "Invoice")

	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.Agreement, 1e-9)
	assert.Zero(t, result.ConfidenceAdjustment)
}

func TestValidate_ModelFailurePropagates(t *testing.T) {
	primary := modelServer(t, `{"invoice_number":"INV-1001"}`)
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(failing.Close)

	_, err := newTestValidator(t, primary, failing).Validate(context.Background(), "Invoice")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "secondary model")
}

func TestNewValidator_DisabledWithoutBothEndpoints(t *testing.T) {
	assert.Nil(t, NewValidator(&config.SemanticConfig{}))
	assert.Nil(t, NewValidator(&config.SemanticConfig{PrimaryEndpoint: "http://localhost:9000"}))
}
