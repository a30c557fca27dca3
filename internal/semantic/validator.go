// Package semantic implements an optional accuracy booster for settlement
// documents. Two independent model endpoints extract structured fields from
// the same normalized text; the fraction of fields they agree on maps to a
// confidence adjustment the document service applies on top of the
// deterministic strategy score.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"loaddocs/internal/config"
	"loaddocs/internal/port"
)

const (
	// agreementTolerance is the minimum field-agreement fraction that earns
	// the confidence boost.
	agreementTolerance = 0.80

	// agreementBoost is added to the strategy confidence when the two models
	// agree within tolerance. The caller clamps the final value to 1.0.
	agreementBoost = 0.10

	defaultTimeout = 60 * time.Second
)

// Validator calls two model endpoints and scores their field agreement.
// Implements port.CrossValidator.
type Validator struct {
	primaryEndpoint   string
	secondaryEndpoint string
	apiKey            string
	httpClient        *http.Client
}

// NewValidator creates a Validator from config. Returns nil when the booster
// is not configured; callers treat a nil validator as disabled.
func NewValidator(cfg *config.SemanticConfig) *Validator {
	if !cfg.Enabled() {
		return nil
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Validator{
		primaryEndpoint:   cfg.PrimaryEndpoint,
		secondaryEndpoint: cfg.SecondaryEndpoint,
		apiKey:            cfg.APIKey,
		httpClient:        &http.Client{Timeout: timeout},
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Fields map[string]string `json:"fields"`
	Error  string            `json:"error"`
}

// Validate implements port.CrossValidator. Both endpoints are queried
// concurrently; a failure from either aborts the validation and the caller
// proceeds without an adjustment.
func (v *Validator) Validate(ctx context.Context, text string) (*port.CrossValidation, error) {
	type outcome struct {
		fields map[string]string
		err    error
	}

	primaryCh := make(chan outcome, 1)
	secondaryCh := make(chan outcome, 1)
	go func() {
		fields, err := v.extract(ctx, v.primaryEndpoint, text)
		primaryCh <- outcome{fields, err}
	}()
	go func() {
		fields, err := v.extract(ctx, v.secondaryEndpoint, text)
		secondaryCh <- outcome{fields, err}
	}()

	primary := <-primaryCh
	secondary := <-secondaryCh
	if primary.err != nil {
		return nil, fmt.Errorf("primary model: %w", primary.err)
	}
	if secondary.err != nil {
		return nil, fmt.Errorf("secondary model: %w", secondary.err)
	}

	agreement := fieldAgreement(primary.fields, secondary.fields)
	result := &port.CrossValidation{
		Agreement:       agreement,
		PrimaryFields:   primary.fields,
		SecondaryFields: secondary.fields,
	}
	if agreement >= agreementTolerance {
		result.ConfidenceAdjustment = agreementBoost
	}
	log.Printf("semantic.Validator: agreement %.2f over %d/%d fields, adjustment %+.2f",
		agreement, len(primary.fields), len(secondary.fields), result.ConfidenceAdjustment)
	return result, nil
}

func (v *Validator) extract(ctx context.Context, endpoint, text string) (map[string]string, error) {
	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("model returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var extractResp extractResponse
	if err := json.Unmarshal(respBody, &extractResp); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if extractResp.Error != "" {
		return nil, fmt.Errorf("model error: %s", extractResp.Error)
	}
	return extractResp.Fields, nil
}

// fieldAgreement measures agreement over the union of field names. A field
// one model extracted and the other missed counts against agreement; two
// empty extractions agree on nothing and score zero.
func fieldAgreement(primary, secondary map[string]string) float64 {
	names := make(map[string]bool, len(primary)+len(secondary))
	for name := range primary {
		names[name] = true
	}
	for name := range secondary {
		names[name] = true
	}
	if len(names) == 0 {
		return 0
	}

	matched := 0
	for name := range names {
		if normalizeFieldValue(primary[name]) == normalizeFieldValue(secondary[name]) {
			matched++
		}
	}
	return float64(matched) / float64(len(names))
}

// normalizeFieldValue makes the comparison tolerant of formatting noise the
// two models disagree on without disagreeing on substance.
func normalizeFieldValue(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.NewReplacer(",", "", "$", "", "#", "").Replace(value)
	return strings.Join(strings.Fields(value), " ")
}
