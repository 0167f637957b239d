package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"datamind-backend/internal/imaging"
	"datamind-backend/internal/llm"
	"datamind-backend/internal/shared/metrics"
	"datamind-backend/internal/shared/telemetry"
)

// Recorder persists one successful extraction for a signed-in user and
// returns the new record's identifier.
type Recorder interface {
	Record(ctx context.Context, userID string, doc Document) (string, error)
}

// Service brokers between the HTTP surface and the AI model.
type Service struct {
	LLM      llm.Client
	Recorder Recorder
}

// Result is the outcome of one extraction.
type Result struct {
	Document Document
	RecordID string
	SaveErr  error
}

// Browser uploads carry a data-URI prefix; the model wants only the
// raw payload.
var dataURIPrefix = regexp.MustCompile(`^data:[\w.+/-]+;base64,`)

// Extract normalizes the payload, invokes the model once (no retries),
// validates its JSON output, and records it to history when a user
// session exists. A history write failure never fails the extraction;
// it is reported through Result.SaveErr.
func (s *Service) Extract(ctx context.Context, userID, imageBase64 string) (Result, error) {
	payload := strings.TrimSpace(imageBase64)
	if payload == "" {
		return Result{}, ErrMissingImage
	}
	payload = dataURIPrefix.ReplaceAllString(payload, "")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: invalid base64", ErrInvalidPayload)
	}

	input, err := buildInput(data)
	if err != nil {
		return Result{}, err
	}

	metrics.IncExtractionStarted()
	start := time.Now()

	raw, err := s.LLM.ExtractDocument(ctx, input)
	if err != nil {
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("model invocation: %w", err)
	}

	doc, err := Decode(raw)
	if err != nil {
		metrics.IncExtractionFailed()
		return Result{}, err
	}

	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)

	res := Result{Document: doc}
	if userID != "" && s.Recorder != nil {
		recordID, err := s.Recorder.Record(ctx, userID, doc)
		if err != nil {
			metrics.IncHistorySaveFailed()
			telemetry.Error("history.save_failed", map[string]any{
				"user_id": userID,
				"kind":    doc.Kind,
				"error":   err.Error(),
			})
			res.SaveErr = err
		} else {
			metrics.IncHistorySaved()
			res.RecordID = recordID
		}
	}
	return res, nil
}

// Models lists the model identifiers available to the configured key.
func (s *Service) Models(ctx context.Context) ([]string, error) {
	return s.LLM.ListModels(ctx)
}

func buildInput(data []byte) (llm.ExtractInput, error) {
	if IsPDF(data) {
		text, err := TextFromPDF(data)
		if err != nil || strings.TrimSpace(text) == "" {
			return llm.ExtractInput{}, fmt.Errorf("%w: unreadable pdf", ErrInvalidPayload)
		}
		return llm.ExtractInput{Text: text}, nil
	}

	normalized, err := imaging.Normalize(data)
	if err != nil {
		return llm.ExtractInput{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return llm.ExtractInput{ImageData: normalized.Data, MimeType: normalized.MimeType}, nil
}
