package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"datamind-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient("test-key", "gemini-2.5-pro")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client.WithBaseURL(srv.URL), srv
}

func TestExtractDocumentSendsInlineImageAndJSONMime(t *testing.T) {
	var captured generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-2.5-pro:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": `{"tipo_documento":"factura","monto_total":"120.50"}`},
				}}},
			},
		})
	})

	raw, err := client.ExtractDocument(context.Background(), llm.ExtractInput{
		ImageData: []byte{0xFF, 0xD8, 0xFF},
		MimeType:  "image/jpeg",
	})
	if err != nil {
		t.Fatalf("ExtractDocument: %v", err)
	}

	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal model output: %v", err)
	}
	if out["tipo_documento"] != "factura" {
		t.Fatalf("expected factura, got %q", out["tipo_documento"])
	}

	if captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("expected response_mime_type application/json, got %q", captured.GenerationConfig.ResponseMimeType)
	}
	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 2 {
		t.Fatalf("expected one content with prompt and image parts")
	}
	img := captured.Contents[0].Parts[1].InlineData
	if img == nil || img.MimeType != "image/jpeg" || img.Data == "" {
		t.Fatalf("expected inline_data image part, got %+v", img)
	}
}

func TestExtractDocumentTextOnly(t *testing.T) {
	var captured generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": `{"tipo_documento":"otro"}`},
				}}},
			},
		})
	})

	if _, err := client.ExtractDocument(context.Background(), llm.ExtractInput{Text: "FACTURA 0001"}); err != nil {
		t.Fatalf("ExtractDocument: %v", err)
	}
	if len(captured.Contents[0].Parts) != 2 || captured.Contents[0].Parts[1].InlineData != nil {
		t.Fatalf("expected a second text part, got %+v", captured.Contents[0].Parts)
	}
	if !strings.Contains(captured.Contents[0].Parts[1].Text, "FACTURA 0001") {
		t.Fatalf("expected document text in request")
	}
}

func TestExtractDocumentEmptyInputRejected(t *testing.T) {
	client, err := NewClient("k", "m")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.ExtractDocument(context.Background(), llm.ExtractInput{}); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestExtractDocumentSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		})
	})

	_, err := client.ExtractDocument(context.Background(), llm.ExtractInput{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestListModelsStripsResourcePrefix(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "models/gemini-2.5-pro"},
				{"name": "models/gemini-2.5-flash"},
			},
		})
	})

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0] != "gemini-2.5-pro" || models[1] != "gemini-2.5-flash" {
		t.Fatalf("unexpected models: %v", models)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "m"); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := NewClient("k", " "); err == nil {
		t.Fatalf("expected error for missing model")
	}
}
