package export

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"datamind-backend/internal/extraction"
	"datamind-backend/internal/history"
)

func strPtr(s string) *string { return &s }

func TestWorkbookOneRowPerRecord(t *testing.T) {
	created := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	records := []history.Record{
		{
			ID:     "rec-1",
			UserID: "alice",
			Document: extraction.Document{
				Kind:           extraction.KindFactura,
				DocumentNumber: strPtr("F-0042"),
				EntityName:     strPtr("Ferretería El Tornillo"),
				Total:          strPtr("120,50"),
			},
			CreatedAt: created,
		},
		{
			ID:     "rec-2",
			UserID: "alice",
			Document: extraction.Document{
				Kind:           extraction.KindCedula,
				DocumentNumber: strPtr("V-12345678"),
			},
		},
	}

	data, err := Workbook(records)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want header + 2 records", len(rows))
	}
	if rows[0][0] != "Tipo de Documento" || rows[0][len(columnTitles)-1] != "Guardado" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "factura" || rows[1][1] != "F-0042" || rows[1][2] != "Ferretería El Tornillo" {
		t.Fatalf("unexpected first record row: %v", rows[1])
	}
	if rows[1][11] != "120,50" {
		t.Fatalf("monto total cell = %q, want the verbatim string", rows[1][11])
	}
	if rows[1][13] != "2026-03-14T15:09:00Z" {
		t.Fatalf("timestamp cell = %q", rows[1][13])
	}
	if rows[2][0] != "cedula" || rows[2][1] != "V-12345678" {
		t.Fatalf("unexpected second record row: %v", rows[2])
	}
}

func TestWorkbookEmptyHistoryHasHeaderOnly(t *testing.T) {
	data, err := Workbook(nil)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want header only", len(rows))
	}
}

func newTestRouter(repo history.Repo, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set("userId", userID)
			c.Next()
		})
	}
	api := r.Group("/api")
	NewHandler(history.NewService(repo)).RegisterRoutes(api)
	return r
}

func TestExportHistoryDownloadsWorkbook(t *testing.T) {
	repo := history.NewMemoryRepo()
	if _, err := repo.Create(context.Background(), history.Record{
		ID:       "rec-1",
		UserID:   "alice",
		Document: extraction.Document{Kind: extraction.KindPago, Total: strPtr("10,00")},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := newTestRouter(repo, "alice")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history/export", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Fatal("missing Content-Disposition")
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want header + 1 record", len(rows))
	}
}

func TestExportHistoryRequiresIdentity(t *testing.T) {
	r := newTestRouter(history.NewMemoryRepo(), "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history/export", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestExportRecordsFromPayload(t *testing.T) {
	r := newTestRouter(history.NewMemoryRepo(), "")

	body, err := json.Marshal(exportRequest{Records: []history.Record{
		{Document: extraction.Document{Kind: extraction.KindOtro, Details: strPtr("recibo manuscrito")}},
	}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/export", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "otro" || rows[1][12] != "recibo manuscrito" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestExportRecordsEmptyPayloadRejected(t *testing.T) {
	r := newTestRouter(history.NewMemoryRepo(), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/export", bytes.NewReader([]byte(`{"records":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
