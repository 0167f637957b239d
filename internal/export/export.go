package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"datamind-backend/internal/history"
	"datamind-backend/internal/shared/metrics"
)

const sheetName = "Historial"

// Column titles shown to the user, in export order. They mirror the
// extraction schema plus the record timestamp.
var columnTitles = []string{
	"Tipo de Documento",
	"Número de Documento",
	"Entidad",
	"RIF de la Entidad",
	"Cliente",
	"ID del Cliente",
	"Fecha",
	"Moneda",
	"Subtotal",
	"Impuesto",
	"Recargo",
	"Monto Total",
	"Detalles Extra",
	"Guardado",
}

// Workbook renders records into an xlsx workbook, one row per record
// under a header row. Values are written verbatim as strings.
func Workbook(records []history.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &columnTitles); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := recordRow(rec)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	metrics.IncExport()
	return buf.Bytes(), nil
}

func recordRow(rec history.Record) []interface{} {
	var saved string
	if !rec.CreatedAt.IsZero() {
		saved = rec.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []interface{}{
		rec.Kind,
		deref(rec.DocumentNumber),
		deref(rec.EntityName),
		deref(rec.EntityTaxID),
		deref(rec.ClientName),
		deref(rec.ClientID),
		deref(rec.Date),
		deref(rec.Currency),
		deref(rec.Subtotal),
		deref(rec.Tax),
		deref(rec.Surcharge),
		deref(rec.Total),
		deref(rec.Details),
		saved,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
