package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"datamind-backend/internal/extraction"
)

func strPtr(s string) *string { return &s }

func TestPGRepoCreateReturnsServerTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rec := Record{
		ID:     "rec-1",
		UserID: "user-1",
		Document: extraction.Document{
			Kind:           extraction.KindFactura,
			DocumentNumber: strPtr("F-0042"),
			Total:          strPtr("120,50"),
		},
	}

	createdAt := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO history_records").
		WithArgs(
			rec.ID,
			rec.UserID,
			rec.Kind,
			rec.DocumentNumber,
			nil,
			nil,
			nil,
			nil,
			nil,
			nil,
			nil,
			nil,
			nil,
			rec.Total,
			nil,
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	created, err := repo.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.CreatedAt.Equal(createdAt) {
		t.Fatalf("CreatedAt = %v, want %v", created.CreatedAt, createdAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserScopesToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	columns := []string{
		"id", "user_id", "tipo_documento", "numero_documento", "entidad_nombre",
		"entidad_rif", "cliente_nombre", "cliente_id", "fecha", "moneda",
		"subtotal", "impuesto", "recargo", "monto_total", "detalles_extra", "created_at",
	}
	rows := sqlmock.NewRows(columns).
		AddRow("rec-2", "user-1", "factura", "F-0043", nil, nil, nil, nil, nil, nil, nil, nil, nil, "99,00", nil, time.Now().UTC()).
		AddRow("rec-1", "user-1", "cedula", "V-12345678", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, time.Now().UTC().Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM history_records").
		WithArgs("user-1").
		WillReturnRows(rows)

	records, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].ID != "rec-2" || records[0].Kind != extraction.KindFactura {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].DocumentNumber == nil || *records[1].DocumentNumber != "V-12345678" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteNotOwnedReturnsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("DELETE FROM history_records").
		WithArgs("rec-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), "intruder", "rec-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteRemovesOwnedRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("DELETE FROM history_records").
		WithArgs("rec-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "user-1", "rec-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
