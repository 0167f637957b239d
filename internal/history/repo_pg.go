package history

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a record; the database assigns the creation timestamp.
func (r *PGRepo) Create(ctx context.Context, rec Record) (Record, error) {
	const query = `
INSERT INTO history_records (
    id,
    user_id,
    tipo_documento,
    numero_documento,
    entidad_nombre,
    entidad_rif,
    cliente_nombre,
    cliente_id,
    fecha,
    moneda,
    subtotal,
    impuesto,
    recargo,
    monto_total,
    detalles_extra
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING created_at`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		rec.ID,
		rec.UserID,
		rec.Kind,
		rec.DocumentNumber,
		rec.EntityName,
		rec.EntityTaxID,
		rec.ClientName,
		rec.ClientID,
		rec.Date,
		rec.Currency,
		rec.Subtotal,
		rec.Tax,
		rec.Surcharge,
		rec.Total,
		rec.Details,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListByUser lists records ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	const query = `
SELECT id, user_id, tipo_documento, numero_documento, entidad_nombre, entidad_rif, cliente_nombre, cliente_id, fecha, moneda, subtotal, impuesto, recargo, monto_total, detalles_extra, created_at
FROM history_records
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a record owned by the user.
func (r *PGRepo) Delete(ctx context.Context, userID, recordID string) error {
	const query = `
DELETE FROM history_records
WHERE id = $1 AND user_id = $2`

	res, err := r.DB.ExecContext(ctx, query, recordID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var kind sql.NullString
	err := rows.Scan(
		&rec.ID,
		&rec.UserID,
		&kind,
		&rec.DocumentNumber,
		&rec.EntityName,
		&rec.EntityTaxID,
		&rec.ClientName,
		&rec.ClientID,
		&rec.Date,
		&rec.Currency,
		&rec.Subtotal,
		&rec.Tax,
		&rec.Surcharge,
		&rec.Total,
		&rec.Details,
		&rec.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if kind.Valid {
		rec.Kind = kind.String
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
