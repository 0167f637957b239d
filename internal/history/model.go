package history

import (
	"encoding/json"
	"time"

	"datamind-backend/internal/extraction"
)

// Record is one persisted extraction. Records are immutable once
// written; the only mutation is deletion by their owner.
type Record struct {
	ID     string `json:"id" firestore:"-"`
	UserID string `json:"userId" firestore:"uid"`
	extraction.Document
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// legacyFieldAliases canonicalizes the persisted-record field names
// that drifted across early revisions of the product. It is the single
// place that knows the old names; everything past this boundary sees
// only the canonical schema.
var legacyFieldAliases = map[string]string{
	"tipo":     "tipo_documento",
	"numero":   "numero_documento",
	"entidad":  "entidad_nombre",
	"rif":      "entidad_rif",
	"cliente":  "cliente_nombre",
	"monto":    "monto_total",
	"detalles": "detalles_extra",
}

// CanonicalizeFields rewrites legacy keys to their canonical names.
// A canonical key already present wins over its legacy alias.
func CanonicalizeFields(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if canonical, ok := legacyFieldAliases[k]; ok {
			if _, exists := data[canonical]; !exists {
				out[canonical] = v
			}
			continue
		}
		out[k] = v
	}
	return out
}

// documentFromData decodes a stored field map (possibly legacy-named)
// into a canonical Document.
func documentFromData(data map[string]interface{}) (extraction.Document, error) {
	canonical := CanonicalizeFields(data)
	raw, err := json.Marshal(canonical)
	if err != nil {
		return extraction.Document{}, err
	}
	var doc extraction.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return extraction.Document{}, err
	}
	return doc, nil
}
