package extraction

import (
	"encoding/json"
	"fmt"
)

// Document kinds the extraction schema recognizes.
const (
	KindCedula  = "cedula"
	KindFactura = "factura"
	KindRIF     = "rif"
	KindPago    = "pago"
	KindOtro    = "otro"
)

// Document is the canonical structured output extracted from one
// document image. Every field except the kind is optional; absent
// values stay null on the wire. Amounts are strings exactly as the
// model returned them.
type Document struct {
	Kind           string  `json:"tipo_documento" firestore:"tipo_documento"`
	DocumentNumber *string `json:"numero_documento" firestore:"numero_documento"`
	EntityName     *string `json:"entidad_nombre" firestore:"entidad_nombre"`
	EntityTaxID    *string `json:"entidad_rif" firestore:"entidad_rif"`
	ClientName     *string `json:"cliente_nombre" firestore:"cliente_nombre"`
	ClientID       *string `json:"cliente_id" firestore:"cliente_id"`
	Date           *string `json:"fecha" firestore:"fecha"`
	Currency       *string `json:"moneda" firestore:"moneda"`
	Subtotal       *string `json:"subtotal" firestore:"subtotal"`
	Tax            *string `json:"impuesto" firestore:"impuesto"`
	Surcharge      *string `json:"recargo" firestore:"recargo"`
	Total          *string `json:"monto_total" firestore:"monto_total"`
	Details        *string `json:"detalles_extra" firestore:"detalles_extra"`
}

// ValidKind reports whether k is one of the enumerated document kinds.
func ValidKind(k string) bool {
	switch k {
	case KindCedula, KindFactura, KindRIF, KindPago, KindOtro:
		return true
	default:
		return false
	}
}

// Decode parses raw model output into a Document and validates it
// against the declared schema. Unparseable output maps to
// ErrMalformedOutput; a parseable object with an unknown document kind
// maps to ErrSchemaViolation.
func Decode(raw json.RawMessage) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if !ValidKind(doc.Kind) {
		return Document{}, fmt.Errorf("%w: unknown tipo_documento %q", ErrSchemaViolation, doc.Kind)
	}
	return doc, nil
}
