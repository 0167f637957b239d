package gemini

// ExtractionPrompt is the fixed instruction sent with every document.
// It requests strict JSON matching the canonical extraction schema; the
// model is configured for JSON-mime output alongside it.
const ExtractionPrompt = `Analiza el documento. Si es una IMAGEN ROTADA, enderézala mentalmente para leerla.

Devuelve este JSON estricto:

{
  "tipo_documento": "cedula" | "factura" | "rif" | "pago" | "otro",
  "numero_documento": string (número de cédula, número de control de factura, número de RIF o referencia de pago. Null si no aplica),
  "entidad_nombre": string (Nombre de la persona en cédula, o nombre del NEGOCIO EMISOR en factura/RIF/pago),
  "entidad_rif": string (RIF del emisor si aparece. Null si no aplica),
  "cliente_nombre": string (Solo facturas y pagos: nombre del cliente/razón social. Null si no aplica),
  "cliente_id": string (Cédula o RIF del cliente si aparece. Null si no aplica),
  "fecha": string (DD/MM/AAAA. Null si no aparece),
  "moneda": string (Código o símbolo de la moneda. Null si no aplica),
  "subtotal": string (Solo facturas. Null en los demás),
  "impuesto": string (IVA u otro impuesto. Solo facturas. Null en los demás),
  "recargo": string (Recargos o propinas. Solo facturas. Null en los demás),
  "monto_total": string (Solo facturas y pagos. Null en los demás),
  "detalles_extra": string (Resumen corto de qué se compró, ej: "Medicinas", "Repuestos". Null si no aplica)
}

Todos los montos son strings tal como aparecen en el documento, sin convertir ni redondear. Usa null para todo campo ausente. No agregues campos ni texto fuera del JSON.`
