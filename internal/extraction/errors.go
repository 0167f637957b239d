package extraction

import "errors"

var (
	// ErrMissingImage is returned when the request carries no payload.
	ErrMissingImage = errors.New("image payload is required")
	// ErrInvalidPayload is returned when the payload is neither a
	// decodable image nor a PDF.
	ErrInvalidPayload = errors.New("payload is not a decodable image or PDF")
	// ErrMalformedOutput is returned when the model output is not JSON.
	ErrMalformedOutput = errors.New("model output is not valid JSON")
	// ErrSchemaViolation is returned when the model output parses but
	// breaks the declared schema.
	ErrSchemaViolation = errors.New("model output violates extraction schema")
)
