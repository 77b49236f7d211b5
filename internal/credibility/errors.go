package credibility

import "errors"

// Scoring failures. Callers classify with errors.Is; only ErrEmptyInput is the caller's fault.
var (
	ErrEmptyInput       = errors.New("no text provided")
	ErrModelUnavailable = errors.New("model not loaded")
	ErrEncoding         = errors.New("vectorization failed")
	ErrClassification   = errors.New("prediction failed")
	ErrInternal         = errors.New("scoring failed")
)

// IsClientError reports whether err was caused by the request rather than the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}
