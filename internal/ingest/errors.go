package ingest

// ValidationError reports a malformed or incomplete event submission. It is
// never fatal: the caller gets the rejection and the dashboards a warning
// alert.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
