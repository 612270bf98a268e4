package logger

// Standard field names for structured logging.
const (
	FieldInput    = "input"
	FieldFile     = "file"
	FieldDir      = "dir"
	FieldSection  = "section"
	FieldUnit     = "unit"
	FieldCount    = "count"
	FieldSize     = "size"
	FieldVersion  = "version"
	FieldAttempt  = "attempt"
	FieldError    = "error"
	FieldDryRun   = "dry_run"
	FieldModule   = "module"
	FieldProperty = "property"
)
