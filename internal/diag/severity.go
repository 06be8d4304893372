package diag

// Severity classifies how a Diagnostic should affect compilation.
type Severity int

const (
	// Hint is the lowest severity: a stylistic nudge.
	Hint Severity = iota
	// Info reports a fact worth surfacing but not a problem.
	Info
	// Warning reports a likely mistake; compilation still proceeds.
	Warning
	// Error blocks proceeding to the next compilation phase.
	Error
)

// String returns the human-readable severity label used in formatted output.
func (s Severity) String() string {
	switch s {
	case Hint:
		return "hint"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Fatal reports whether this severity blocks compilation from proceeding.
func (s Severity) Fatal() bool {
	return s == Error
}
