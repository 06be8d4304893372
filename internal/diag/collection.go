package diag

// Collection is an ordered buffer of diagnostics accumulated across one or
// more compilation phases. It never panics or short-circuits: phases keep
// running and simply add to the collection, deciding for themselves (via
// HasErrors) whether to proceed to the next phase.
type Collection struct {
	entries []Diagnostic
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a diagnostic, preserving insertion order.
func (c *Collection) Add(d Diagnostic) {
	c.entries = append(c.entries, d)
}

// Addf is a convenience constructor-and-add in one call.
func (c *Collection) Addf(code Code, severity Severity, span Span, message string) {
	c.Add(New(code, severity, message, span))
}

// All returns every diagnostic in insertion order.
func (c *Collection) All() []Diagnostic {
	return c.entries
}

// Errors returns only Error-severity diagnostics, in insertion order.
func (c *Collection) Errors() []Diagnostic {
	return c.filter(Error)
}

// Warnings returns only Warning-severity diagnostics, in insertion order.
func (c *Collection) Warnings() []Diagnostic {
	return c.filter(Warning)
}

func (c *Collection) filter(severity Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.entries {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (c *Collection) HasErrors() bool {
	for _, d := range c.entries {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any Warning-severity diagnostic was recorded.
func (c *Collection) HasWarnings() bool {
	for _, d := range c.entries {
		if d.Severity == Warning {
			return true
		}
	}
	return false
}

// Empty reports whether no phase emitted any diagnostic at all.
func (c *Collection) Empty() bool {
	return len(c.entries) == 0
}

// Len returns the total number of diagnostics, of any severity.
func (c *Collection) Len() int {
	return len(c.entries)
}

// CountBySeverity returns how many diagnostics of the given severity were
// recorded.
func (c *Collection) CountBySeverity(severity Severity) int {
	n := 0
	for _, d := range c.entries {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// Merge appends every diagnostic from other, preserving order: this
// collection's entries first, then other's.
func (c *Collection) Merge(other *Collection) {
	if other == nil {
		return
	}
	c.entries = append(c.entries, other.entries...)
}
