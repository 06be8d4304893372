package diag

// RelatedInfo points a diagnostic at a secondary location, such as the
// earlier definition a duplicate-definition error conflicts with.
type RelatedInfo struct {
	Span    Span
	Message string
}

// Diagnostic is a single coded, severity-leveled compiler message.
type Diagnostic struct {
	Code        Code
	Severity    Severity
	Message     string
	Span        Span
	Snippet     string
	Related     []RelatedInfo
	Suggestions []string
}

// New constructs a Diagnostic with no related info or suggestions.
func New(code Code, severity Severity, message string, span Span) Diagnostic {
	return Diagnostic{Code: code, Severity: severity, Message: message, Span: span}
}

// WithRelated returns a copy of d with an additional related-info entry.
func (d Diagnostic) WithRelated(span Span, message string) Diagnostic {
	d.Related = append(append([]RelatedInfo(nil), d.Related...), RelatedInfo{Span: span, Message: message})
	return d
}

// WithSuggestion returns a copy of d with an additional suggestion string.
func (d Diagnostic) WithSuggestion(suggestion string) Diagnostic {
	d.Suggestions = append(append([]string(nil), d.Suggestions...), suggestion)
	return d
}

// WithSnippet returns a copy of d carrying the given source snippet.
func (d Diagnostic) WithSnippet(snippet string) Diagnostic {
	d.Snippet = snippet
	return d
}
