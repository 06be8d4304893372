// Package semantic validates a parsed Program: symbol collection, reference
// resolution, reachability, and unused-definition reporting. It mirrors
// CWBudde-go-dws's internal/semantic two-phase analyzer shape, generalized
// from Pascal-style type/overload resolution down to this language's flat
// character/scene/variable namespaces.
package semantic

import "github.com/nmscript/nms/internal/diag"

// Symbol tracks one declared or referenced name: where it was defined (if
// at all), every span it was used from, and whether collection has seen a
// definition/use for it yet.
type Symbol struct {
	Name          string
	DefinitionSpan diag.Span
	Defined       bool
	UsageSpans    []diag.Span
	Used          bool
}

func (s *Symbol) recordUse(span diag.Span) {
	s.Used = true
	s.UsageSpans = append(s.UsageSpans, span)
}

// symbolTable is a name-keyed map preserving first-seen order for
// deterministic iteration (unused-symbol reporting, suggestion search).
type symbolTable struct {
	order   []string
	symbols map[string]*Symbol
}

func newSymbolTable() *symbolTable {
	return &symbolTable{symbols: make(map[string]*Symbol)}
}

func (t *symbolTable) define(name string, span diag.Span) (prev *Symbol, isRedefinition bool) {
	if existing, ok := t.symbols[name]; ok && existing.Defined {
		return existing, true
	}
	sym, ok := t.symbols[name]
	if !ok {
		sym = &Symbol{Name: name}
		t.symbols[name] = sym
		t.order = append(t.order, name)
	}
	sym.Defined = true
	sym.DefinitionSpan = span
	return sym, false
}

// reference records a use of name, creating an undefined placeholder symbol
// if it has never been defined, so unused-reporting on related names stays
// accurate even for a variable used before any definition.
func (t *symbolTable) reference(name string, span diag.Span) *Symbol {
	sym, ok := t.symbols[name]
	if !ok {
		sym = &Symbol{Name: name}
		t.symbols[name] = sym
		t.order = append(t.order, name)
	}
	sym.recordUse(span)
	return sym
}

func (t *symbolTable) lookup(name string) (*Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

func (t *symbolTable) names() []string {
	return append([]string(nil), t.order...)
}

func (t *symbolTable) all() []*Symbol {
	out := make([]*Symbol, len(t.order))
	for i, name := range t.order {
		out[i] = t.symbols[name]
	}
	return out
}
