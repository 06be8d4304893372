// Package nms is the public façade binding the phases together: parse,
// validate, compile, and run NMS scripts without an embedder having to
// wire internal/parser, internal/semantic, internal/bytecode, and
// internal/runtime together by hand. It mirrors CWBudde-go-dws's
// pkg/dwscript engine: a functional-options constructor plus thin
// pass-through methods, not new logic of its own.
package nms

import (
	"fmt"
	"os"

	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/bytecode"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/parser"
	"github.com/nmscript/nms/internal/runtime"
	"github.com/nmscript/nms/internal/runtimecfg"
	"github.com/nmscript/nms/internal/semantic"
)

// Engine binds one set of analysis/compile options to repeated use
// against many scripts. It holds no per-script state.
type Engine struct {
	typeCheck    bool
	semanticOpts []semantic.Option
	runtimeCfg   runtimecfg.Config
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSemanticCheck toggles the validation pass compile-time methods run
// before compiling to bytecode. Enabled by default; disabling it trades
// safety for speed, the same trade-off CWBudde-go-dws's --skip-type-check
// flag offers.
func WithSemanticCheck(enabled bool) Option {
	return func(e *Engine) { e.typeCheck = enabled }
}

// WithReportUnused, WithReportUnreachableCode, and WithStrictUndefinedVariables
// thread straight through to internal/semantic's own options.
func WithReportUnused(report bool) Option {
	return func(e *Engine) { e.semanticOpts = append(e.semanticOpts, semantic.WithReportUnused(report)) }
}

func WithReportUnreachableCode(report bool) Option {
	return func(e *Engine) {
		e.semanticOpts = append(e.semanticOpts, semantic.WithReportUnreachableCode(report))
	}
}

func WithStrictUndefinedVariables(strict bool) Option {
	return func(e *Engine) {
		e.semanticOpts = append(e.semanticOpts, semantic.WithStrictUndefinedVariables(strict))
	}
}

// WithRuntimeConfig sets the tunables NewRuntime applies to every runtime
// it constructs (typewriter speed, skip multiplier, stack cap).
func WithRuntimeConfig(cfg runtimecfg.Config) Option {
	return func(e *Engine) { e.runtimeCfg = cfg }
}

// New returns an Engine with semantic checking enabled and default
// runtime tunables, then applies opts over that baseline.
func New(opts ...Option) *Engine {
	e := &Engine{
		typeCheck:  true,
		runtimeCfg: runtimecfg.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse runs the lexer and parser only, returning the AST and any lex or
// parse diagnostics. Most callers want Compile instead; Parse exists for
// tooling (cmd/nmsc --ast and --ir) that needs the AST
// without paying for semantic analysis or bytecode generation.
func (e *Engine) Parse(src string) (*ast.Program, *diag.Collection) {
	p := parser.New(src)
	prog := p.ParseProgram()
	return prog, p.Diagnostics()
}

// Compile parses, optionally validates, and compiles src to bytecode. The
// returned collection accumulates diagnostics across every phase that
// ran. Parse errors, and semantic errors while semantic checking is on,
// stop before code generation and return a nil script. Errors from the
// bytecode compiler itself still come with the partial script it built,
// so a caller driving actual playback must check HasErrors itself.
func (e *Engine) Compile(src string) (*bytecode.CompiledScript, *diag.Collection) {
	prog, diags := e.Parse(src)
	if diags.HasErrors() {
		return nil, diags
	}

	if e.typeCheck {
		_, semDiags := semantic.New(e.semanticOpts...).Analyze(prog)
		diags.Merge(semDiags)
		if diags.HasErrors() {
			return nil, diags
		}
	}

	script, compileDiags := bytecode.New().Compile(prog)
	diags.Merge(compileDiags)
	return script, diags
}

// Validate parses and semantically checks src without compiling to
// bytecode, for tooling that only needs a pass/fail answer (cmd/nmsc
// --validate-only).
func (e *Engine) Validate(src string) *diag.Collection {
	prog, diags := e.Parse(src)
	if diags.HasErrors() {
		return diags
	}
	if e.typeCheck {
		_, semDiags := semantic.New(e.semanticOpts...).Analyze(prog)
		diags.Merge(semDiags)
	}
	return diags
}

// CompileFile reads path and compiles its contents.
func (e *Engine) CompileFile(path string) (*bytecode.CompiledScript, *diag.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	script, diags := e.Compile(string(data))
	return script, diags, nil
}

// NewRuntime constructs a runtime.Runtime bound to script with the
// engine's configured tunables already applied.
func (e *Engine) NewRuntime(script *bytecode.CompiledScript) *runtime.Runtime {
	r := runtime.New(script)
	e.runtimeCfg.Apply(r)
	return r
}
