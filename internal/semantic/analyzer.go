package semantic

import (
	"fmt"

	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
)

const suggestionMaxDistance = 3

var validTransitionTypes = map[string]bool{
	"fade": true, "slide": true, "dissolve": true, "none": true, "fadethrough": true,
}

// Option configures an Analyzer at construction, following CWBudde-go-dws's
// functional-options convention for config helpers.
type Option func(*Analyzer)

// WithReportUnused toggles UnusedCharacter/UnusedScene/UnusedVariable
// warnings. Default: enabled.
func WithReportUnused(report bool) Option {
	return func(a *Analyzer) { a.reportUnused = report }
}

// WithReportUnreachableCode toggles dead-code-after-goto detection.
// Default: enabled.
func WithReportUnreachableCode(report bool) Option {
	return func(a *Analyzer) { a.reportUnreachableCode = report }
}

// WithStrictUndefinedVariables makes a read of a never-`set` variable an
// error instead of silently allowed. Left configurable and off by default,
// since some scripts rely on variables defaulting to null/false on first
// read rather than declaring every one up front.
func WithStrictUndefinedVariables(strict bool) Option {
	return func(a *Analyzer) { a.strictUndefinedVariables = strict }
}

// Analyzer runs symbol collection, reference resolution, and reachability
// validation over a Program in three passes.
type Analyzer struct {
	diags *diag.Collection

	characters *symbolTable
	scenes     *symbolTable
	variables  *symbolTable

	sceneGraph map[string][]string
	entryScene string
	hasEntry   bool

	reportUnused             bool
	reportUnreachableCode    bool
	strictUndefinedVariables bool
}

// Result is the analyzer's output: symbol tables and the scene graph, for
// callers (the compiler, tooling) that need resolved names rather than a
// re-walk of the AST.
type Result struct {
	Characters *symbolTable
	Scenes     *symbolTable
	Variables  *symbolTable
	SceneGraph map[string][]string
	EntryScene string
}

// New constructs an Analyzer with the given options applied over sensible
// defaults (unused reporting on, unreachable-code reporting on, strict
// undefined variables off).
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		diags:                 diag.NewCollection(),
		characters:            newSymbolTable(),
		scenes:                newSymbolTable(),
		variables:             newSymbolTable(),
		sceneGraph:            make(map[string][]string),
		reportUnused:          true,
		reportUnreachableCode: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs all three passes over prog and returns the resolved symbol
// tables together with every diagnostic recorded.
func (a *Analyzer) Analyze(prog *ast.Program) (*Result, *diag.Collection) {
	a.collectDefinitions(prog)
	a.validateBodies(prog)
	a.checkReachability()
	if a.reportUnused {
		a.reportUnusedSymbols()
	}

	return &Result{
		Characters: a.characters,
		Scenes:     a.scenes,
		Variables:  a.variables,
		SceneGraph: a.sceneGraph,
		EntryScene: a.entryScene,
	}, a.diags
}

func (a *Analyzer) errorf(code diag.Code, span diag.Span, format string, args ...any) diag.Diagnostic {
	d := diag.New(code, diag.Error, fmt.Sprintf(format, args...), span)
	a.diags.Add(d)
	return d
}

func (a *Analyzer) warnf(code diag.Code, span diag.Span, format string, args ...any) diag.Diagnostic {
	d := diag.New(code, diag.Warning, fmt.Sprintf(format, args...), span)
	a.diags.Add(d)
	return d
}

// --- Pass 1: collect definitions --------------------------------------

func (a *Analyzer) collectDefinitions(prog *ast.Program) {
	for _, c := range prog.Characters {
		if prev, dup := a.characters.define(c.ID, c.Span()); dup {
			a.diags.Add(diag.New(diag.CodeDuplicateCharacterDefinition, diag.Error,
				fmt.Sprintf("character '%s' is already defined", c.ID), c.Span()).
				WithRelated(prev.DefinitionSpan, "previous definition here"))
			continue
		}
	}

	for _, s := range prog.Scenes {
		if prev, dup := a.scenes.define(s.Name, s.Span()); dup {
			a.diags.Add(diag.New(diag.CodeDuplicateSceneDefinition, diag.Error,
				fmt.Sprintf("scene '%s' is already defined", s.Name), s.Span()).
				WithRelated(prev.DefinitionSpan, "previous definition here"))
			continue
		}
		if _, ok := a.sceneGraph[s.Name]; !ok {
			a.sceneGraph[s.Name] = nil
		}
		if !a.hasEntry {
			a.entryScene = s.Name
			a.hasEntry = true
		}
	}
}

// --- Pass 2: validate bodies --------------------------------------------

func (a *Analyzer) validateBodies(prog *ast.Program) {
	for _, s := range prog.Scenes {
		if len(s.Body) == 0 {
			a.warnf(diag.CodeEmptyScene, s.Span(), "scene '%s' has an empty body", s.Name)
		}
		a.validateStatements(s.Body, s.Name)
	}
	a.validateStatements(prog.Globals, "")
}

// validateStatements walks an ordered statement sequence, tracking local
// reachability: a statement following an unconditional `goto` in the same
// block is unreachable.
func (a *Analyzer) validateStatements(stmts []ast.Statement, sceneName string) {
	reachable := true
	for _, stmt := range stmts {
		if !reachable && a.reportUnreachableCode {
			a.warnf(diag.CodeUnreachableCode, stmt.Span(), "unreachable statement")
		}
		a.validateStatement(stmt, sceneName)
		if _, isGoto := stmt.(*ast.Goto); isGoto {
			reachable = false
		}
	}
}

func (a *Analyzer) validateStatement(stmt ast.Statement, sceneName string) {
	switch s := stmt.(type) {
	case *ast.Show:
		a.validateShow(s)
	case *ast.Hide:
		a.referenceCharacter(s.Identifier, s.Span())
	case *ast.Say:
		if s.HasSpeaker {
			a.referenceCharacter(s.Speaker, s.Span())
		}
	case *ast.Choice:
		a.validateChoice(s, sceneName)
	case *ast.If:
		a.validateExpression(s.Condition)
		a.validateStatements(s.Then.Statements, sceneName)
		if s.HasElse {
			a.validateStatements(s.Else.Statements, sceneName)
		}
	case *ast.Goto:
		a.validateGoto(s, sceneName)
	case *ast.Wait:
		a.validateExpression(s.Duration)
		a.checkNonNegative(s.Duration, diag.CodeInvalidDuration, "wait duration must be non-negative")
	case *ast.Play:
		if s.Resource == "" {
			a.errorf(diag.CodeInvalidResourcePath, s.Span(), "play resource path must not be empty")
		}
		if s.HasVolume {
			a.validateExpression(s.Volume)
			a.checkRange(s.Volume, 0, 1, diag.CodeInvalidVolume, "volume must lie in [0, 1]")
		}
	case *ast.Stop:
		if s.HasFade {
			a.validateExpression(s.Fade)
			a.checkNonNegative(s.Fade, diag.CodeInvalidDuration, "fade duration must be non-negative")
		}
	case *ast.Set:
		a.validateExpression(s.Value)
		a.variables.define(s.Name, s.Span())
	case *ast.Transition:
		a.validateExpression(s.Duration)
		a.checkNonNegative(s.Duration, diag.CodeInvalidDuration, "transition duration must be non-negative")
		if !validTransitionTypes[s.Type] {
			a.warnf(diag.CodeInvalidTransitionType, s.Span(), "unrecognized transition type '%s'", s.Type)
		}
	case *ast.ExpressionStmt:
		a.validateExpression(s.Expr)
	case *ast.Block:
		a.validateStatements(s.Statements, sceneName)
	case *ast.CharacterDecl, *ast.SceneDecl:
		// Only reachable via malformed nesting; declarations are handled in
		// pass 1 and never appear inside a scene body.
	}
}

func (a *Analyzer) validateShow(s *ast.Show) {
	switch s.Target {
	case ast.ShowBackground:
		if s.Resource == "" {
			a.errorf(diag.CodeInvalidResourcePath, s.Span(), "show background resource path must not be empty")
		}
	case ast.ShowCharacter:
		a.referenceCharacter(s.Identifier, s.Span())
	case ast.ShowSprite:
		a.referenceCharacter(s.Identifier, s.Span())
		if s.Resource == "" {
			a.errorf(diag.CodeInvalidResourcePath, s.Span(), "show sprite resource path must not be empty")
		}
	}
	if s.Position.Kind == ast.PosCustom {
		a.validateExpression(s.Position.X)
		a.validateExpression(s.Position.Y)
	}
	if s.HasTransition {
		a.validateExpression(s.TransitionDuration)
		a.checkNonNegative(s.TransitionDuration, diag.CodeInvalidDuration, "transition duration must be non-negative")
		if !validTransitionTypes[s.TransitionType] {
			a.warnf(diag.CodeInvalidTransitionType, s.Span(), "unrecognized transition type '%s'", s.TransitionType)
		}
	}
}

func (a *Analyzer) validateChoice(c *ast.Choice, sceneName string) {
	if len(c.Options) == 0 {
		a.errorf(diag.CodeEmptyChoiceBlock, c.Span(), "choice block has no options")
		return
	}

	seenText := make(map[string]diag.Span, len(c.Options))
	for _, opt := range c.Options {
		if prevSpan, dup := seenText[opt.Text]; dup {
			a.diags.Add(diag.New(diag.CodeDuplicateChoiceText, diag.Warning,
				fmt.Sprintf("duplicate choice option text '%s'", opt.Text), opt.Span()).
				WithRelated(prevSpan, "previous option with the same text"))
		} else {
			seenText[opt.Text] = opt.Span()
		}

		if opt.HasCondition {
			a.validateExpression(opt.Condition)
		}

		if !opt.HasGoto && len(opt.Body) == 0 {
			a.warnf(diag.CodeChoiceWithoutBranch, opt.Span(), "choice option has no body or goto target")
		}

		if opt.HasGoto {
			a.referenceSceneName(opt.GotoTarget, opt.Span())
			if sceneName != "" {
				a.sceneGraph[sceneName] = append(a.sceneGraph[sceneName], opt.GotoTarget)
			}
		}
		if len(opt.Body) > 0 {
			a.validateStatements(opt.Body, sceneName)
		}
	}
}

func (a *Analyzer) validateGoto(g *ast.Goto, sceneName string) {
	a.referenceSceneName(g.Target, g.Span())
	if sceneName != "" {
		a.sceneGraph[sceneName] = append(a.sceneGraph[sceneName], g.Target)
	}
}

func (a *Analyzer) validateExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.Identifier:
		a.variables.reference(e.Name, e.Span())
		if a.strictUndefinedVariables {
			if sym, ok := a.variables.lookup(e.Name); !ok || !sym.Defined {
				a.errorf(diag.CodeUndefinedVariable, e.Span(), "undefined variable '%s'", e.Name)
			}
		}
	case *ast.BinaryExpr:
		a.validateExpression(e.Left)
		a.validateExpression(e.Right)
	case *ast.UnaryExpr:
		a.validateExpression(e.Operand)
	case *ast.CallExpr:
		a.validateExpression(e.Callee)
		for _, arg := range e.Args {
			a.validateExpression(arg)
		}
	case *ast.PropertyExpr:
		a.validateExpression(e.Object)
	case *ast.Literal:
		// no references
	}
}

func (a *Analyzer) referenceCharacter(name string, span diag.Span) {
	sym := a.characters.reference(name, span)
	if !sym.Defined {
		d := diag.New(diag.CodeUndefinedCharacter, diag.Error, fmt.Sprintf("undefined character '%s'", name), span)
		if suggestion := nearestMatch(name, a.characters.names(), suggestionMaxDistance); suggestion != "" {
			d = d.WithSuggestion(fmt.Sprintf("did you mean character '%s'?", suggestion))
		}
		a.diags.Add(d)
	}
}

func (a *Analyzer) referenceSceneName(name string, span diag.Span) {
	sym := a.scenes.reference(name, span)
	if !sym.Defined {
		d := diag.New(diag.CodeUndefinedScene, diag.Error, fmt.Sprintf("undefined scene '%s'", name), span)
		if suggestion := nearestMatch(name, a.scenes.names(), suggestionMaxDistance); suggestion != "" {
			d = d.WithSuggestion(fmt.Sprintf("did you mean scene '%s'?", suggestion))
		}
		a.diags.Add(d)
	}
}

// checkNonNegative and checkRange only fire for literal numeric constants:
// the validator does not evaluate general expressions (that is the
// compiler/VM's job), but a literal out-of-range value is always a
// mistake worth catching early.
func (a *Analyzer) checkNonNegative(expr ast.Expression, code diag.Code, message string) {
	if v, ok := literalNumber(expr); ok && v < 0 {
		a.errorf(code, expr.Span(), "%s", message)
	}
}

func (a *Analyzer) checkRange(expr ast.Expression, lo, hi float64, code diag.Code, message string) {
	if v, ok := literalNumber(expr); ok && (v < lo || v > hi) {
		a.errorf(code, expr.Span(), "%s", message)
	}
}

func literalNumber(expr ast.Expression) (float64, bool) {
	if u, ok := expr.(*ast.UnaryExpr); ok && u.Operator == "-" {
		v, ok := literalNumber(u.Operand)
		return -v, ok
	}
	lit, ok := expr.(*ast.Literal)
	if !ok {
		return 0, false
	}
	switch lit.Kind {
	case ast.LiteralInt:
		return float64(lit.Int), true
	case ast.LiteralFloat:
		return lit.Float, true
	default:
		return 0, false
	}
}

// --- Pass 3: reachability -------------------------------------------------

func (a *Analyzer) checkReachability() {
	if !a.hasEntry {
		return
	}

	visited := make(map[string]bool)
	var dfs func(name string)
	dfs = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, target := range a.sceneGraph[name] {
			if _, ok := a.scenes.lookup(target); ok {
				dfs(target)
			}
		}
	}
	dfs(a.entryScene)

	for _, name := range a.scenes.names() {
		if name == a.entryScene || visited[name] {
			continue
		}
		sym, _ := a.scenes.lookup(name)
		a.warnf(diag.CodeUnreachableScene, sym.DefinitionSpan, "scene '%s' is never reached from '%s'", name, a.entryScene)
	}
}

// --- Unused reporting -------------------------------------------------

func (a *Analyzer) reportUnusedSymbols() {
	for _, sym := range a.characters.all() {
		if sym.Defined && !sym.Used {
			a.warnf(diag.CodeUnusedCharacter, sym.DefinitionSpan, "character '%s' is never used", sym.Name)
		}
	}
	for _, sym := range a.scenes.all() {
		if sym.Defined && !sym.Used && sym.Name != a.entryScene {
			a.warnf(diag.CodeUnusedScene, sym.DefinitionSpan, "scene '%s' is never used", sym.Name)
		}
	}
	for _, sym := range a.variables.all() {
		if sym.Defined && !sym.Used {
			a.warnf(diag.CodeUnusedVariable, sym.DefinitionSpan, "variable '%s' is never used", sym.Name)
		}
	}
}
