package bytecode

import (
	"fmt"

	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
)

// positionCode maps a parsed ScreenPosition to the wire code the
// SHOW_CHARACTER callback receives: 0=Left, 1=Center, 2=Right, 3=Custom.
// An omitted `at` clause defaults to Center.
func positionCode(p ast.ScreenPosition) uint32 {
	switch p.Kind {
	case ast.PosLeft:
		return 0
	case ast.PosRight:
		return 2
	case ast.PosCustom:
		return 3
	default: // PosUnspecified, PosCenter
		return 1
	}
}

type pendingJump struct {
	instrIndex int
	sceneName  string
	span       diag.Span
}

// Compiler performs a single bottom-up pass: AST in, an ordered
// instruction stream and deduplicated string table out, with forward scene
// references patched once every scene has been emitted.
type Compiler struct {
	diags        *diag.Collection
	script       *CompiledScript
	stringIndex  map[string]uint32
	pendingJumps []pendingJump
}

// New returns a Compiler ready to run Compile.
func New() *Compiler {
	return &Compiler{
		diags:       diag.NewCollection(),
		script:      NewCompiledScript(),
		stringIndex: make(map[string]uint32),
	}
}

// Compile lowers prog into a CompiledScript. Compilation never aborts
// early: it always returns a (possibly partial) script alongside whatever
// diagnostics were recorded, mirroring the lexer/parser discipline.
func (c *Compiler) Compile(prog *ast.Program) (*CompiledScript, *diag.Collection) {
	for _, ch := range prog.Characters {
		c.script.Characters[ch.ID] = CharacterInfo{ID: ch.ID, DisplayName: ch.DisplayName, Color: ch.Color}
		c.script.CharacterOrder = append(c.script.CharacterOrder, ch.ID)
	}

	c.compileStatements(prog.Globals)
	c.emit(HALT, 0)

	for _, scene := range prog.Scenes {
		entry := uint32(len(c.script.Instructions))
		c.script.SceneEntryPoints[scene.Name] = entry
		c.script.SceneOrder = append(c.script.SceneOrder, scene.Name)
		c.compileStatements(scene.Body)
		c.emit(HALT, 0)
	}

	c.resolvePendingJumps()

	return c.script, c.diags
}

func (c *Compiler) intern(s string) uint32 {
	if idx, ok := c.stringIndex[s]; ok {
		return idx
	}
	idx := uint32(len(c.script.StringTable))
	c.script.StringTable = append(c.script.StringTable, s)
	c.stringIndex[s] = idx
	return idx
}

func (c *Compiler) emit(op Opcode, operand uint32) int {
	c.script.Instructions = append(c.script.Instructions, Instruction{Opcode: op, Operand: operand})
	return len(c.script.Instructions) - 1
}

// emitJump emits op with a placeholder operand, to be rewritten by patch
// once the jump target is known.
func (c *Compiler) emitJump(op Opcode) int {
	return c.emit(op, 0)
}

func (c *Compiler) patch(index int) {
	c.script.Instructions[index].Operand = uint32(len(c.script.Instructions))
}

// emitGoto emits a GOTO_SCENE with a placeholder operand and records the
// scene name for post-hoc resolution, since the target scene may not have
// been compiled yet.
func (c *Compiler) emitGoto(target string, span diag.Span) {
	idx := c.emit(GOTO_SCENE, 0)
	c.pendingJumps = append(c.pendingJumps, pendingJump{instrIndex: idx, sceneName: target, span: span})
}

func (c *Compiler) resolvePendingJumps() {
	for _, pj := range c.pendingJumps {
		entry, ok := c.script.SceneEntryPoints[pj.sceneName]
		if !ok {
			c.diags.Add(diag.New(diag.CodeUnresolvedJumpTarget, diag.Error,
				fmt.Sprintf("goto target scene '%s' was never defined", pj.sceneName), pj.span))
			continue
		}
		c.script.Instructions[pj.instrIndex].Operand = entry
	}
}

func (c *Compiler) compileStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		c.compileStatement(stmt)
	}
}

func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Show:
		c.compileShow(s)
	case *ast.Hide:
		c.emit(HIDE_CHARACTER, c.intern(s.Identifier))
	case *ast.Say:
		if s.HasSpeaker {
			c.emit(PUSH_STRING, c.intern(s.Speaker))
		} else {
			c.emit(PUSH_NULL, 0)
		}
		c.emit(SAY, c.intern(s.Text))
	case *ast.Choice:
		c.compileChoice(s)
	case *ast.If:
		c.compileIf(s)
	case *ast.Goto:
		c.emitGoto(s.Target, s.Span())
	case *ast.Wait:
		bits := Float32Bits(float32(c.foldConstant(s.Duration)))
		c.emit(WAIT, bits)
	case *ast.Play:
		op := PLAY_SOUND
		if s.Kind == ast.PlayMusicKind {
			op = PLAY_MUSIC
		}
		c.emit(op, c.intern(s.Resource))
	case *ast.Stop:
		// The operand doubles as a presence bit for the optional fade
		// argument, since STOP_MUSIC's stack contribution is conditional:
		// the VM needs to know whether to pop a fade duration without
		// inspecting neighboring instructions.
		if s.HasFade {
			c.emit(PUSH_FLOAT, Float32Bits(float32(c.foldConstant(s.Fade))))
			c.emit(STOP_MUSIC, 1)
		} else {
			c.emit(STOP_MUSIC, 0)
		}
	case *ast.Set:
		c.compileExpression(s.Value)
		if s.IsFlag {
			c.emit(SET_FLAG, c.intern(s.Name))
		} else {
			c.emit(STORE_GLOBAL, c.intern(s.Name))
		}
	case *ast.Transition:
		bits := Float32Bits(float32(c.foldConstant(s.Duration)))
		c.emit(PUSH_FLOAT, bits)
		c.emit(TRANSITION, c.intern(s.Type))
	case *ast.ExpressionStmt:
		c.compileExpression(s.Expr)
		c.emit(POP, 0)
	case *ast.Block:
		c.compileStatements(s.Statements)
	}
}

func (c *Compiler) compileShow(s *ast.Show) {
	switch s.Target {
	case ast.ShowBackground:
		c.emit(SHOW_BACKGROUND, c.intern(s.Resource))
	case ast.ShowCharacter, ast.ShowSprite:
		c.emit(PUSH_STRING, c.intern(s.Identifier))
		c.emit(PUSH_INT, positionCode(s.Position))
		c.emit(SHOW_CHARACTER, 0)
	}
	if s.HasTransition {
		bits := Float32Bits(float32(c.foldConstant(s.TransitionDuration)))
		c.emit(PUSH_FLOAT, bits)
		c.emit(TRANSITION, c.intern(s.TransitionType))
	}
}

// compileChoice emits the option list and the jump table: a
// DUP/compare/branch sequence per option that finds the selection index
// left on the stack by the VM's signal_choice.
func (c *Compiler) compileChoice(choice *ast.Choice) {
	c.emit(PUSH_INT, uint32(len(choice.Options)))
	for _, opt := range choice.Options {
		c.emit(PUSH_STRING, c.intern(opt.Text))
	}
	c.emit(CHOICE, uint32(len(choice.Options)))

	var endJumps []int
	for i, opt := range choice.Options {
		c.emit(DUP, 0)
		c.emit(PUSH_INT, uint32(i))
		c.emit(EQ, 0)
		skipJump := c.emitJump(JUMP_IF_NOT)
		c.emit(POP, 0)

		var condSkipJump int
		hasCondSkip := false
		if opt.HasCondition {
			c.compileExpression(opt.Condition)
			condSkipJump = c.emitJump(JUMP_IF_NOT)
			hasCondSkip = true
		}

		if opt.HasGoto {
			c.emitGoto(opt.GotoTarget, opt.Span())
		} else {
			c.compileStatements(opt.Body)
		}

		if hasCondSkip {
			c.patch(condSkipJump)
		}

		endJumps = append(endJumps, c.emitJump(JUMP))
		c.patch(skipJump)
	}
	c.emit(POP, 0)

	for _, idx := range endJumps {
		c.patch(idx)
	}
}

func (c *Compiler) compileIf(stmt *ast.If) {
	c.compileExpression(stmt.Condition)
	elseJump := c.emitJump(JUMP_IF_NOT)
	c.compileStatements(stmt.Then.Statements)
	endJump := c.emitJump(JUMP)
	c.patch(elseJump)
	if stmt.HasElse {
		c.compileStatements(stmt.Else.Statements)
	}
	c.patch(endJump)
}

var binaryOpcodes = map[string]Opcode{
	"+": ADD, "-": SUB, "*": MUL, "/": DIV, "%": MOD,
	"==": EQ, "!=": NE, "<": LT, "<=": LE, ">": GT, ">=": GE,
}

func (c *Compiler) compileExpression(expr ast.Expression) {
	switch e := foldConstantExpr(expr).(type) {
	case *ast.Literal:
		c.compileLiteral(e)
	case *ast.Identifier:
		c.emit(LOAD_GLOBAL, c.intern(e.Name))
	case *ast.BinaryExpr:
		c.compileBinary(e)
	case *ast.UnaryExpr:
		c.compileExpression(e.Operand)
		if e.Operator == "not" {
			c.emit(NOT, 0)
		} else {
			c.emit(NEG, 0)
		}
	case *ast.CallExpr:
		for _, arg := range e.Args {
			c.compileExpression(arg)
		}
		// CALL's operand is the callee's string-table index, leaving no
		// room to also encode argument count; push it explicitly (the same
		// convention CHOICE uses) so the VM knows how many pushed values
		// to reclaim from a callee that has no native implementation.
		c.emit(PUSH_INT, uint32(len(e.Args)))
		c.emit(CALL, c.intern(calleeName(e.Callee)))
	case *ast.PropertyExpr:
		c.compileExpression(e.Object)
		c.emit(PUSH_STRING, c.intern(e.Name))
	}
}

func calleeName(expr ast.Expression) string {
	if id, ok := expr.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

func (c *Compiler) compileLiteral(lit *ast.Literal) {
	switch lit.Kind {
	case ast.LiteralNull:
		c.emit(PUSH_NULL, 0)
	case ast.LiteralInt:
		c.emit(PUSH_INT, uint32(int32(lit.Int)))
	case ast.LiteralFloat:
		c.emit(PUSH_FLOAT, Float32Bits(float32(lit.Float)))
	case ast.LiteralBool:
		if lit.Bool {
			c.emit(PUSH_BOOL, 1)
		} else {
			c.emit(PUSH_BOOL, 0)
		}
	case ast.LiteralString:
		c.emit(PUSH_STRING, c.intern(lit.String))
	}
}

// compileBinary short-circuits `and`/`or` with a DUP/JUMP/POP sequence
// and otherwise compiles both operands followed by the matching
// arithmetic/comparison opcode.
func (c *Compiler) compileBinary(e *ast.BinaryExpr) {
	switch e.Operator {
	case "and":
		c.compileExpression(e.Left)
		c.emit(DUP, 0)
		end := c.emitJump(JUMP_IF_NOT)
		c.emit(POP, 0)
		c.compileExpression(e.Right)
		c.patch(end)
		return
	case "or":
		c.compileExpression(e.Left)
		c.emit(DUP, 0)
		end := c.emitJump(JUMP_IF)
		c.emit(POP, 0)
		c.compileExpression(e.Right)
		c.patch(end)
		return
	}

	c.compileExpression(e.Left)
	c.compileExpression(e.Right)
	if op, ok := binaryOpcodes[e.Operator]; ok {
		c.emit(op, 0)
	}
}

// foldConstant evaluates a compile-time-constant numeric expression: the
// duration/fade operands transported as bit-patterns in an
// instruction operand must be known at compile time, so only literal
// arithmetic folds; anything else
// folds to 0 (the VM has no way to recompute it from an operand later).
func (c *Compiler) foldConstant(expr ast.Expression) float64 {
	switch e := expr.(type) {
	case *ast.Literal:
		switch e.Kind {
		case ast.LiteralInt:
			return float64(e.Int)
		case ast.LiteralFloat:
			return e.Float
		default:
			return 0
		}
	case *ast.UnaryExpr:
		v := c.foldConstant(e.Operand)
		if e.Operator == "-" {
			return -v
		}
		return v
	case *ast.BinaryExpr:
		l, r := c.foldConstant(e.Left), c.foldConstant(e.Right)
		switch e.Operator {
		case "+":
			return l + r
		case "-":
			return l - r
		case "*":
			return l * r
		case "/":
			if r == 0 {
				return 0
			}
			return l / r
		}
		return 0
	default:
		return 0
	}
}
