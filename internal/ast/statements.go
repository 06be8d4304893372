package ast

import "github.com/nmscript/nms/internal/diag"

// CharacterDecl declares a speaking character: id, display name, UI color,
// and an optional default sprite resource.
type CharacterDecl struct {
	ID             string
	DisplayName    string
	Color          string
	DefaultSprite  string
	HasDefaultSpr  bool
	span           diag.Span
}

func (c *CharacterDecl) Span() diag.Span { return c.span }
func (*CharacterDecl) statementNode()    {}

func NewCharacterDecl(id, displayName, color string, span diag.Span) *CharacterDecl {
	return &CharacterDecl{ID: id, DisplayName: displayName, Color: color, span: span}
}

// SceneDecl is a named, ordered sequence of statements: the unit of
// navigation and goto.
type SceneDecl struct {
	Name string
	Body []Statement
	span diag.Span
}

func NewSceneDecl(name string, body []Statement, span diag.Span) *SceneDecl {
	return &SceneDecl{Name: name, Body: body, span: span}
}
func (s *SceneDecl) Span() diag.Span { return s.span }
func (*SceneDecl) statementNode()    {}

// ShowTarget selects what a Show statement displays.
type ShowTarget int

const (
	ShowBackground ShowTarget = iota
	ShowCharacter
	ShowSprite
)

// PositionKind selects where a character/sprite is placed on screen.
type PositionKind int

const (
	PosUnspecified PositionKind = iota
	PosLeft
	PosCenter
	PosRight
	PosCustom
)

// ScreenPosition is a resolved Show position: one of the named slots, or a
// custom (X, Y) pair.
type ScreenPosition struct {
	Kind PositionKind
	X, Y Expression
}

// Show displays a background, character, or sprite, with an optional
// position and an optional transition.
type Show struct {
	Target             ShowTarget
	Identifier         string
	Resource           string
	HasResource        bool
	Position           ScreenPosition
	TransitionType     string
	TransitionDuration Expression
	HasTransition      bool
	span               diag.Span
}

func (s *Show) Span() diag.Span       { return s.span }
func (s *Show) SetSpan(span diag.Span) { s.span = span }
func (*Show) statementNode()          {}

func NewShow(target ShowTarget, identifier string, span diag.Span) *Show {
	return &Show{Target: target, Identifier: identifier, span: span}
}

// Hide removes a previously shown character from the scene.
type Hide struct {
	Identifier string
	span       diag.Span
}

func NewHide(identifier string, span diag.Span) *Hide { return &Hide{Identifier: identifier, span: span} }
func (h *Hide) Span() diag.Span                       { return h.span }
func (*Hide) statementNode()                          {}

// Say displays dialogue text, optionally attributed to a speaker.
type Say struct {
	Speaker    string
	HasSpeaker bool
	Text       string
	span       diag.Span
}

func NewSay(speaker string, hasSpeaker bool, text string, span diag.Span) *Say {
	return &Say{Speaker: speaker, HasSpeaker: hasSpeaker, Text: text, span: span}
}
func (s *Say) Span() diag.Span { return s.span }
func (*Say) statementNode()    {}

// ChoiceOption is one branch of a Choice block: its text, an optional
// guard condition, and either a goto target or an inline statement body.
type ChoiceOption struct {
	Text         string
	Condition    Expression
	HasCondition bool
	GotoTarget   string
	HasGoto      bool
	Body         []Statement
	span         diag.Span
}

func (o *ChoiceOption) Span() diag.Span        { return o.span }
func (o *ChoiceOption) SetSpan(span diag.Span) { o.span = span }

// Choice presents the player with an ordered list of options; source order
// is preserved.
type Choice struct {
	Options []*ChoiceOption
	span    diag.Span
}

func NewChoice(options []*ChoiceOption, span diag.Span) *Choice {
	return &Choice{Options: options, span: span}
}
func (c *Choice) Span() diag.Span { return c.span }
func (*Choice) statementNode()    {}

// If is a conditional with an optional else branch; "else if" is
// represented as a nested If inside the Else block.
type If struct {
	Condition Expression
	Then      *Block
	Else      *Block
	HasElse   bool
	span      diag.Span
}

func NewIf(cond Expression, then, els *Block, span diag.Span) *If {
	return &If{Condition: cond, Then: then, Else: els, HasElse: els != nil, span: span}
}
func (i *If) Span() diag.Span { return i.span }
func (*If) statementNode()    {}

// Goto transfers control to a named scene. Resolution to an instruction
// index is deferred to the compiler; the parser only records the name.
type Goto struct {
	Target string
	span   diag.Span
}

func NewGoto(target string, span diag.Span) *Goto { return &Goto{Target: target, span: span} }
func (g *Goto) Span() diag.Span                   { return g.span }
func (*Goto) statementNode()                      {}

// Wait pauses narrative advancement for the given number of seconds.
type Wait struct {
	Duration Expression
	span     diag.Span
}

func NewWait(duration Expression, span diag.Span) *Wait { return &Wait{Duration: duration, span: span} }
func (w *Wait) Span() diag.Span                         { return w.span }
func (*Wait) statementNode()                            {}

// PlayKind selects which audio channel a Play/Stop statement addresses.
type PlayKind int

const (
	PlaySoundKind PlayKind = iota
	PlayMusicKind
)

// Play starts playback of a sound effect or music track.
type Play struct {
	Kind     PlayKind
	Resource string
	Volume   Expression
	HasVolume bool
	span     diag.Span
}

func NewPlay(kind PlayKind, resource string, span diag.Span) *Play {
	return &Play{Kind: kind, Resource: resource, span: span}
}
func (p *Play) Span() diag.Span        { return p.span }
func (p *Play) SetSpan(span diag.Span) { p.span = span }
func (*Play) statementNode()           {}

// Stop halts a sound effect or music track, with an optional fade-out
// duration.
type Stop struct {
	Kind     PlayKind
	Fade     Expression
	HasFade  bool
	span     diag.Span
}

func NewStop(kind PlayKind, span diag.Span) *Stop { return &Stop{Kind: kind, span: span} }
func (s *Stop) Span() diag.Span        { return s.span }
func (s *Stop) SetSpan(span diag.Span) { s.span = span }
func (*Stop) statementNode()           {}

// Set assigns a value to a variable or, when IsFlag is true, a boolean
// flag — a separate namespace from general variables.
type Set struct {
	Name   string
	Value  Expression
	IsFlag bool
	span   diag.Span
}

func NewSet(name string, value Expression, isFlag bool, span diag.Span) *Set {
	return &Set{Name: name, Value: value, IsFlag: isFlag, span: span}
}
func (s *Set) Span() diag.Span { return s.span }
func (*Set) statementNode()    {}

// Transition plays a screen transition effect of the given type and
// duration (seconds).
type Transition struct {
	Type     string
	Duration Expression
	span     diag.Span
}

func NewTransition(typ string, duration Expression, span diag.Span) *Transition {
	return &Transition{Type: typ, Duration: duration, span: span}
}
func (t *Transition) Span() diag.Span { return t.span }
func (*Transition) statementNode()    {}

// ExpressionStmt wraps a bare expression appearing in statement position
// (any identifier-led statement that is not dialogue shorthand, such as a
// call; DWScript-style "result :=" assignment has no counterpart here).
type ExpressionStmt struct {
	Expr Expression
	span diag.Span
}

func NewExpressionStmt(expr Expression, span diag.Span) *ExpressionStmt {
	return &ExpressionStmt{Expr: expr, span: span}
}
func (e *ExpressionStmt) Span() diag.Span { return e.span }
func (*ExpressionStmt) statementNode()    {}

// Block is a brace-delimited sequence of statements.
type Block struct {
	Statements []Statement
	span       diag.Span
}

func NewBlock(statements []Statement, span diag.Span) *Block {
	return &Block{Statements: statements, span: span}
}
func (b *Block) Span() diag.Span { return b.span }
func (*Block) statementNode()    {}
