// Package ast holds the syntax tree consumed by the minic core.
//
// The tree is produced by an external front end and reaches the core either
// as Go values or through the serialized form read by Decode. Node sets are
// closed: Item, Stmt and Expr are sealed interfaces, and any shape the front
// end emits that has no Go type here decodes into *Unknown so the lowering
// stages can report it precisely.
package ast

import (
	"fmt"
	"strconv"
)

// Pos is a 1-based source position; the zero value means unknown.
type Pos struct {
	Line int
	Col  int
}

// Position returns p itself so embedding types satisfy Node.
func (p Pos) Position() Pos { return p }

func (p Pos) String() string {
	if p.Line == 0 {
		return "?"
	}
	if p.Col == 0 {
		return strconv.Itoa(p.Line)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is implemented by every tree node.
type Node interface {
	Position() Pos
}

// Item is a top-level declaration or function definition.
type Item interface {
	Node
	itemNode()
}

// Stmt is a block item inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// File is one compilation unit.
type File struct {
	Name  string
	Items []Item
}

// Decl declares a variable, optionally initialized.
type Decl struct {
	Pos
	Name  string
	Type  string
	Quals []string
	Init  Expr // nil when absent
}

// FuncDef is a function definition.
type FuncDef struct {
	Pos
	Name string
	Type string // return type
	Body []Stmt
}

// Assign stores Value into Target. Op is "=" or a compound form such as "+=".
type Assign struct {
	Pos
	Target string
	Op     string
	Value  Expr
}

// If is a conditional statement. HasElse separates "no else" from "else {}".
type If struct {
	Pos
	Cond    Expr
	Then    []Stmt
	Else    []Stmt
	HasElse bool
}

// Block is a nested compound statement.
type Block struct {
	Pos
	Items []Stmt
}

// ExprStmt evaluates X for effect.
type ExprStmt struct {
	Pos
	X Expr
}

// Binary is a binary operator expression.
type Binary struct {
	Pos
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a prefix operator expression.
type Unary struct {
	Pos
	Op string
	X  Expr
}

// Const is a literal constant in its source spelling ("42", "0x1F", "'a'").
type Const struct {
	Pos
	Value string
}

// Ident references a name.
type Ident struct {
	Pos
	Name string
}

// Call is a call expression.
type Call struct {
	Pos
	Name string
	Args []Expr
}

// ExprList is a comma-separated expression list.
type ExprList struct {
	Pos
	Exprs []Expr
}

// Unknown stands for any node kind without a Go representation.
type Unknown struct {
	Pos
	Kind string
}

func (*Decl) itemNode()    {}
func (*FuncDef) itemNode() {}
func (*Unknown) itemNode() {}

func (*Decl) stmtNode()     {}
func (*Assign) stmtNode()   {}
func (*If) stmtNode()       {}
func (*Block) stmtNode()    {}
func (*ExprStmt) stmtNode() {}
func (*Unknown) stmtNode()  {}

func (*Binary) exprNode()   {}
func (*Unary) exprNode()    {}
func (*Const) exprNode()    {}
func (*Ident) exprNode()    {}
func (*Call) exprNode()     {}
func (*ExprList) exprNode() {}
func (*Unknown) exprNode()  {}

// KindOf names the node kind the way the serialized form spells it.
func KindOf(n Node) string {
	switch n := n.(type) {
	case nil:
		return "<nil>"
	case *Decl:
		return "decl"
	case *FuncDef:
		return "func"
	case *Assign:
		return "assign"
	case *If:
		return "if"
	case *Block:
		return "block"
	case *ExprStmt:
		return "expr"
	case *Binary:
		return "binary"
	case *Unary:
		return "unary"
	case *Const:
		return "const"
	case *Ident:
		return "id"
	case *Call:
		return "call"
	case *ExprList:
		return "exprlist"
	case *Unknown:
		return n.Kind
	}
	return fmt.Sprintf("%T", n)
}

// Int builds an integer constant.
func Int(v int64) *Const { return &Const{Value: strconv.FormatInt(v, 10)} }

// Id builds an identifier.
func Id(name string) *Ident { return &Ident{Name: name} }

// Bin builds a binary expression.
func Bin(left Expr, op string, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}
