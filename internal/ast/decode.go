package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"
)

// Format selects the serialized tree encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return "json"
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// rawNode is the wire shape of every node. Unused fields stay empty.
type rawNode struct {
	Kind    string     `json:"kind" msgpack:"kind"`
	Line    int        `json:"line,omitempty" msgpack:"line,omitempty"`
	Col     int        `json:"col,omitempty" msgpack:"col,omitempty"`
	Name    string     `json:"name,omitempty" msgpack:"name,omitempty"`
	Type    string     `json:"type,omitempty" msgpack:"type,omitempty"`
	Quals   []string   `json:"quals,omitempty" msgpack:"quals,omitempty"`
	Init    *rawNode   `json:"init,omitempty" msgpack:"init,omitempty"`
	Body    []*rawNode `json:"body,omitempty" msgpack:"body,omitempty"`
	Items   []*rawNode `json:"items,omitempty" msgpack:"items,omitempty"`
	Target  string     `json:"target,omitempty" msgpack:"target,omitempty"`
	Op      string     `json:"op,omitempty" msgpack:"op,omitempty"`
	Expr    *rawNode   `json:"expr,omitempty" msgpack:"expr,omitempty"`
	Value   any        `json:"value,omitempty" msgpack:"value,omitempty"`
	Cond    *rawNode   `json:"cond,omitempty" msgpack:"cond,omitempty"`
	Then    []*rawNode `json:"then,omitempty" msgpack:"then,omitempty"`
	Else    []*rawNode `json:"else" msgpack:"else"`
	Left    *rawNode   `json:"left,omitempty" msgpack:"left,omitempty"`
	Right   *rawNode   `json:"right,omitempty" msgpack:"right,omitempty"`
	Operand *rawNode   `json:"operand,omitempty" msgpack:"operand,omitempty"`
	Args    []*rawNode `json:"args,omitempty" msgpack:"args,omitempty"`
	Exprs   []*rawNode `json:"exprs,omitempty" msgpack:"exprs,omitempty"`
}

// Load reads and decodes a tree file; the encoding follows the extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(data), FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Name = path
	return f, nil
}

// Decode reads one serialized tree. The root must be a "file" node.
func Decode(r io.Reader, format Format) (*File, error) {
	var root rawNode
	switch format {
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&root); err != nil {
			return nil, fmt.Errorf("decode msgpack tree: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&root); err != nil {
			return nil, fmt.Errorf("decode json tree: %w", err)
		}
	}
	return buildFile(&root)
}

func buildFile(root *rawNode) (*File, error) {
	if root.Kind != "file" {
		return nil, fmt.Errorf("root node must be %q, got %q", "file", root.Kind)
	}
	f := &File{Name: root.Name, Items: make([]Item, 0, len(root.Items))}
	for _, raw := range root.Items {
		item, err := buildItem(raw)
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

func (r *rawNode) pos() Pos { return Pos{Line: r.Line, Col: r.Col} }

func malformed(r *rawNode, field string) error {
	return fmt.Errorf("%s node at %s: missing %s", r.Kind, r.pos(), field)
}

func ident(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func buildItem(r *rawNode) (Item, error) {
	if r == nil {
		return nil, fmt.Errorf("nil top-level item")
	}
	switch r.Kind {
	case "decl":
		return buildDecl(r)
	case "func":
		if r.Name == "" {
			return nil, malformed(r, "name")
		}
		body, err := buildStmts(r.Body)
		if err != nil {
			return nil, err
		}
		return &FuncDef{Pos: r.pos(), Name: ident(r.Name), Type: r.Type, Body: body}, nil
	default:
		return &Unknown{Pos: r.pos(), Kind: r.Kind}, nil
	}
}

func buildDecl(r *rawNode) (*Decl, error) {
	if r.Name == "" {
		return nil, malformed(r, "name")
	}
	d := &Decl{Pos: r.pos(), Name: ident(r.Name), Type: strings.TrimSpace(r.Type), Quals: r.Quals}
	if r.Init != nil {
		init, err := buildExpr(r.Init)
		if err != nil {
			return nil, err
		}
		d.Init = init
	}
	return d, nil
}

func buildStmts(raws []*rawNode) ([]Stmt, error) {
	out := make([]Stmt, 0, len(raws))
	for _, raw := range raws {
		s, err := buildStmt(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func buildStmt(r *rawNode) (Stmt, error) {
	if r == nil {
		return nil, fmt.Errorf("nil statement")
	}
	switch r.Kind {
	case "decl":
		return buildDecl(r)
	case "assign":
		if r.Target == "" {
			return nil, malformed(r, "target")
		}
		if r.Expr == nil {
			return nil, malformed(r, "expr")
		}
		value, err := buildExpr(r.Expr)
		if err != nil {
			return nil, err
		}
		op := r.Op
		if op == "" {
			op = "="
		}
		return &Assign{Pos: r.pos(), Target: ident(r.Target), Op: op, Value: value}, nil
	case "if":
		if r.Cond == nil {
			return nil, malformed(r, "cond")
		}
		cond, err := buildExpr(r.Cond)
		if err != nil {
			return nil, err
		}
		then, err := buildStmts(r.Then)
		if err != nil {
			return nil, err
		}
		s := &If{Pos: r.pos(), Cond: cond, Then: then, HasElse: r.Else != nil}
		if s.HasElse {
			if s.Else, err = buildStmts(r.Else); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "block":
		items, err := buildStmts(r.Items)
		if err != nil {
			return nil, err
		}
		return &Block{Pos: r.pos(), Items: items}, nil
	case "expr":
		if r.Expr == nil {
			return nil, malformed(r, "expr")
		}
		x, err := buildExpr(r.Expr)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: r.pos(), X: x}, nil
	default:
		return &Unknown{Pos: r.pos(), Kind: r.Kind}, nil
	}
}

func buildExprs(raws []*rawNode) ([]Expr, error) {
	out := make([]Expr, 0, len(raws))
	for _, raw := range raws {
		e, err := buildExpr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func buildExpr(r *rawNode) (Expr, error) {
	if r == nil {
		return nil, fmt.Errorf("nil expression")
	}
	switch r.Kind {
	case "binary":
		if r.Left == nil || r.Right == nil {
			return nil, malformed(r, "operand")
		}
		left, err := buildExpr(r.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildExpr(r.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{Pos: r.pos(), Op: r.Op, Left: left, Right: right}, nil
	case "unary":
		if r.Operand == nil {
			return nil, malformed(r, "operand")
		}
		x, err := buildExpr(r.Operand)
		if err != nil {
			return nil, err
		}
		return &Unary{Pos: r.pos(), Op: r.Op, X: x}, nil
	case "const":
		text, err := literalText(r.Value)
		if err != nil {
			return nil, fmt.Errorf("const node at %s: %w", r.pos(), err)
		}
		return &Const{Pos: r.pos(), Value: text}, nil
	case "id":
		if r.Name == "" {
			return nil, malformed(r, "name")
		}
		return &Ident{Pos: r.pos(), Name: ident(r.Name)}, nil
	case "call":
		args, err := buildExprs(r.Args)
		if err != nil {
			return nil, err
		}
		return &Call{Pos: r.pos(), Name: ident(r.Name), Args: args}, nil
	case "exprlist":
		exprs, err := buildExprs(r.Exprs)
		if err != nil {
			return nil, err
		}
		return &ExprList{Pos: r.pos(), Exprs: exprs}, nil
	default:
		return &Unknown{Pos: r.pos(), Kind: r.Kind}, nil
	}
}

// literalText accepts both textual and numeric constant values.
func literalText(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case nil:
		return "", fmt.Errorf("missing value")
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}
