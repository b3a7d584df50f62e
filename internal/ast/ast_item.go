package ast

// Fn is a top-level function declaration.
type Fn struct {
	R       Range
	Name    string
	Params  *ArgsType
	Effects []Type
	Rets    *ArgsType
	Body    *BlockStmt
	Attrs   []Attr
}

func (f *Fn) Range() Range { return f.R }

// Typedef is a top-level `type Name = T;` declaration.
type Typedef struct {
	R     Range
	Name  string
	T     Type
	Attrs []Attr
}

func (t *Typedef) Range() Range { return t.R }

// Effect is a top-level `effect Name = T;` declaration.
type Effect struct {
	R    Range
	Name string
	T    Type
}

func (e *Effect) Range() Range { return e.R }

// Import is a top-level `import "path" as alias?;` declaration.
type Import struct {
	R     Range
	Path  string
	Alias string
}

func (i *Import) Range() Range { return i.R }

// ModuleDecl is the top-level `module Name;` declaration.
type ModuleDecl struct {
	R    Range
	Name string
}

func (m *ModuleDecl) Range() Range { return m.R }

func NewFn(a *Arena, r Range, name string, params *ArgsType, effects []Type, rets *ArgsType, body *BlockStmt, attrs []Attr) *Fn {
	n := alloc[Fn](a)
	n.R, n.Name, n.Params, n.Effects, n.Rets, n.Body, n.Attrs = r, name, params, effects, rets, body, attrs
	return n
}

func NewTypedef(a *Arena, r Range, name string, t Type, attrs []Attr) *Typedef {
	n := alloc[Typedef](a)
	n.R, n.Name, n.T, n.Attrs = r, name, t, attrs
	return n
}

func NewEffect(a *Arena, r Range, name string, t Type) *Effect {
	n := alloc[Effect](a)
	n.R, n.Name, n.T = r, name, t
	return n
}

func NewImport(a *Arena, r Range, path, alias string) *Import {
	n := alloc[Import](a)
	n.R, n.Path, n.Alias = r, path, alias
	return n
}
