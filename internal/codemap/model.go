// Package codemap extracts API-level declarations from source files using
// tree-sitter grammars and normalizes them into one declaration model.
package codemap

import "github.com/moradology/pith/internal/filter"

// Visibility is the normalized access level of a declaration.
type Visibility int

const (
	Private Visibility = iota
	Public
	Crate     // Rust pub(crate), Java package-private
	Protected // Python _name, TS/Java protected
)

// String returns the display form used in records.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "pub"
	case Crate:
		return "pub(crate)"
	case Protected:
		return "protected"
	default:
		return "private"
	}
}

// Location is a 1-indexed inclusive line range.
type Location struct {
	StartLine int
	EndLine   int
}

// SingleLine reports whether the declaration fits on one line.
func (l Location) SingleLine() bool {
	return l.StartLine == l.EndLine
}

// Field is a struct field.
type Field struct {
	Name       string
	Type       string
	Visibility Visibility
}

// Import is one import statement. Empty Items means a whole-module or
// wildcard import.
type Import struct {
	Source string
	Items  []string
}

// Declaration is one of *Function, *Struct, *Enum, *Trait, *TypeAlias,
// *Const, *Interface or *Class.
type Declaration interface {
	DeclName() string
	DeclVisibility() Visibility
	DeclLocation() Location
	declaration()
}

// IsPublic reports whether d is Public.
func IsPublic(d Declaration) bool {
	return d.DeclVisibility() == Public
}

type Function struct {
	Name       string
	Signature  string
	Visibility Visibility
	Location   Location
	IsAsync    bool
	Doc        string
}

type Struct struct {
	Name       string
	Fields     []Field
	Visibility Visibility
	Location   Location
	Methods    []Declaration // filled by the merge pass
	Doc        string
}

type Enum struct {
	Name       string
	Variants   []string
	Visibility Visibility
	Location   Location
	Doc        string
}

type Trait struct {
	Name       string
	Methods    []string
	Visibility Visibility
	Location   Location
	Doc        string
}

type TypeAlias struct {
	Name       string
	Target     string
	Visibility Visibility
	Location   Location
}

type Const struct {
	Name       string
	Type       string
	Visibility Visibility
	Location   Location
}

type Interface struct {
	Name       string
	Members    []string
	Visibility Visibility
	Location   Location
	Doc        string
}

type Class struct {
	Name       string
	Members    []Declaration
	Visibility Visibility
	Location   Location
	Doc        string
}

func (d *Function) DeclName() string  { return d.Name }
func (d *Struct) DeclName() string    { return d.Name }
func (d *Enum) DeclName() string      { return d.Name }
func (d *Trait) DeclName() string     { return d.Name }
func (d *TypeAlias) DeclName() string { return d.Name }
func (d *Const) DeclName() string     { return d.Name }
func (d *Interface) DeclName() string { return d.Name }
func (d *Class) DeclName() string     { return d.Name }

func (d *Function) DeclVisibility() Visibility  { return d.Visibility }
func (d *Struct) DeclVisibility() Visibility    { return d.Visibility }
func (d *Enum) DeclVisibility() Visibility      { return d.Visibility }
func (d *Trait) DeclVisibility() Visibility     { return d.Visibility }
func (d *TypeAlias) DeclVisibility() Visibility { return d.Visibility }
func (d *Const) DeclVisibility() Visibility     { return d.Visibility }
func (d *Interface) DeclVisibility() Visibility { return d.Visibility }
func (d *Class) DeclVisibility() Visibility     { return d.Visibility }

func (d *Function) DeclLocation() Location  { return d.Location }
func (d *Struct) DeclLocation() Location    { return d.Location }
func (d *Enum) DeclLocation() Location      { return d.Location }
func (d *Trait) DeclLocation() Location     { return d.Location }
func (d *TypeAlias) DeclLocation() Location { return d.Location }
func (d *Const) DeclLocation() Location     { return d.Location }
func (d *Interface) DeclLocation() Location { return d.Location }
func (d *Class) DeclLocation() Location     { return d.Location }

func (*Function) declaration()  {}
func (*Struct) declaration()    {}
func (*Enum) declaration()      {}
func (*Trait) declaration()     {}
func (*TypeAlias) declaration() {}
func (*Const) declaration()     {}
func (*Interface) declaration() {}
func (*Class) declaration()     {}

// Codemap is the extraction result for one file. A non-empty ParseError means
// Declarations may be partial.
type Codemap struct {
	Path         string
	Language     filter.Language
	Imports      []Import
	Declarations []Declaration
	ParseError   string
}

// DeclarationCount counts declarations including struct methods and class
// members.
func (c *Codemap) DeclarationCount() int {
	return countDecls(c.Declarations)
}

func countDecls(decls []Declaration) int {
	n := 0
	for _, d := range decls {
		n++
		switch v := d.(type) {
		case *Struct:
			n += countDecls(v.Methods)
		case *Class:
			n += countDecls(v.Members)
		}
	}
	return n
}
