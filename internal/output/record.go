package output

import "github.com/moradology/pith/internal/codemap"

// CodemapRecord is the JSON shape of a codemap.
type CodemapRecord struct {
	Path         string              `json:"path"`
	Language     string              `json:"language"`
	Imports      []ImportRecord      `json:"imports"`
	Declarations []DeclarationRecord `json:"declarations"`
	ParseError   string              `json:"parse_error,omitempty"`
}

type ImportRecord struct {
	Source string   `json:"source"`
	Items  []string `json:"items"`
}

// DeclarationRecord flattens every declaration kind into one shape. Struct
// methods and class members go in Methods; trait methods and interface
// members go in Members.
type DeclarationRecord struct {
	Kind       string              `json:"kind"`
	Name       string              `json:"name"`
	Signature  string              `json:"signature,omitempty"`
	Visibility string              `json:"visibility"`
	Location   LocationRecord      `json:"location"`
	IsAsync    *bool               `json:"is_async,omitempty"`
	Doc        string              `json:"doc,omitempty"`
	Fields     []FieldRecord       `json:"fields,omitempty"`
	Methods    []DeclarationRecord `json:"methods,omitempty"`
	Variants   []string            `json:"variants,omitempty"`
	Members    []string            `json:"members,omitempty"`
	Target     *string             `json:"target,omitempty"`
	Type       *string             `json:"type,omitempty"`
}

type LocationRecord struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

type FieldRecord struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Visibility string `json:"visibility"`
}

// SelectedRecord is the JSON shape of a selected file.
type SelectedRecord struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Lines   int    `json:"lines"`
	Tokens  int    `json:"tokens"`
}

// ToCodemapRecord converts cm, applying the public-only filter to
// declarations, fields, methods and members.
func ToCodemapRecord(cm *codemap.Codemap, publicOnly bool) CodemapRecord {
	r := CodemapRecord{
		Path:         cm.Path,
		Language:     cm.Language.String(),
		Imports:      make([]ImportRecord, 0, len(cm.Imports)),
		Declarations: make([]DeclarationRecord, 0, len(cm.Declarations)),
		ParseError:   cm.ParseError,
	}
	for _, imp := range cm.Imports {
		items := imp.Items
		if items == nil {
			items = []string{}
		}
		r.Imports = append(r.Imports, ImportRecord{Source: imp.Source, Items: items})
	}
	for _, d := range visible(cm.Declarations, publicOnly) {
		r.Declarations = append(r.Declarations, toDeclarationRecord(d, publicOnly))
	}
	return r
}

func toDeclarationRecord(d codemap.Declaration, publicOnly bool) DeclarationRecord {
	loc := d.DeclLocation()
	r := DeclarationRecord{
		Name:       d.DeclName(),
		Visibility: d.DeclVisibility().String(),
		Location:   LocationRecord{StartLine: loc.StartLine, EndLine: loc.EndLine},
	}

	switch v := d.(type) {
	case *codemap.Function:
		isAsync := v.IsAsync
		r.Kind = "function"
		r.Signature = v.Signature
		r.IsAsync = &isAsync
		r.Doc = v.Doc
	case *codemap.Struct:
		r.Kind = "struct"
		r.Doc = v.Doc
		for _, f := range visibleFields(v.Fields, publicOnly) {
			r.Fields = append(r.Fields, FieldRecord{Name: f.Name, Type: f.Type, Visibility: f.Visibility.String()})
		}
		r.Methods = toDeclarationRecords(v.Methods, publicOnly)
	case *codemap.Enum:
		r.Kind = "enum"
		r.Doc = v.Doc
		r.Variants = v.Variants
	case *codemap.Trait:
		r.Kind = "trait"
		r.Doc = v.Doc
		r.Members = v.Methods
	case *codemap.TypeAlias:
		target := v.Target
		r.Kind = "type_alias"
		r.Target = &target
	case *codemap.Const:
		typ := v.Type
		r.Kind = "const"
		r.Type = &typ
	case *codemap.Interface:
		r.Kind = "interface"
		r.Doc = v.Doc
		r.Members = v.Members
	case *codemap.Class:
		r.Kind = "class"
		r.Doc = v.Doc
		r.Methods = toDeclarationRecords(v.Members, publicOnly)
	}
	return r
}

func toDeclarationRecords(decls []codemap.Declaration, publicOnly bool) []DeclarationRecord {
	var out []DeclarationRecord
	for _, d := range visible(decls, publicOnly) {
		out = append(out, toDeclarationRecord(d, publicOnly))
	}
	return out
}

func toSelectedRecord(f SelectedFile) SelectedRecord {
	return SelectedRecord{Path: f.Path, Content: f.Content, Lines: f.Lines, Tokens: f.Tokens}
}
