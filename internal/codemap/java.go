package codemap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var javaDocs = docStyle{
	commentKinds: []string{"block_comment", "line_comment", "comment"},
	blockDocs:    true,
	stripStars:   true,
}

// javaExtractor walks a Java syntax tree. Methods, constructors, fields and
// nested types are class members.
type javaExtractor struct {
	source  []byte
	opts    Options
	imports []Import
	decls   []Declaration
}

func extractJava(root *sitter.Node, source []byte, opts Options) ([]Import, []Declaration) {
	e := &javaExtractor{source: source, opts: opts}
	for _, child := range children(root) {
		if child.Kind() == "import_declaration" {
			if imp, ok := e.extractImport(child); ok {
				e.imports = append(e.imports, imp)
			}
			continue
		}
		e.decls = e.appendType(e.decls, child, false)
	}
	return e.imports, e.decls
}

// extractImport splits `a.b.C` into source a.b and item C. Wildcard imports
// keep the package as source with no items.
func (e *javaExtractor) extractImport(n *sitter.Node) (Import, bool) {
	text := collapseWhitespace(nodeText(n, e.source))
	text = strings.TrimSuffix(strings.TrimPrefix(text, "import "), ";")
	text = strings.TrimSpace(strings.TrimPrefix(text, "static "))
	if text == "" {
		return Import{}, false
	}
	if pkg, ok := strings.CutSuffix(text, ".*"); ok {
		return Import{Source: pkg}, true
	}
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		return Import{Source: text[:i], Items: []string{text[i+1:]}}, true
	}
	return Import{Source: text}, true
}

// appendType appends the class-like declaration n. inInterface marks members
// of an interface body, which are implicitly public.
func (e *javaExtractor) appendType(decls []Declaration, n *sitter.Node, inInterface bool) []Declaration {
	var d Declaration
	switch n.Kind() {
	case "class_declaration", "record_declaration", "annotation_type_declaration":
		if cls := e.extractClass(n, inInterface); cls != nil {
			d = cls
		}
	case "interface_declaration":
		if iface := e.extractInterface(n, inInterface); iface != nil {
			d = iface
		}
	case "enum_declaration":
		if en := e.extractEnum(n, inInterface); en != nil {
			d = en
		}
	}
	if d != nil && e.opts.keep(d.DeclVisibility()) {
		decls = append(decls, d)
	}
	return decls
}

func (e *javaExtractor) extractClass(n *sitter.Node, inInterface bool) *Class {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	cls := &Class{
		Name:       name,
		Visibility: javaVisibility(n, inInterface),
		Location:   location(n),
		Doc:        e.doc(n),
	}
	for _, member := range children(n.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
			if fn := e.extractMethod(member); fn != nil && e.opts.keep(fn.Visibility) {
				cls.Members = append(cls.Members, fn)
			}
		case "field_declaration":
			cls.Members = append(cls.Members, e.extractFields(member)...)
		default:
			cls.Members = e.appendType(cls.Members, member, false)
		}
	}
	return cls
}

func (e *javaExtractor) extractMethod(n *sitter.Node) *Function {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	sig := signatureUntil(n, e.source, "block", "constructor_body", ";")
	return &Function{
		Name:       name,
		Signature:  sig,
		Visibility: javaVisibility(n, false),
		Location:   location(n),
		Doc:        e.doc(n),
	}
}

// extractFields emits one Const per declarator.
func (e *javaExtractor) extractFields(n *sitter.Node) []Declaration {
	vis := javaVisibility(n, false)
	if !e.opts.keep(vis) {
		return nil
	}
	typeText := collapseWhitespace(fieldText(n, "type", e.source))
	var out []Declaration
	for _, declarator := range findChildrenByType(n, "variable_declarator") {
		name := fieldText(declarator, "name", e.source)
		if name == "" {
			continue
		}
		out = append(out, &Const{Name: name, Type: typeText, Visibility: vis, Location: location(n)})
	}
	return out
}

func (e *javaExtractor) extractInterface(n *sitter.Node, inInterface bool) *Interface {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	iface := &Interface{
		Name:       name,
		Visibility: javaVisibility(n, inInterface),
		Location:   location(n),
		Doc:        e.doc(n),
	}
	for _, member := range children(n.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_declaration":
			iface.Members = append(iface.Members, signatureUntil(member, e.source, "block", ";"))
		case "constant_declaration":
			iface.Members = append(iface.Members, strings.TrimSuffix(collapseWhitespace(nodeText(member, e.source)), ";"))
		}
	}
	return iface
}

func (e *javaExtractor) extractEnum(n *sitter.Node, inInterface bool) *Enum {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	en := &Enum{
		Name:       name,
		Visibility: javaVisibility(n, inInterface),
		Location:   location(n),
		Doc:        e.doc(n),
	}
	for _, constant := range findChildrenByType(n.ChildByFieldName("body"), "enum_constant") {
		if v := fieldText(constant, "name", e.source); v != "" {
			en.Variants = append(en.Variants, v)
		}
	}
	return en
}

func (e *javaExtractor) doc(n *sitter.Node) string {
	if !e.opts.IncludeDocs {
		return ""
	}
	return precedingDoc(n, e.source, javaDocs)
}

// javaVisibility reads the access modifier. No modifier means package-private
// (Crate), except inside interfaces where members are public.
func javaVisibility(n *sitter.Node, inInterface bool) Visibility {
	mods := findChildByType(n, "modifiers")
	for _, mod := range children(mods) {
		switch mod.Kind() {
		case "public":
			return Public
		case "protected":
			return Protected
		case "private":
			return Private
		}
	}
	if inInterface {
		return Public
	}
	return Crate
}
