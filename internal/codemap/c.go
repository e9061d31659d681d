package codemap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var cDocs = docStyle{
	commentKinds: []string{"comment"},
	linePrefix:   "///",
	blockDocs:    true,
	stripStars:   true,
}

// cExtractor walks a C syntax tree. Declarations inside preprocessor
// conditionals (include guards) are visited as if they were top level.
type cExtractor struct {
	source  []byte
	opts    Options
	imports []Import
	decls   []Declaration
}

func extractC(root *sitter.Node, source []byte, opts Options) ([]Import, []Declaration) {
	e := &cExtractor{source: source, opts: opts}
	e.visitAll(root)
	return e.imports, e.decls
}

func (e *cExtractor) visitAll(n *sitter.Node) {
	for _, child := range children(n) {
		e.visit(child)
	}
}

func (e *cExtractor) visit(n *sitter.Node) {
	switch n.Kind() {
	case "preproc_include":
		path := strings.Trim(fieldText(n, "path", e.source), "\"<>")
		if path != "" {
			e.imports = append(e.imports, Import{Source: path})
		}
	case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif", "linkage_specification", "declaration_list":
		e.visitAll(n)
	case "function_definition":
		if fn := e.extractFunction(n); fn != nil {
			e.add(fn)
		}
	case "declaration":
		e.extractDeclaration(n)
	case "type_definition":
		e.extractTypedef(n)
	case "struct_specifier", "union_specifier", "enum_specifier":
		e.extractSpecifier(n, n, "", Public)
	}
}

func (e *cExtractor) add(d Declaration) {
	if e.opts.keep(d.DeclVisibility()) {
		e.decls = append(e.decls, d)
	}
}

func (e *cExtractor) extractFunction(n *sitter.Node) *Function {
	name := declaratorName(n.ChildByFieldName("declarator"), e.source)
	if name == "" {
		return nil
	}
	return &Function{
		Name:       name,
		Signature:  signatureUntil(n, e.source, "compound_statement"),
		Visibility: cVisibility(n, e.source),
		Location:   location(n),
		Doc:        e.doc(n),
	}
}

// extractDeclaration handles prototypes, struct and enum definitions, and
// file-scope const variables.
func (e *cExtractor) extractDeclaration(n *sitter.Node) {
	vis := cVisibility(n, e.source)
	if typeNode := n.ChildByFieldName("type"); typeNode != nil {
		e.extractSpecifier(typeNode, n, "", vis)
	}

	for _, declarator := range children(n) {
		switch declarator.Kind() {
		case "function_declarator", "pointer_declarator":
			if !hasFunctionDeclarator(declarator) {
				continue
			}
			name := declaratorName(declarator, e.source)
			if name == "" {
				continue
			}
			sig := strings.TrimSuffix(collapseWhitespace(nodeText(n, e.source)), ";")
			e.add(&Function{
				Name:       name,
				Signature:  strings.TrimSpace(sig),
				Visibility: vis,
				Location:   location(n),
				Doc:        e.doc(n),
			})
		case "init_declarator":
			if !isConstQualified(n) {
				continue
			}
			name := declaratorName(declarator.ChildByFieldName("declarator"), e.source)
			if name == "" {
				continue
			}
			e.add(&Const{
				Name:       name,
				Type:       e.declaredType(n, declarator.ChildByFieldName("declarator"), name),
				Visibility: vis,
				Location:   location(n),
			})
		}
	}
}

// extractTypedef emits a Struct or Enum for `typedef struct {...} Name;` and
// a TypeAlias otherwise.
func (e *cExtractor) extractTypedef(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	declarator := n.ChildByFieldName("declarator")
	name := declaratorName(declarator, e.source)
	if typeNode == nil || name == "" {
		return
	}
	if e.extractSpecifier(typeNode, n, name, Public) {
		return
	}
	e.add(&TypeAlias{
		Name:       name,
		Target:     e.declaredType(n, declarator, name),
		Visibility: Public,
		Location:   location(n),
	})
}

// extractSpecifier emits a Struct (for structs and unions) or an Enum when
// spec carries a body. outer provides location and docs; alias overrides an
// anonymous or tagged name. It reports whether a declaration was emitted.
func (e *cExtractor) extractSpecifier(spec, outer *sitter.Node, alias string, vis Visibility) bool {
	body := spec.ChildByFieldName("body")
	if body == nil {
		return false
	}
	name := alias
	if name == "" {
		name = fieldText(spec, "name", e.source)
	}
	if name == "" {
		return false
	}

	switch spec.Kind() {
	case "struct_specifier", "union_specifier":
		st := &Struct{Name: name, Visibility: vis, Location: location(outer), Doc: e.doc(outer)}
		for _, fd := range findChildrenByType(body, "field_declaration") {
			st.Fields = append(st.Fields, e.extractFields(fd)...)
		}
		e.add(st)
		return true
	case "enum_specifier":
		en := &Enum{Name: name, Visibility: vis, Location: location(outer), Doc: e.doc(outer)}
		for _, enumerator := range findChildrenByType(body, "enumerator") {
			if v := fieldText(enumerator, "name", e.source); v != "" {
				en.Variants = append(en.Variants, v)
			}
		}
		e.add(en)
		return true
	}
	return false
}

func (e *cExtractor) extractFields(fd *sitter.Node) []Field {
	var fields []Field
	for _, declarator := range children(fd) {
		switch declarator.Kind() {
		case "field_identifier", "pointer_declarator", "array_declarator", "function_declarator":
			name := declaratorName(declarator, e.source)
			if name == "" {
				continue
			}
			fields = append(fields, Field{
				Name:       name,
				Type:       e.declaredType(fd, declarator, name),
				Visibility: Public,
			})
		}
	}
	return fields
}

// declaredType combines the type specifier with the declarator's pointer and
// array decorations: `char *name[4]` gives `char *[4]`.
func (e *cExtractor) declaredType(decl, declarator *sitter.Node, name string) string {
	typeText := fieldText(decl, "type", e.source)
	if q := findChildByType(decl, "type_qualifier"); q != nil {
		typeText = nodeText(q, e.source) + " " + typeText
	}
	rest := strings.Replace(nodeText(declarator, e.source), name, "", 1)
	return collapseWhitespace(typeText + " " + rest)
}

func (e *cExtractor) doc(n *sitter.Node) string {
	if !e.opts.IncludeDocs {
		return ""
	}
	return precedingDoc(n, e.source, cDocs)
}

// declaratorName finds the identifier inside nested declarators.
func declaratorName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "identifier", "field_identifier", "type_identifier", "primitive_type":
		return nodeText(n, source)
	case "parenthesized_declarator":
		for _, child := range children(n) {
			if name := declaratorName(child, source); name != "" {
				return name
			}
		}
		return ""
	}
	return declaratorName(n.ChildByFieldName("declarator"), source)
}

func hasFunctionDeclarator(n *sitter.Node) bool {
	for n != nil {
		if n.Kind() == "function_declarator" {
			return true
		}
		n = n.ChildByFieldName("declarator")
	}
	return false
}

func isConstQualified(n *sitter.Node) bool {
	for _, q := range findChildrenByType(n, "type_qualifier") {
		if q.ChildCount() > 0 && q.Child(0).Kind() == "const" {
			return true
		}
	}
	return false
}

// cVisibility treats `static` storage as file-private.
func cVisibility(n *sitter.Node, source []byte) Visibility {
	for _, sc := range findChildrenByType(n, "storage_class_specifier") {
		if nodeText(sc, source) == "static" {
			return Private
		}
	}
	return Public
}
