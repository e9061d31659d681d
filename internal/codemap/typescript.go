package codemap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var jsDocs = docStyle{
	commentKinds: []string{"comment"},
	blockDocs:    true,
	stripStars:   true,
}

// tsExtractor walks a TypeScript or TSX syntax tree. JavaScript and JSX
// sources are parsed with the same grammars and share this extractor.
type tsExtractor struct {
	source  []byte
	opts    Options
	imports []Import
	decls   []Declaration
}

func extractTypeScript(root *sitter.Node, source []byte, opts Options) ([]Import, []Declaration) {
	e := &tsExtractor{source: source, opts: opts}
	for _, child := range children(root) {
		switch child.Kind() {
		case "import_statement":
			if imp, ok := e.extractImport(child); ok {
				e.imports = append(e.imports, imp)
			}
		case "export_statement":
			if decl := child.ChildByFieldName("declaration"); decl != nil {
				e.visit(decl, child, true)
				continue
			}
			for _, inner := range children(child) {
				e.visit(inner, child, true)
			}
		default:
			e.visit(child, child, false)
		}
	}
	return e.imports, e.decls
}

// visit extracts one declaration. docAnchor is the node whose preceding
// comments hold the JSDoc: the export statement for exported declarations.
func (e *tsExtractor) visit(n, docAnchor *sitter.Node, exported bool) {
	var d Declaration
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		if fn := e.extractFunction(n, docAnchor, exported); fn != nil {
			d = fn
		}
	case "class_declaration", "abstract_class_declaration":
		if cls := e.extractClass(n, docAnchor, exported); cls != nil {
			d = cls
		}
	case "interface_declaration":
		if iface := e.extractInterface(n, docAnchor); iface != nil {
			d = iface
		}
	case "type_alias_declaration":
		if ta := e.extractTypeAlias(n); ta != nil {
			d = ta
		}
	case "enum_declaration":
		if en := e.extractEnum(n, docAnchor, exported); en != nil {
			d = en
		}
	case "lexical_declaration":
		e.extractLexical(n, docAnchor, exported)
		return
	}
	if d != nil && e.opts.keep(d.DeclVisibility()) {
		e.decls = append(e.decls, d)
	}
}

// extractImport takes the quoted module as source. Named imports become items
// (aliases dropped); a namespace import becomes the single item "*".
func (e *tsExtractor) extractImport(n *sitter.Node) (Import, bool) {
	text := nodeText(n, e.source)
	source := quotedModule(n, e.source)
	if source == "" {
		return Import{}, false
	}

	imp := Import{Source: source}
	if open := strings.IndexByte(text, '{'); open >= 0 {
		if closing := strings.IndexByte(text[open:], '}'); closing > 0 {
			for _, item := range strings.Split(text[open+1:open+closing], ",") {
				item, _, _ = strings.Cut(collapseWhitespace(item), " as ")
				item = strings.TrimSpace(strings.TrimPrefix(item, "type "))
				if item != "" {
					imp.Items = append(imp.Items, item)
				}
			}
		}
	} else if strings.Contains(text, "* as") {
		imp.Items = []string{"*"}
	}
	return imp, true
}

func quotedModule(n *sitter.Node, source []byte) string {
	if src := n.ChildByFieldName("source"); src != nil {
		return strings.Trim(nodeText(src, source), "'\"`")
	}
	text := nodeText(n, source)
	start := strings.IndexAny(text, "'\"")
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(text[start+1:], text[start])
	if end < 0 {
		return ""
	}
	return text[start+1 : start+1+end]
}

func (e *tsExtractor) extractFunction(n, docAnchor *sitter.Node, exported bool) *Function {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	isAsync := hasChildType(n, "async")

	var sb strings.Builder
	if exported {
		sb.WriteString("export ")
	}
	if isAsync {
		sb.WriteString("async ")
	}
	sb.WriteString("function ")
	if hasChildType(n, "*") {
		sb.WriteString("*")
	}
	sb.WriteString(name)
	sb.WriteString(fieldText(n, "type_parameters", e.source))
	sb.WriteString(fieldText(n, "parameters", e.source))
	sb.WriteString(fieldText(n, "return_type", e.source))

	return &Function{
		Name:       name,
		Signature:  collapseWhitespace(sb.String()),
		Visibility: exportVisibility(exported),
		Location:   location(n),
		IsAsync:    isAsync,
		Doc:        e.doc(docAnchor),
	}
}

func (e *tsExtractor) extractClass(n, docAnchor *sitter.Node, exported bool) *Class {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	cls := &Class{
		Name:       name,
		Visibility: exportVisibility(exported),
		Location:   location(n),
		Doc:        e.doc(docAnchor),
	}
	for _, member := range children(n.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_definition", "abstract_method_signature", "method_signature":
			if m := e.extractMethod(member); m != nil && e.opts.keep(m.Visibility) {
				cls.Members = append(cls.Members, m)
			}
		}
	}
	return cls
}

func (e *tsExtractor) extractMethod(n *sitter.Node) *Function {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	isAsync := hasChildType(n, "async")

	var sb strings.Builder
	if hasChildType(n, "static") {
		sb.WriteString("static ")
	}
	if isAsync {
		sb.WriteString("async ")
	}
	for _, accessor := range []string{"get", "set"} {
		if hasChildType(n, accessor) {
			sb.WriteString(accessor + " ")
		}
	}
	sb.WriteString(name)
	sb.WriteString(fieldText(n, "type_parameters", e.source))
	sb.WriteString(fieldText(n, "parameters", e.source))
	sb.WriteString(fieldText(n, "return_type", e.source))

	return &Function{
		Name:       name,
		Signature:  collapseWhitespace(sb.String()),
		Visibility: accessibility(n, e.source),
		Location:   location(n),
		IsAsync:    isAsync,
		Doc:        e.doc(n),
	}
}

// extractInterface lists property and method signatures as members.
// Interfaces are Public regardless of export.
func (e *tsExtractor) extractInterface(n, docAnchor *sitter.Node) *Interface {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	iface := &Interface{
		Name:       name,
		Visibility: Public,
		Location:   location(n),
		Doc:        e.doc(docAnchor),
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		body = findChildByType(n, "object_type")
	}
	for _, member := range children(body) {
		switch member.Kind() {
		case "property_signature", "method_signature":
			text := collapseWhitespace(nodeText(member, e.source))
			iface.Members = append(iface.Members, strings.TrimRight(text, ",;"))
		}
	}
	return iface
}

func (e *tsExtractor) extractTypeAlias(n *sitter.Node) *TypeAlias {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	target := collapseWhitespace(fieldText(n, "value", e.source))
	if target == "" {
		if _, after, ok := strings.Cut(nodeText(n, e.source), "="); ok {
			target = collapseWhitespace(strings.TrimSuffix(strings.TrimSpace(after), ";"))
		}
	}
	return &TypeAlias{
		Name:       name,
		Target:     target,
		Visibility: Public,
		Location:   location(n),
	}
}

func (e *tsExtractor) extractEnum(n, docAnchor *sitter.Node, exported bool) *Enum {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	en := &Enum{
		Name:       name,
		Visibility: exportVisibility(exported),
		Location:   location(n),
		Doc:        e.doc(docAnchor),
	}
	for _, member := range children(n.ChildByFieldName("body")) {
		switch member.Kind() {
		case "property_identifier", "string":
			en.Variants = append(en.Variants, nodeText(member, e.source))
		case "enum_assignment":
			en.Variants = append(en.Variants, fieldText(member, "name", e.source))
		}
	}
	return en
}

// extractLexical turns `const name = (...) => ...` into a Function.
// Other variable declarations are not part of the codemap.
func (e *tsExtractor) extractLexical(n, docAnchor *sitter.Node, exported bool) {
	for _, declarator := range findChildrenByType(n, "variable_declarator") {
		value := declarator.ChildByFieldName("value")
		if value == nil || (value.Kind() != "arrow_function" && value.Kind() != "function_expression") {
			continue
		}
		name := fieldText(declarator, "name", e.source)
		if name == "" {
			continue
		}

		var sb strings.Builder
		if exported {
			sb.WriteString("export ")
		}
		sb.WriteString("const ")
		sb.WriteString(name)
		sb.WriteString(fieldText(declarator, "type", e.source))

		fn := &Function{
			Name:       name,
			Signature:  collapseWhitespace(sb.String()),
			Visibility: exportVisibility(exported),
			Location:   location(n),
			IsAsync:    hasChildType(value, "async"),
			Doc:        e.doc(docAnchor),
		}
		if e.opts.keep(fn.Visibility) {
			e.decls = append(e.decls, fn)
		}
	}
}

func (e *tsExtractor) doc(n *sitter.Node) string {
	if !e.opts.IncludeDocs {
		return ""
	}
	return precedingDoc(n, e.source, jsDocs)
}

func exportVisibility(exported bool) Visibility {
	if exported {
		return Public
	}
	return Private
}

// accessibility maps a class member's accessibility_modifier; members
// without one are Public.
func accessibility(n *sitter.Node, source []byte) Visibility {
	switch nodeText(findChildByType(n, "accessibility_modifier"), source) {
	case "private":
		return Private
	case "protected":
		return Protected
	}
	if name := n.ChildByFieldName("name"); name != nil && name.Kind() == "private_property_identifier" {
		return Private
	}
	return Public
}
