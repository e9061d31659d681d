package codemap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var goDocs = docStyle{
	commentKinds: []string{"comment"},
	linePrefix:   "//",
}

// goExtractor walks a Go syntax tree. Receiver methods stay top level in
// source order since their type may be declared in another file.
type goExtractor struct {
	source  []byte
	opts    Options
	imports []Import
	decls   []Declaration
}

func extractGo(root *sitter.Node, source []byte, opts Options) ([]Import, []Declaration) {
	e := &goExtractor{source: source, opts: opts}
	for _, child := range children(root) {
		e.visit(child)
	}
	return e.imports, e.decls
}

func (e *goExtractor) visit(n *sitter.Node) {
	switch n.Kind() {
	case "import_declaration":
		e.extractImports(n)
	case "function_declaration":
		if fn := e.extractFunction(n); fn != nil {
			e.add(fn)
		}
	case "method_declaration":
		if fn := e.extractMethod(n); fn != nil {
			e.add(fn)
		}
	case "type_declaration":
		e.extractTypes(n)
	case "const_declaration", "var_declaration":
		e.extractValues(n)
	}
}

func (e *goExtractor) add(d Declaration) {
	if e.opts.keep(d.DeclVisibility()) {
		e.decls = append(e.decls, d)
	}
}

func (e *goExtractor) extractImports(n *sitter.Node) {
	specs := findChildrenByType(n, "import_spec")
	if list := findChildByType(n, "import_spec_list"); list != nil {
		specs = findChildrenByType(list, "import_spec")
	}
	for _, spec := range specs {
		path := fieldText(spec, "path", e.source)
		if path == "" {
			path = nodeText(findChildByType(spec, "interpreted_string_literal"), e.source)
		}
		path = strings.Trim(path, "\"`")
		if path != "" {
			e.imports = append(e.imports, Import{Source: path})
		}
	}
}

func (e *goExtractor) extractFunction(n *sitter.Node) *Function {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("func ")
	sb.WriteString(name)
	sb.WriteString(fieldText(n, "type_parameters", e.source))
	sb.WriteString(fieldText(n, "parameters", e.source))
	if result := fieldText(n, "result", e.source); result != "" {
		sb.WriteByte(' ')
		sb.WriteString(result)
	}
	return &Function{
		Name:       name,
		Signature:  collapseWhitespace(sb.String()),
		Visibility: goVisibility(name),
		Location:   location(n),
		Doc:        e.doc(n),
	}
}

// extractMethod keeps the receiver in the signature.
func (e *goExtractor) extractMethod(n *sitter.Node) *Function {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	receiver := n.ChildByFieldName("receiver")

	var sb strings.Builder
	sb.WriteString("func ")
	if receiver != nil {
		sb.WriteString(nodeText(receiver, e.source))
		sb.WriteByte(' ')
	}
	sb.WriteString(name)
	sb.WriteString(fieldText(n, "parameters", e.source))
	if result := fieldText(n, "result", e.source); result != "" {
		sb.WriteByte(' ')
		sb.WriteString(result)
	}

	return &Function{
		Name:       name,
		Signature:  collapseWhitespace(sb.String()),
		Visibility: goVisibility(name),
		Location:   location(n),
		Doc:        e.doc(n),
	}
}

func (e *goExtractor) extractTypes(n *sitter.Node) {
	for _, child := range children(n) {
		var d Declaration
		switch child.Kind() {
		case "type_spec":
			d = e.extractTypeSpec(child, n)
		case "type_alias":
			if ta := e.extractTypeAlias(child); ta != nil {
				d = ta
			}
		}
		if d != nil {
			e.add(d)
		}
	}
}

// extractTypeSpec handles struct, interface and named types. decl is the
// enclosing type_declaration, used for docs on ungrouped specs.
func (e *goExtractor) extractTypeSpec(spec, decl *sitter.Node) Declaration {
	name := fieldText(spec, "name", e.source)
	if name == "" {
		return nil
	}
	typeNode := spec.ChildByFieldName("type")
	vis := goVisibility(name)
	loc := location(spec)
	doc := e.specDoc(spec, decl)

	switch {
	case typeNode != nil && typeNode.Kind() == "struct_type":
		return &Struct{
			Name:       name,
			Fields:     e.extractFields(typeNode),
			Visibility: vis,
			Location:   loc,
			Doc:        doc,
		}
	case typeNode != nil && typeNode.Kind() == "interface_type":
		iface := &Interface{Name: name, Visibility: vis, Location: loc, Doc: doc}
		for _, m := range children(typeNode) {
			switch m.Kind() {
			case "method_elem", "method_spec", "type_elem", "constraint_elem":
				iface.Members = append(iface.Members, collapseWhitespace(nodeText(m, e.source)))
			}
		}
		return iface
	}

	target := collapseWhitespace(nodeText(typeNode, e.source))
	if tp := fieldText(spec, "type_parameters", e.source); tp != "" {
		target = collapseWhitespace(tp + " " + target)
	}
	return &TypeAlias{Name: name, Target: target, Visibility: vis, Location: loc}
}

func (e *goExtractor) extractTypeAlias(n *sitter.Node) *TypeAlias {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	return &TypeAlias{
		Name:       name,
		Target:     collapseWhitespace(fieldText(n, "type", e.source)),
		Visibility: goVisibility(name),
		Location:   location(n),
	}
}

func (e *goExtractor) extractFields(structType *sitter.Node) []Field {
	list := findChildByType(structType, "field_declaration_list")
	var fields []Field
	for _, fd := range findChildrenByType(list, "field_declaration") {
		typeText := collapseWhitespace(fieldText(fd, "type", e.source))
		names := fieldNames(fd, e.source)
		if len(names) == 0 {
			// embedded field
			if hasChildType(fd, "*") {
				typeText = "*" + typeText
			}
			embedded := strings.TrimLeft(typeText, "*")
			if i := strings.LastIndexByte(embedded, '.'); i >= 0 {
				embedded = embedded[i+1:]
			}
			names = []string{embedded}
		}
		for _, name := range names {
			f := Field{Name: name, Type: typeText, Visibility: goVisibility(name)}
			if e.opts.keep(f.Visibility) {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

func fieldNames(fd *sitter.Node, source []byte) []string {
	var names []string
	for _, id := range findChildrenByType(fd, "field_identifier") {
		names = append(names, nodeText(id, source))
	}
	return names
}

// extractValues emits one Const per name in const and var specs.
func (e *goExtractor) extractValues(n *sitter.Node) {
	for _, child := range children(n) {
		switch child.Kind() {
		case "var_spec_list":
			e.extractValues(child)
		case "const_spec", "var_spec":
			typeText := collapseWhitespace(fieldText(child, "type", e.source))
			for _, id := range findChildrenByType(child, "identifier") {
				name := nodeText(id, e.source)
				if name == "_" {
					continue
				}
				e.add(&Const{
					Name:       name,
					Type:       typeText,
					Visibility: goVisibility(name),
					Location:   location(child),
				})
			}
		}
	}
}

func (e *goExtractor) doc(n *sitter.Node) string {
	if !e.opts.IncludeDocs {
		return ""
	}
	return precedingDoc(n, e.source, goDocs)
}

// specDoc reads the doc above a spec, or above its declaration when the spec
// is not inside a group.
func (e *goExtractor) specDoc(spec, decl *sitter.Node) string {
	if !e.opts.IncludeDocs {
		return ""
	}
	if prev := spec.PrevSibling(); prev != nil && prev.Kind() == "type" {
		return precedingDoc(decl, e.source, goDocs)
	}
	return precedingDoc(spec, e.source, goDocs)
}

func goVisibility(name string) Visibility {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return Public
	}
	return Private
}
