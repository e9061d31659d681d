package codemap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// pythonExtractor walks a Python syntax tree. Methods are class members.
type pythonExtractor struct {
	source  []byte
	opts    Options
	imports []Import
	decls   []Declaration
}

func extractPython(root *sitter.Node, source []byte, opts Options) ([]Import, []Declaration) {
	e := &pythonExtractor{source: source, opts: opts}
	for _, child := range children(root) {
		switch child.Kind() {
		case "import_statement", "import_from_statement":
			e.imports = append(e.imports, e.extractImport(child))
		default:
			e.decls = e.appendDefinition(e.decls, child)
		}
	}
	return e.imports, e.decls
}

// appendDefinition appends the function or class defined by n, unwrapping
// decorators, when it survives filtering.
func (e *pythonExtractor) appendDefinition(decls []Declaration, n *sitter.Node) []Declaration {
	switch n.Kind() {
	case "function_definition":
		if fn := e.extractFunction(n); fn != nil && e.opts.keep(fn.Visibility) {
			decls = append(decls, fn)
		}
	case "class_definition":
		if cls := e.extractClass(n); cls != nil && e.opts.keep(cls.Visibility) {
			decls = append(decls, cls)
		}
	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil {
			return e.appendDefinition(decls, def)
		}
		for _, child := range children(n) {
			decls = e.appendDefinition(decls, child)
		}
	}
	return decls
}

// extractImport handles `import a.b` and `from a.b import c, d as e`.
// Wildcards and aliases are dropped from the item list.
func (e *pythonExtractor) extractImport(n *sitter.Node) Import {
	text := collapseWhitespace(nodeText(n, e.source))
	if n.Kind() != "import_from_statement" {
		return Import{Source: strings.TrimSpace(strings.TrimPrefix(text, "import "))}
	}

	from, names, _ := strings.Cut(text, " import ")
	imp := Import{Source: strings.TrimSpace(strings.TrimPrefix(from, "from "))}
	names = strings.Trim(strings.TrimSpace(names), "()")
	for _, item := range strings.Split(names, ",") {
		item, _, _ = strings.Cut(item, " as ")
		item = strings.TrimSpace(item)
		if item != "" && item != "*" {
			imp.Items = append(imp.Items, item)
		}
	}
	return imp
}

func (e *pythonExtractor) extractFunction(n *sitter.Node) *Function {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	isAsync := hasChildType(n, "async")

	var sb strings.Builder
	if isAsync {
		sb.WriteString("async ")
	}
	sb.WriteString("def ")
	sb.WriteString(name)
	sb.WriteString(fieldText(n, "parameters", e.source))
	if ret := fieldText(n, "return_type", e.source); ret != "" {
		sb.WriteString(" -> ")
		sb.WriteString(ret)
	}
	sig := collapseWhitespace(sb.String())

	return &Function{
		Name:       name,
		Signature:  sig,
		Visibility: pythonVisibility(name),
		Location:   location(n),
		IsAsync:    isAsync || hasAsyncToken(sig),
		Doc:        e.docstring(n),
	}
}

func (e *pythonExtractor) extractClass(n *sitter.Node) *Class {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	cls := &Class{
		Name:       name,
		Visibility: pythonVisibility(name),
		Location:   location(n),
		Doc:        e.docstring(n),
	}
	for _, child := range children(n.ChildByFieldName("body")) {
		cls.Members = e.appendDefinition(cls.Members, child)
	}
	return cls
}

// docstring returns the first string statement of the body, unquoted.
func (e *pythonExtractor) docstring(n *sitter.Node) string {
	if !e.opts.IncludeDocs {
		return ""
	}
	body := n.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	str := findChildByType(first, "string")
	if str == nil {
		return ""
	}
	return unquoteDocstring(nodeText(str, e.source))
}

func unquoteDocstring(text string) string {
	text = strings.TrimLeft(text, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return strings.TrimSpace(text[len(q) : len(text)-len(q)])
		}
	}
	return strings.TrimSpace(text)
}

// pythonVisibility applies the underscore convention: `__x` (not dunder) is
// Private, any other leading underscore (dunders included) is Protected,
// anything else Public.
func pythonVisibility(name string) Visibility {
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return Private
	case strings.HasPrefix(name, "_"):
		return Protected
	}
	return Public
}
