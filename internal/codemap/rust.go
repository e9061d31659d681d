package codemap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var rustDocs = docStyle{
	commentKinds: []string{"line_comment", "block_comment"},
	skipKinds:    []string{"attribute_item"},
	linePrefix:   "///",
	blockDocs:    true,
}

// rustExtractor walks a Rust syntax tree.
type rustExtractor struct {
	source  []byte
	opts    Options
	imports []Import
	decls   []Declaration
	blocks  []methodBlock
}

func extractRust(root *sitter.Node, source []byte, opts Options) ([]Import, []Declaration) {
	e := &rustExtractor{source: source, opts: opts}
	for _, child := range children(root) {
		e.visit(child)
	}
	return e.imports, mergeMethods(e.decls, e.blocks)
}

func (e *rustExtractor) visit(n *sitter.Node) {
	var d Declaration
	switch n.Kind() {
	case "use_declaration":
		if imp, ok := e.extractUse(n); ok {
			e.imports = append(e.imports, imp)
		}
		return
	case "function_item":
		if fn := e.extractFunction(n); fn != nil {
			d = fn
		}
	case "struct_item":
		if st := e.extractStruct(n); st != nil {
			d = st
		}
	case "enum_item":
		if en := e.extractEnum(n); en != nil {
			d = en
		}
	case "trait_item":
		if tr := e.extractTrait(n); tr != nil {
			d = tr
		}
	case "type_item":
		if ta := e.extractTypeAlias(n); ta != nil {
			d = ta
		}
	case "const_item", "static_item":
		if c := e.extractConst(n); c != nil {
			d = c
		}
	case "impl_item":
		if b, ok := e.extractImpl(n); ok {
			e.blocks = append(e.blocks, b)
		}
		return
	}
	if d != nil && e.opts.keep(d.DeclVisibility()) {
		e.decls = append(e.decls, d)
	}
}

// extractUse handles `use a::b::{c, d}`, `use a::b` and `use a`.
func (e *rustExtractor) extractUse(n *sitter.Node) (Import, bool) {
	text := fieldText(n, "argument", e.source)
	if text == "" {
		text = nodeText(n, e.source)
		if vis := findChildByType(n, "visibility_modifier"); vis != nil {
			text = strings.TrimPrefix(text, nodeText(vis, e.source))
		}
		text = strings.TrimSpace(text)
		text = strings.TrimPrefix(text, "use ")
		text = strings.TrimSuffix(text, ";")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Import{}, false
	}

	if open := strings.Index(text, "{"); open >= 0 {
		closing := strings.LastIndex(text, "}")
		if closing < open {
			return Import{Source: text}, true
		}
		source := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text[:open]), "::"))
		var items []string
		for _, item := range splitTopLevel(text[open+1 : closing]) {
			if item = collapseWhitespace(item); item != "" {
				items = append(items, item)
			}
		}
		return Import{Source: source, Items: items}, true
	}

	if i := strings.LastIndex(text, "::"); i >= 0 {
		return Import{Source: text[:i], Items: []string{strings.TrimSpace(text[i+2:])}}, true
	}
	return Import{Source: text}, true
}

// splitTopLevel splits on commas outside nested braces.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func (e *rustExtractor) extractFunction(n *sitter.Node) *Function {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	sig := signatureUntil(n, e.source, "block")
	isAsync := hasAsyncToken(nodeText(findChildByType(n, "function_modifiers"), e.source)) || hasAsyncToken(sig)

	return &Function{
		Name:       name,
		Signature:  sig,
		Visibility: rustVisibility(n, e.source),
		Location:   location(n),
		IsAsync:    isAsync,
		Doc:        e.doc(n),
	}
}

func (e *rustExtractor) extractStruct(n *sitter.Node) *Struct {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	s := &Struct{
		Name:       name,
		Visibility: rustVisibility(n, e.source),
		Location:   location(n),
		Doc:        e.doc(n),
	}
	body := n.ChildByFieldName("body")
	for _, fd := range findChildrenByType(body, "field_declaration") {
		f := Field{
			Name:       fieldText(fd, "name", e.source),
			Type:       collapseWhitespace(fieldText(fd, "type", e.source)),
			Visibility: rustVisibility(fd, e.source),
		}
		if f.Name == "" || !e.opts.keep(f.Visibility) {
			continue
		}
		s.Fields = append(s.Fields, f)
	}
	return s
}

func (e *rustExtractor) extractEnum(n *sitter.Node) *Enum {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	en := &Enum{
		Name:       name,
		Visibility: rustVisibility(n, e.source),
		Location:   location(n),
		Doc:        e.doc(n),
	}
	for _, v := range findChildrenByType(n.ChildByFieldName("body"), "enum_variant") {
		en.Variants = append(en.Variants, collapseWhitespace(nodeText(v, e.source)))
	}
	return en
}

func (e *rustExtractor) extractTrait(n *sitter.Node) *Trait {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	t := &Trait{
		Name:       name,
		Visibility: rustVisibility(n, e.source),
		Location:   location(n),
		Doc:        e.doc(n),
	}
	for _, item := range children(n.ChildByFieldName("body")) {
		switch item.Kind() {
		case "function_signature_item":
			sig := collapseWhitespace(nodeText(item, e.source))
			t.Methods = append(t.Methods, strings.TrimSuffix(sig, ";"))
		case "function_item":
			t.Methods = append(t.Methods, signatureUntil(item, e.source, "block"))
		}
	}
	return t
}

func (e *rustExtractor) extractTypeAlias(n *sitter.Node) *TypeAlias {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	target := collapseWhitespace(fieldText(n, "type", e.source))
	if target == "" {
		if _, after, ok := strings.Cut(nodeText(n, e.source), "="); ok {
			target = collapseWhitespace(strings.TrimSuffix(strings.TrimSpace(after), ";"))
		}
	}
	return &TypeAlias{
		Name:       name,
		Target:     target,
		Visibility: rustVisibility(n, e.source),
		Location:   location(n),
	}
}

func (e *rustExtractor) extractConst(n *sitter.Node) *Const {
	name := fieldText(n, "name", e.source)
	if name == "" {
		return nil
	}
	return &Const{
		Name:       name,
		Type:       collapseWhitespace(fieldText(n, "type", e.source)),
		Visibility: rustVisibility(n, e.source),
		Location:   location(n),
	}
}

// extractImpl collects the methods of an impl block for the merge pass.
func (e *rustExtractor) extractImpl(n *sitter.Node) (methodBlock, bool) {
	typeName := rustTypeName(n.ChildByFieldName("type"), e.source)
	if typeName == "" {
		return methodBlock{}, false
	}
	var methods []Declaration
	for _, item := range findChildrenByType(n.ChildByFieldName("body"), "function_item") {
		if fn := e.extractFunction(item); fn != nil && e.opts.keep(fn.Visibility) {
			methods = append(methods, fn)
		}
	}
	if len(methods) == 0 {
		return methodBlock{}, false
	}
	return methodBlock{typeName: typeName, methods: methods}, true
}

func (e *rustExtractor) doc(n *sitter.Node) string {
	if !e.opts.IncludeDocs {
		return ""
	}
	return precedingDoc(n, e.source, rustDocs)
}

// rustTypeName reduces `Foo<T>`, `crate::x::Foo` and `&Foo` to `Foo`.
func rustTypeName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "type_identifier":
		return nodeText(n, source)
	case "generic_type", "reference_type":
		return rustTypeName(n.ChildByFieldName("type"), source)
	case "scoped_type_identifier":
		return fieldText(n, "name", source)
	}
	return ""
}

// rustVisibility maps visibility_modifier: pub(crate) is Crate, any other
// pub form is Public.
func rustVisibility(n *sitter.Node, source []byte) Visibility {
	vis := findChildByType(n, "visibility_modifier")
	if vis == nil {
		return Private
	}
	text := strings.ReplaceAll(nodeText(vis, source), " ", "")
	switch {
	case strings.HasPrefix(text, "pub(crate)"):
		return Crate
	case strings.HasPrefix(text, "pub"):
		return Public
	}
	return Private
}
