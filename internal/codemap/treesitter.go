package codemap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// fieldText returns the text of the named field child, or "".
func fieldText(node *sitter.Node, field string, source []byte) string {
	return nodeText(node.ChildByFieldName(field), source)
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// children returns all direct children.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(uint(i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

func hasChildType(node *sitter.Node, nodeType string) bool {
	return findChildByType(node, nodeType) != nil
}

func location(node *sitter.Node) Location {
	return Location{
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}

// spanLocation covers from the start of first to the end of last.
func spanLocation(first, last *sitter.Node) Location {
	return Location{
		StartLine: int(first.StartPosition().Row) + 1,
		EndLine:   int(last.EndPosition().Row) + 1,
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// signatureUntil joins the texts of node's children up to the first child of
// one of the body kinds, then collapses whitespace. Parameter lists, type
// parameters and separators attach to the preceding token.
func signatureUntil(node *sitter.Node, source []byte, bodyKinds ...string) string {
	var sb strings.Builder
	for _, child := range children(node) {
		if isOneOf(child.Kind(), bodyKinds) {
			break
		}
		text := nodeText(child, source)
		if sb.Len() > 0 && !attachesLeft(text) {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return collapseWhitespace(sb.String())
}

func attachesLeft(text string) bool {
	return text != "" && strings.IndexByte(",)(<", text[0]) >= 0
}

func isOneOf(kind string, kinds []string) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// hasAsyncToken reports whether "async" appears as a standalone token.
func hasAsyncToken(signature string) bool {
	for _, f := range strings.FieldsFunc(signature, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == ','
	}) {
		if f == "async" {
			return true
		}
	}
	return false
}

// adjacent reports whether prev ends on the line directly above (or the same
// line as) next starts.
func adjacent(prev, next *sitter.Node) bool {
	return prev.EndPosition().Row+1 >= next.StartPosition().Row
}

// docStyle describes a language's doc-comment convention.
type docStyle struct {
	commentKinds []string
	skipKinds    []string // attributes that may sit between doc and item
	linePrefix   string   // "" disables line docs
	blockDocs    bool     // accept /** ... */
	stripStars   bool     // strip leading '*' on block doc lines
}

// precedingDoc scans contiguous comment siblings above node and returns the
// doc text, or "" when none matches the style.
func precedingDoc(node *sitter.Node, source []byte, style docStyle) string {
	var lines []string
	next := node
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if isOneOf(prev.Kind(), style.skipKinds) && len(lines) == 0 {
			next = prev
			continue
		}
		if !isOneOf(prev.Kind(), style.commentKinds) || !adjacent(prev, next) {
			break
		}
		text := strings.TrimSpace(nodeText(prev, source))

		if style.linePrefix != "" && strings.HasPrefix(text, style.linePrefix) && !strings.HasPrefix(text, "/*") {
			lines = append(lines, strings.TrimSpace(strings.TrimPrefix(text, style.linePrefix)))
			next = prev
			continue
		}
		if style.blockDocs && len(lines) == 0 && strings.HasPrefix(text, "/**") {
			return cleanBlockDoc(text, style.stripStars)
		}
		break
	}
	if len(lines) == 0 {
		return ""
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}

func cleanBlockDoc(text string, stripStars bool) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	if !stripStars {
		return strings.TrimSpace(inner)
	}
	var lines []string
	for _, line := range strings.Split(inner, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// firstErrorRow returns the 0-based row of the first ERROR or MISSING node.
func firstErrorRow(node *sitter.Node) (uint, bool) {
	if node == nil || !node.HasError() {
		return 0, false
	}
	if node.IsError() || node.IsMissing() {
		return node.StartPosition().Row, true
	}
	for _, child := range children(node) {
		if row, ok := firstErrorRow(child); ok {
			return row, true
		}
	}
	return node.StartPosition().Row, true
}
