package output

import (
	"fmt"
	"strings"

	"github.com/moradology/pith/internal/codemap"
)

const indentUnit = "    "

// RenderCodemap renders one codemap block of the XML document.
func RenderCodemap(cm *codemap.Codemap, publicOnly bool) string {
	var sb strings.Builder
	sb.Grow(2048)

	fmt.Fprintf(&sb, "## %s\n\n", cm.Path)
	if cm.ParseError != "" {
		fmt.Fprintf(&sb, "**Parse error:** %s\n\n", cm.ParseError)
	}

	if len(cm.Imports) > 0 {
		sb.WriteString("### Imports\n")
		for _, imp := range cm.Imports {
			if len(imp.Items) == 0 {
				fmt.Fprintf(&sb, "- use %s\n", imp.Source)
			} else {
				fmt.Fprintf(&sb, "- use %s::{%s}\n", imp.Source, strings.Join(imp.Items, ", "))
			}
		}
		sb.WriteByte('\n')
	}

	decls := visible(cm.Declarations, publicOnly)
	if len(decls) > 0 {
		sb.WriteString("### Declarations\n\n")
		for _, d := range decls {
			renderDeclaration(&sb, d, publicOnly, 0)
		}
	}
	return sb.String()
}

func renderDeclaration(sb *strings.Builder, d codemap.Declaration, publicOnly bool, depth int) {
	p := strings.Repeat(indentUnit, depth)

	switch v := d.(type) {
	case *codemap.Function:
		fmt.Fprintf(sb, "%s#### %s (%s)\n", p, v.Signature, formatLocation(v.Location))
		writeDoc(sb, p, v.Doc)
		sb.WriteByte('\n')

	case *codemap.Struct:
		fmt.Fprintf(sb, "%s#### struct %s (%s)\n", p, v.Name, formatLocation(v.Location))
		writeDoc(sb, p, v.Doc)
		if fields := visibleFields(v.Fields, publicOnly); len(fields) > 0 {
			fmt.Fprintf(sb, "%sFields:\n", p)
			for _, f := range fields {
				vis := ""
				if f.Visibility == codemap.Public {
					vis = "pub "
				}
				fmt.Fprintf(sb, "%s- %s%s: %s\n", p, vis, f.Name, f.Type)
			}
		}
		if methods := visible(v.Methods, publicOnly); len(methods) > 0 {
			fmt.Fprintf(sb, "%sMethods:\n", p)
			for _, m := range methods {
				if fn, ok := m.(*codemap.Function); ok {
					fmt.Fprintf(sb, "%s- %s (%s)\n", p, fn.Signature, formatLocation(fn.Location))
				}
			}
		}
		sb.WriteByte('\n')

	case *codemap.Enum:
		fmt.Fprintf(sb, "%s#### enum %s (%s)\n", p, v.Name, formatLocation(v.Location))
		writeDoc(sb, p, v.Doc)
		fmt.Fprintf(sb, "%sVariants: %s\n\n", p, strings.Join(v.Variants, ", "))

	case *codemap.Trait:
		fmt.Fprintf(sb, "%s#### trait %s (%s)\n", p, v.Name, formatLocation(v.Location))
		writeDoc(sb, p, v.Doc)
		writeList(sb, p, "Methods:", v.Methods)
		sb.WriteByte('\n')

	case *codemap.TypeAlias:
		fmt.Fprintf(sb, "%s#### type %s = %s (%s)\n\n", p, v.Name, v.Target, formatLocation(v.Location))

	case *codemap.Const:
		fmt.Fprintf(sb, "%s#### const %s: %s (%s)\n\n", p, v.Name, v.Type, formatLocation(v.Location))

	case *codemap.Interface:
		fmt.Fprintf(sb, "%s#### interface %s (%s)\n", p, v.Name, formatLocation(v.Location))
		writeDoc(sb, p, v.Doc)
		writeList(sb, p, "Members:", v.Members)
		sb.WriteByte('\n')

	case *codemap.Class:
		fmt.Fprintf(sb, "%s#### class %s (%s)\n", p, v.Name, formatLocation(v.Location))
		writeDoc(sb, p, v.Doc)
		for _, m := range visible(v.Members, publicOnly) {
			renderDeclaration(sb, m, publicOnly, depth+1)
		}
	}
}

func writeDoc(sb *strings.Builder, prefix, doc string) {
	if doc != "" {
		fmt.Fprintf(sb, "%s%s\n", prefix, doc)
	}
}

func writeList(sb *strings.Builder, prefix, header string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s%s\n", prefix, header)
	for _, item := range items {
		fmt.Fprintf(sb, "%s- %s\n", prefix, item)
	}
}

func formatLocation(loc codemap.Location) string {
	if loc.SingleLine() {
		return fmt.Sprintf("line %d", loc.StartLine)
	}
	return fmt.Sprintf("lines %d-%d", loc.StartLine, loc.EndLine)
}

func visible(decls []codemap.Declaration, publicOnly bool) []codemap.Declaration {
	if !publicOnly {
		return decls
	}
	var out []codemap.Declaration
	for _, d := range decls {
		if codemap.IsPublic(d) {
			out = append(out, d)
		}
	}
	return out
}

func visibleFields(fields []codemap.Field, publicOnly bool) []codemap.Field {
	if !publicOnly {
		return fields
	}
	var out []codemap.Field
	for _, f := range fields {
		if f.Visibility == codemap.Public {
			out = append(out, f)
		}
	}
	return out
}
