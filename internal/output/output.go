package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/moradology/pith/internal/codemap"
	"github.com/moradology/pith/internal/tree"
)

// maxSettleIterations bounds the search for a self-consistent summary total.
const maxSettleIterations = 10

// TokenCounter counts tokens in text. *tokens.Counter satisfies it.
type TokenCounter interface {
	Count(text string) int
}

// SelectedFile is a file whose full content is included.
type SelectedFile struct {
	Path    string
	Content string
	Lines   int
	Tokens  int
}

// NewSelectedFile counts lines and tokens of content.
func NewSelectedFile(path, content string, counter TokenCounter) SelectedFile {
	return SelectedFile{
		Path:    path,
		Content: content,
		Lines:   CountLines(content),
		Tokens:  counter.Count(content),
	}
}

// CountLines counts lines the way an editor would: a trailing newline does not
// start a new line and empty content has none.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// Input is everything a document can contain.
type Input struct {
	Tree     *tree.Node
	Codemaps []*codemap.Codemap
	Selected []SelectedFile
}

// FileTokens is the per-file entry of the summary.
type FileTokens struct {
	Tokens     int  `json:"tokens"`
	Selected   bool `json:"selected"`
	HasCodemap bool `json:"has_codemap"`
}

// Summary is the token accounting of one document. TotalTokens is the token
// count of the complete document, summary included.
type Summary struct {
	TotalTokens    int                   `json:"total_tokens"`
	TreeTokens     int                   `json:"tree_tokens"`
	CodemapTokens  int                   `json:"codemap_tokens"`
	SelectedTokens int                   `json:"selected_tokens"`
	Files          map[string]FileTokens `json:"file_breakdown"`
}

// Result is a rendered document. Summary is nil when no summary was requested.
type Result struct {
	Document string
	Summary  *Summary
}

// Render assembles the document in the requested format.
func Render(in Input, opts Options, counter TokenCounter) (*Result, error) {
	switch opts.Format {
	case FormatJSON:
		return renderJSON(in, opts, counter)
	default:
		return renderXML(in, opts, counter), nil
	}
}

// settle finds a total such that rendering the summary with it makes
// body+summary exactly total tokens long. It gives up after
// maxSettleIterations and returns the last candidate.
func settle(body string, counter TokenCounter, render func(total int) string) (string, int) {
	total := 0
	for range maxSettleIterations {
		candidate := render(total)
		n := counter.Count(body + candidate)
		if n == total {
			return candidate, total
		}
		total = n
	}
	return render(total), total
}

func count(counter TokenCounter, text string) int {
	if text == "" {
		return 0
	}
	return counter.Count(text)
}

func pathSets(in Input) (selected, mapped map[string]bool) {
	selected = make(map[string]bool, len(in.Selected))
	for _, f := range in.Selected {
		selected[f.Path] = true
	}
	mapped = make(map[string]bool, len(in.Codemaps))
	for _, cm := range in.Codemaps {
		mapped[cm.Path] = true
	}
	return selected, mapped
}

// breakdown measures each file's emitted blocks. A file that is both selected
// and mapped is charged for both of its blocks.
func breakdown(in Input, opts Options, counter TokenCounter,
	codemapBlock func(*codemap.Codemap) (string, error),
	selectedBlock func(SelectedFile) (string, error),
) (map[string]FileTokens, error) {
	files := make(map[string]FileTokens)
	if opts.IncludeCodemaps {
		for _, cm := range in.Codemaps {
			block, err := codemapBlock(cm)
			if err != nil {
				return nil, err
			}
			ft := files[cm.Path]
			ft.Tokens += count(counter, block)
			ft.HasCodemap = true
			files[cm.Path] = ft
		}
	}
	if opts.IncludeSelected {
		for _, f := range in.Selected {
			block, err := selectedBlock(f)
			if err != nil {
				return nil, err
			}
			ft := files[f.Path]
			ft.Tokens += count(counter, block)
			ft.Selected = true
			files[f.Path] = ft
		}
	}
	return files, nil
}

// ---- XML ----

func renderXML(in Input, opts Options, counter TokenCounter) *Result {
	var treeSection, codemapSection, selectedSection string

	if opts.IncludeTree && in.Tree != nil {
		treeSection = xmlTreeSection(in)
	}
	if opts.IncludeCodemaps && len(in.Codemaps) > 0 {
		var sb strings.Builder
		sb.WriteString("<codemaps>\n")
		for i, cm := range in.Codemaps {
			if i > 0 {
				sb.WriteString("\n---\n\n")
			}
			sb.WriteString(RenderCodemap(cm, opts.PublicOnly))
		}
		sb.WriteString("</codemaps>\n\n")
		codemapSection = sb.String()
	}
	if opts.IncludeSelected && len(in.Selected) > 0 {
		var sb strings.Builder
		sb.WriteString("<selected_files>\n")
		for _, f := range in.Selected {
			sb.WriteString(selectedBlockXML(f))
		}
		sb.WriteString("</selected_files>\n\n")
		selectedSection = sb.String()
	}

	body := treeSection + codemapSection + selectedSection
	if !opts.IncludeSummary {
		return &Result{Document: body}
	}

	files, _ := breakdown(in, opts, counter,
		func(cm *codemap.Codemap) (string, error) { return RenderCodemap(cm, opts.PublicOnly), nil },
		func(f SelectedFile) (string, error) { return selectedBlockXML(f), nil },
	)
	summary := &Summary{
		TreeTokens:     count(counter, treeSection),
		CodemapTokens:  count(counter, codemapSection),
		SelectedTokens: count(counter, selectedSection),
		Files:          files,
	}

	section, total := settle(body, counter, func(total int) string {
		s := *summary
		s.TotalTokens = total
		return xmlSummarySection(&s)
	})
	summary.TotalTokens = total
	return &Result{Document: body + section, Summary: summary}
}

func xmlTreeSection(in Input) string {
	selected, mapped := pathSets(in)
	opts := tree.WithMetadata()
	opts.Selected = selected
	opts.HasCodemap = mapped

	var sb strings.Builder
	sb.WriteString("<file_map>\n")
	sb.WriteString(tree.Render(in.Tree, opts))
	if len(in.Selected) > 0 || len(in.Codemaps) > 0 {
		sb.WriteString("\nLegend: * = selected, + = has codemap\n")
	}
	sb.WriteString("</file_map>\n\n")
	return sb.String()
}

func selectedBlockXML(f SelectedFile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s (%s lines, %s tokens) ---\n",
		f.Path, tree.FormatNumber(f.Lines), tree.FormatNumber(f.Tokens))
	sb.WriteString(f.Content)
	if !strings.HasSuffix(f.Content, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func xmlSummarySection(s *Summary) string {
	var sb strings.Builder
	sb.WriteString("<token_summary>\n")
	fmt.Fprintf(&sb, "Total: %s tokens\n", tree.FormatNumber(s.TotalTokens))

	if s.TreeTokens > 0 || s.CodemapTokens > 0 || s.SelectedTokens > 0 {
		sb.WriteString("\nComponent breakdown:\n")
		if s.TreeTokens > 0 {
			fmt.Fprintf(&sb, "- File tree: %s tokens\n", tree.FormatNumber(s.TreeTokens))
		}
		if s.CodemapTokens > 0 {
			fmt.Fprintf(&sb, "- Codemaps: %s tokens\n", tree.FormatNumber(s.CodemapTokens))
		}
		if s.SelectedTokens > 0 {
			fmt.Fprintf(&sb, "- Selected files: %s tokens\n", tree.FormatNumber(s.SelectedTokens))
		}
	}

	if len(s.Files) > 0 {
		sb.WriteString("\nPer-file breakdown:\n")
		paths := make([]string, 0, len(s.Files))
		for p := range s.Files {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			info := s.Files[p]
			fmt.Fprintf(&sb, "- %s: %s tokens%s\n", p, tree.FormatNumber(info.Tokens), fileMarkers(info))
		}
	}

	sb.WriteString("</token_summary>\n")
	return sb.String()
}

func fileMarkers(info FileTokens) string {
	switch {
	case info.Selected && info.HasCodemap:
		return " (selected, codemap)"
	case info.Selected:
		return " (selected)"
	case info.HasCodemap:
		return " (codemap only)"
	}
	return ""
}

// ---- JSON ----

// The JSON document is assembled member by member so that every block the
// summary measures is a verbatim slice of the emitted text. Members sit at
// depth one ("  "), array elements at depth two ("    ").
const (
	memberIndent  = "  "
	elementIndent = "    "
)

// MarshalJSON renders v as two-space indented JSON without HTML escaping,
// ending in a newline.
func MarshalJSON(v any) (string, error) {
	text, err := marshalNested(v, "")
	if err != nil {
		return "", err
	}
	return text + "\n", nil
}

// marshalNested renders v as it appears nested under prefix: every line after
// the first carries prefix, and there is no trailing newline.
func marshalNested(v any, prefix string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// jsonElement renders one array element exactly as emitted, indentation included.
func jsonElement(v any) (string, error) {
	text, err := marshalNested(v, elementIndent)
	if err != nil {
		return "", err
	}
	return elementIndent + text, nil
}

func jsonMember(name string, v any) (string, error) {
	text, err := marshalNested(v, memberIndent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%q: %s", memberIndent, name, text), nil
}

func jsonArrayMember(name string, elements []string) string {
	return fmt.Sprintf("%s%q: [\n%s\n%s]", memberIndent, name, strings.Join(elements, ",\n"), memberIndent)
}

func jsonObject(members []string) string {
	if len(members) == 0 {
		return "{}\n"
	}
	return "{\n" + strings.Join(members, ",\n") + "\n}\n"
}

func renderJSON(in Input, opts Options, counter TokenCounter) (*Result, error) {
	var treeMember, codemapMember, selectedMember string
	codemapBlocks := make(map[*codemap.Codemap]string)
	selectedBlocks := make(map[string]string)

	if opts.IncludeTree && in.Tree != nil {
		selected, mapped := pathSets(in)
		member, err := jsonMember("tree", tree.ToRecord(in.Tree, selected, mapped))
		if err != nil {
			return nil, err
		}
		treeMember = member
	}
	if opts.IncludeCodemaps && len(in.Codemaps) > 0 {
		elements := make([]string, 0, len(in.Codemaps))
		for _, cm := range in.Codemaps {
			block, err := jsonElement(ToCodemapRecord(cm, opts.PublicOnly))
			if err != nil {
				return nil, err
			}
			codemapBlocks[cm] = block
			elements = append(elements, block)
		}
		codemapMember = jsonArrayMember("codemaps", elements)
	}
	if opts.IncludeSelected && len(in.Selected) > 0 {
		elements := make([]string, 0, len(in.Selected))
		for _, f := range in.Selected {
			block, err := jsonElement(toSelectedRecord(f))
			if err != nil {
				return nil, err
			}
			selectedBlocks[f.Path] = block
			elements = append(elements, block)
		}
		selectedMember = jsonArrayMember("selected_files", elements)
	}

	var members []string
	for _, m := range []string{treeMember, codemapMember, selectedMember} {
		if m != "" {
			members = append(members, m)
		}
	}

	if !opts.IncludeSummary {
		return &Result{Document: jsonObject(members)}, nil
	}

	files, _ := breakdown(in, opts, counter,
		func(cm *codemap.Codemap) (string, error) { return codemapBlocks[cm], nil },
		func(f SelectedFile) (string, error) { return selectedBlocks[f.Path], nil },
	)
	summary := &Summary{
		TreeTokens:     count(counter, treeMember),
		CodemapTokens:  count(counter, codemapMember),
		SelectedTokens: count(counter, selectedMember),
		Files:          files,
	}

	var renderErr error
	text, total := settle("", counter, func(total int) string {
		s := *summary
		s.TotalTokens = total
		member, err := jsonMember("summary", &s)
		if err != nil {
			renderErr = err
		}
		return jsonObject(append(members[:len(members):len(members)], member))
	})
	if renderErr != nil {
		return nil, renderErr
	}
	summary.TotalTokens = total
	return &Result{Document: text, Summary: summary}, nil
}
