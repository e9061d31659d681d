package builder

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moradology/pith/internal/output"
)

// Test Plan for Documents:
// - CodemapDocument renders codemaps and a summary but no tree
// - ContextDocument omits the selected section when nothing is selected
// - ContextDocument includes selected files when a glob matches
// - private declarations are hidden unless extraction keeps them
// - JSON documents parse and carry a summary total

func TestCodemapDocument(t *testing.T) {
	t.Parallel()

	res, err := newBuilder(t, DefaultOptions()).CodemapDocument(context.Background(), sampleProject(t), output.FormatXML)
	require.NoError(t, err)

	assert.NotContains(t, res.Document, "<file_map>")
	assert.Contains(t, res.Document, "<codemaps>")
	assert.Contains(t, res.Document, "<token_summary>")
	require.NotNil(t, res.Summary)
	assert.Zero(t, res.Summary.TreeTokens)
}

func TestContextDocument_NoSelection(t *testing.T) {
	t.Parallel()

	res, err := newBuilder(t, DefaultOptions()).ContextDocument(context.Background(), sampleProject(t), output.FormatXML)
	require.NoError(t, err)

	assert.Contains(t, res.Document, "<file_map>")
	assert.Contains(t, res.Document, "<codemaps>")
	assert.NotContains(t, res.Document, "<selected_files>")
}

func TestContextDocument_Selection(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Select = []string{"README.md"}
	res, err := newBuilder(t, opts).ContextDocument(context.Background(), sampleProject(t), output.FormatXML)
	require.NoError(t, err)

	assert.Contains(t, res.Document, "<selected_files>")
	assert.Contains(t, res.Document, "# Demo")
	assert.Positive(t, res.Summary.SelectedTokens)
}

func TestCodemapDocument_Visibility(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"lib.rs": "pub fn visible() {}\nfn hidden() {}\n",
	})

	res, err := newBuilder(t, DefaultOptions()).CodemapDocument(context.Background(), root, output.FormatXML)
	require.NoError(t, err)
	assert.Contains(t, res.Document, "visible")
	assert.NotContains(t, res.Document, "hidden")

	opts := DefaultOptions()
	opts.Extract.IncludePrivate = true
	res, err = newBuilder(t, opts).CodemapDocument(context.Background(), root, output.FormatXML)
	require.NoError(t, err)
	assert.Contains(t, res.Document, "hidden")
}

func TestContextDocument_JSON(t *testing.T) {
	t.Parallel()

	res, err := newBuilder(t, DefaultOptions()).ContextDocument(context.Background(), sampleProject(t), output.FormatJSON)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Document), &doc))
	assert.Contains(t, doc, "tree")
	assert.Contains(t, doc, "codemaps")
	assert.NotContains(t, doc, "selected_files")

	summary, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, res.Summary.TotalTokens, summary["total_tokens"])
}
