package codemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moradology/pith/internal/filter"
)

// Test Plan for Python extraction:
// - underscore convention: public_name / _protected_name / __private_name
// - dunder names are Protected and dropped from public-only output
// - import and from-import forms, aliases and wildcards dropped from items
// - async def detection and signature shape
// - classes carry methods as members, filtered by visibility
// - decorated functions and classes are unwrapped
// - docstrings are read from the first body statement
// - declarations keep source order across classes and functions

func TestPython_UnderscoreConvention(t *testing.T) {
	t.Parallel()

	src := `def public_name():
    pass

def _protected_name():
    pass

def __private_name():
    pass

def __dunder__():
    pass
`
	cm := extractText(t, filter.Python, src, Options{IncludePrivate: true})
	require.Len(t, cm.Declarations, 4)
	assert.Equal(t, Public, cm.Declarations[0].DeclVisibility())
	assert.Equal(t, Protected, cm.Declarations[1].DeclVisibility())
	assert.Equal(t, Private, cm.Declarations[2].DeclVisibility())
	assert.Equal(t, Protected, cm.Declarations[3].DeclVisibility())

	public := extractText(t, filter.Python, src, Options{})
	require.Len(t, public.Declarations, 1)
	assert.Equal(t, "public_name", public.Declarations[0].DeclName())
}

func TestPython_OrderPreserved(t *testing.T) {
	t.Parallel()

	src := `class Beta:
    pass

def alpha():
    pass

@cached
def gamma():
    pass

class Delta:
    pass
`
	cm := extractText(t, filter.Python, src, Options{})
	names := make([]string, 0, len(cm.Declarations))
	for _, d := range cm.Declarations {
		names = append(names, d.DeclName())
	}
	assert.Equal(t, []string{"Beta", "alpha", "gamma", "Delta"}, names)
}

func TestPython_Imports(t *testing.T) {
	t.Parallel()

	src := `from typing import List, Optional as Opt
import os
from .utils import *
`
	cm := extractText(t, filter.Python, src, Options{})
	require.Len(t, cm.Imports, 3)
	assert.Equal(t, Import{Source: "typing", Items: []string{"List", "Optional"}}, cm.Imports[0])
	assert.Equal(t, Import{Source: "os"}, cm.Imports[1])
	assert.Equal(t, Import{Source: ".utils"}, cm.Imports[2])
}

func TestPython_SingleNamedImport(t *testing.T) {
	t.Parallel()

	cm := extractText(t, filter.Python, "from collections import OrderedDict\n", Options{})
	require.Len(t, cm.Imports, 1)
	assert.Equal(t, "collections", cm.Imports[0].Source)
	assert.Equal(t, []string{"OrderedDict"}, cm.Imports[0].Items)
}

func TestPython_AsyncFunction(t *testing.T) {
	t.Parallel()

	src := `async def fetch(url: str) -> bytes:
    pass
`
	cm := extractText(t, filter.Python, src, Options{})
	require.Len(t, cm.Declarations, 1)
	fn := cm.Declarations[0].(*Function)
	assert.True(t, fn.IsAsync)
	assert.Equal(t, "async def fetch(url: str) -> bytes", fn.Signature)
}

func TestPython_ClassMembers(t *testing.T) {
	t.Parallel()

	src := `class Handler:
    """Handle requests."""

    def __init__(self, config):
        self.config = config

    def _helper(self):
        pass

    @staticmethod
    def build():
        pass
`
	cm := extractText(t, filter.Python, src, Options{IncludeDocs: true})
	require.Len(t, cm.Declarations, 1)

	cls, ok := cm.Declarations[0].(*Class)
	require.True(t, ok)
	assert.Equal(t, "Handler", cls.Name)
	assert.Equal(t, "Handle requests.", cls.Doc)
	require.Len(t, cls.Members, 1)
	assert.Equal(t, "build", cls.Members[0].DeclName())

	all := extractText(t, filter.Python, src, Options{IncludePrivate: true})
	require.Len(t, all.Declarations, 1)
	members := all.Declarations[0].(*Class).Members
	require.Len(t, members, 3)
	assert.Equal(t, "__init__", members[0].DeclName())
	assert.Equal(t, Protected, members[0].DeclVisibility())
	assert.Equal(t, "_helper", members[1].DeclName())
	assert.Equal(t, "build", members[2].DeclName())
}

func TestPython_DecoratedAndDocstring(t *testing.T) {
	t.Parallel()

	src := `@app.route("/")
def index():
    '''Serve the index.'''
    return "ok"
`
	cm := extractText(t, filter.Python, src, Options{IncludeDocs: true})
	require.Len(t, cm.Declarations, 1)
	fn := cm.Declarations[0].(*Function)
	assert.Equal(t, "index", fn.Name)
	assert.Equal(t, "Serve the index.", fn.Doc)
}
