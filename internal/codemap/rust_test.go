package codemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moradology/pith/internal/filter"
)

// Test Plan for Rust extraction:
// - use declarations: braced lists, single paths and bare crates
// - pub / pub(crate) / private visibility and public-only filtering
// - struct fields filtered by visibility
// - impl blocks merge into their struct, or stand alone when the type is elsewhere
// - async detection, enums, traits, type aliases, consts
// - /// docs concatenated in order, attributes between doc and item skipped
// - declarations keep source order regardless of kind

func extractText(t *testing.T, lang filter.Language, src string, opts Options) *Codemap {
	t.Helper()
	cm := ExtractSource("test", lang, []byte(src), opts)
	require.NotNil(t, cm)
	return cm
}

func TestRust_Imports(t *testing.T) {
	t.Parallel()

	src := `use std::collections::{HashMap, HashSet};
use std::io::Read;
use serde;
`
	cm := extractText(t, filter.Rust, src, Options{})
	require.Len(t, cm.Imports, 3)

	assert.Equal(t, Import{Source: "std::collections", Items: []string{"HashMap", "HashSet"}}, cm.Imports[0])
	assert.Equal(t, Import{Source: "std::io", Items: []string{"Read"}}, cm.Imports[1])
	assert.Equal(t, "serde", cm.Imports[2].Source)
	assert.Empty(t, cm.Imports[2].Items)
}

func TestRust_SingleNamedImport(t *testing.T) {
	t.Parallel()

	cm := extractText(t, filter.Rust, "use crate::config::Config;\n", Options{})
	require.Len(t, cm.Imports, 1)
	assert.Equal(t, "crate::config", cm.Imports[0].Source)
	assert.Equal(t, []string{"Config"}, cm.Imports[0].Items)
}

func TestRust_Visibility(t *testing.T) {
	t.Parallel()

	src := `pub fn public() {}
pub(crate) fn crate_only() {}
fn private() {}
`
	all := extractText(t, filter.Rust, src, Options{IncludePrivate: true})
	require.Len(t, all.Declarations, 3)
	assert.Equal(t, Public, all.Declarations[0].DeclVisibility())
	assert.Equal(t, Crate, all.Declarations[1].DeclVisibility())
	assert.Equal(t, Private, all.Declarations[2].DeclVisibility())

	public := extractText(t, filter.Rust, src, Options{})
	require.Len(t, public.Declarations, 1)
	assert.Equal(t, "public", public.Declarations[0].DeclName())
}

func TestRust_StructFieldFiltering(t *testing.T) {
	t.Parallel()

	src := `pub struct User {
    pub name: String,
    secret: String,
}
`
	cm := extractText(t, filter.Rust, src, Options{})
	require.Len(t, cm.Declarations, 1)

	st, ok := cm.Declarations[0].(*Struct)
	require.True(t, ok)
	assert.Equal(t, "User", st.Name)
	require.Len(t, st.Fields, 1)
	assert.Equal(t, Field{Name: "name", Type: "String", Visibility: Public}, st.Fields[0])
	assert.Equal(t, Location{StartLine: 1, EndLine: 4}, st.Location)

	withPrivate := extractText(t, filter.Rust, src, Options{IncludePrivate: true})
	st = withPrivate.Declarations[0].(*Struct)
	assert.Len(t, st.Fields, 2)
}

func TestRust_ImplMerge(t *testing.T) {
	t.Parallel()

	src := `pub struct Server {}

impl Server {
    pub fn start(&self) {}
    pub async fn stop(&self) {}
    fn internal(&self) {}
}

impl Elsewhere {
    pub fn orphan() {}
}
`
	cm := extractText(t, filter.Rust, src, Options{})
	require.Len(t, cm.Declarations, 2)

	st, ok := cm.Declarations[0].(*Struct)
	require.True(t, ok)
	require.Len(t, st.Methods, 2)
	assert.Equal(t, "start", st.Methods[0].DeclName())

	stop := st.Methods[1].(*Function)
	assert.True(t, stop.IsAsync)
	assert.Contains(t, stop.Signature, "async fn stop")

	orphan, ok := cm.Declarations[1].(*Function)
	require.True(t, ok)
	assert.Equal(t, "orphan", orphan.Name)
}

func TestRust_FunctionSignature(t *testing.T) {
	t.Parallel()

	src := `pub fn add(a: i32,
           b: i32) -> i32 {
    a + b
}
`
	cm := extractText(t, filter.Rust, src, Options{})
	require.Len(t, cm.Declarations, 1)

	fn := cm.Declarations[0].(*Function)
	assert.Equal(t, "pub fn add(a: i32, b: i32) -> i32", fn.Signature)
	assert.False(t, fn.IsAsync)
	assert.Equal(t, Location{StartLine: 1, EndLine: 4}, fn.Location)
}

func TestRust_OtherKinds(t *testing.T) {
	t.Parallel()

	src := `pub enum Color { Red, Green }
pub trait Shape {
    fn area(&self) -> f64;
}
pub type Id = u64;
pub const MAX: usize = 10;
`
	cm := extractText(t, filter.Rust, src, Options{})
	require.Len(t, cm.Declarations, 4)

	en := cm.Declarations[0].(*Enum)
	assert.Equal(t, []string{"Red", "Green"}, en.Variants)

	tr := cm.Declarations[1].(*Trait)
	assert.Equal(t, []string{"fn area(&self) -> f64"}, tr.Methods)

	ta := cm.Declarations[2].(*TypeAlias)
	assert.Equal(t, "u64", ta.Target)

	c := cm.Declarations[3].(*Const)
	assert.Equal(t, "MAX", c.Name)
	assert.Equal(t, "usize", c.Type)
}

func TestRust_Docs(t *testing.T) {
	t.Parallel()

	src := `// not a doc
/// First line.
/// Second line.
#[inline]
pub fn documented() {}

pub fn bare() {}
`
	cm := extractText(t, filter.Rust, src, Options{IncludeDocs: true})
	require.Len(t, cm.Declarations, 2)
	assert.Equal(t, "First line.\nSecond line.", cm.Declarations[0].(*Function).Doc)
	assert.Empty(t, cm.Declarations[1].(*Function).Doc)

	noDocs := extractText(t, filter.Rust, src, Options{})
	assert.Empty(t, noDocs.Declarations[0].(*Function).Doc)
}

func TestRust_OrderPreserved(t *testing.T) {
	t.Parallel()

	src := `pub const A: u8 = 1;
pub fn b() {}
pub struct C;
pub enum D { X }
pub fn e() {}
`
	cm := extractText(t, filter.Rust, src, Options{})
	var names []string
	for _, d := range cm.Declarations {
		names = append(names, d.DeclName())
	}
	assert.Equal(t, []string{"A", "b", "C", "D", "e"}, names)
}
