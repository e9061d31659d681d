package codemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moradology/pith/internal/filter"
)

// Test Plan for TypeScript and JavaScript extraction:
// - named, namespace and default imports
// - exported declarations are Public, others Private and filtered by default
// - interfaces and type aliases are Public even when not exported
// - class methods become members, private/protected members follow accessibility
// - const arrow functions become Functions
// - JSDoc above an export statement attaches to the declaration
// - JavaScript and JSX go through the same extractor
// - declarations keep source order across kinds

func TestTypeScript_Imports(t *testing.T) {
	t.Parallel()

	src := `import { useState, useEffect as effect } from 'react';
import * as utils from "./utils";
import App from './App';
`
	cm := extractText(t, filter.TypeScript, src, Options{})
	require.Len(t, cm.Imports, 3)
	assert.Equal(t, Import{Source: "react", Items: []string{"useState", "useEffect"}}, cm.Imports[0])
	assert.Equal(t, Import{Source: "./utils", Items: []string{"*"}}, cm.Imports[1])
	assert.Equal(t, Import{Source: "./App"}, cm.Imports[2])
}

func TestTypeScript_SingleNamedImport(t *testing.T) {
	t.Parallel()

	cm := extractText(t, filter.TypeScript, "import { Router } from 'express';\n", Options{})
	require.Len(t, cm.Imports, 1)
	assert.Equal(t, "express", cm.Imports[0].Source)
	assert.Equal(t, []string{"Router"}, cm.Imports[0].Items)
}

func TestTypeScript_ExportVisibility(t *testing.T) {
	t.Parallel()

	src := `export function greet(name: string): string {
  return name;
}

function helper() {}

interface Local {
  id: number;
}

type Alias = string | number;
`
	cm := extractText(t, filter.TypeScript, src, Options{})
	require.Len(t, cm.Declarations, 3)

	fn := cm.Declarations[0].(*Function)
	assert.Equal(t, "greet", fn.Name)
	assert.Equal(t, "export function greet(name: string): string", fn.Signature)

	iface := cm.Declarations[1].(*Interface)
	assert.Equal(t, "Local", iface.Name)
	assert.Equal(t, []string{"id: number"}, iface.Members)

	alias := cm.Declarations[2].(*TypeAlias)
	assert.Equal(t, "string | number", alias.Target)

	all := extractText(t, filter.TypeScript, src, Options{IncludePrivate: true})
	require.Len(t, all.Declarations, 4)
	assert.Equal(t, Private, all.Declarations[1].DeclVisibility())
}

func TestTypeScript_Class(t *testing.T) {
	t.Parallel()

	src := `export class Handler {
  async handle(req: Request): Promise<Response> {
    return new Response();
  }

  private reset(): void {}

  protected log(msg: string) {}
}
`
	cm := extractText(t, filter.TypeScript, src, Options{})
	require.Len(t, cm.Declarations, 1)

	cls := cm.Declarations[0].(*Class)
	assert.Equal(t, "Handler", cls.Name)
	require.Len(t, cls.Members, 1)
	handle := cls.Members[0].(*Function)
	assert.True(t, handle.IsAsync)
	assert.Equal(t, "async handle(req: Request): Promise<Response>", handle.Signature)

	all := extractText(t, filter.TypeScript, src, Options{IncludePrivate: true})
	cls = all.Declarations[0].(*Class)
	require.Len(t, cls.Members, 3)
	assert.Equal(t, Private, cls.Members[1].DeclVisibility())
	assert.Equal(t, Protected, cls.Members[2].DeclVisibility())
}

func TestTypeScript_ArrowFunction(t *testing.T) {
	t.Parallel()

	src := `export const load = async (id: string) => {
  return id;
};

const notAFunction = 42;
`
	cm := extractText(t, filter.TypeScript, src, Options{IncludePrivate: true})
	require.Len(t, cm.Declarations, 1)
	fn := cm.Declarations[0].(*Function)
	assert.Equal(t, "load", fn.Name)
	assert.Equal(t, "export const load", fn.Signature)
	assert.True(t, fn.IsAsync)
}

func TestTypeScript_OrderPreserved(t *testing.T) {
	t.Parallel()

	src := `type Alias = string;

export function greet() {}

export class Handler {}

interface Local {
  id: number;
}

export const load = () => 1;
`
	cm := extractText(t, filter.TypeScript, src, Options{})
	names := make([]string, 0, len(cm.Declarations))
	for _, d := range cm.Declarations {
		names = append(names, d.DeclName())
	}
	assert.Equal(t, []string{"Alias", "greet", "Handler", "Local", "load"}, names)
}

func TestTypeScript_JSDoc(t *testing.T) {
	t.Parallel()

	src := `/**
 * Adds two numbers.
 * @param a first
 */
export function add(a: number, b: number): number {
  return a + b;
}
`
	cm := extractText(t, filter.TypeScript, src, Options{IncludeDocs: true})
	require.Len(t, cm.Declarations, 1)
	assert.Equal(t, "Adds two numbers.\n@param a first", cm.Declarations[0].(*Function).Doc)
}

func TestJavaScript_Delegation(t *testing.T) {
	t.Parallel()

	js := extractText(t, filter.JavaScript, "export function greet(name) {\n  return name;\n}\n", Options{})
	require.Len(t, js.Declarations, 1)
	assert.Equal(t, "greet", js.Declarations[0].DeclName())
	assert.Empty(t, js.ParseError)

	jsx := extractText(t, filter.JSX, "export function App() {\n  return <div>hi</div>;\n}\n", Options{})
	require.Len(t, jsx.Declarations, 1)
	assert.Equal(t, "App", jsx.Declarations[0].DeclName())
	assert.Empty(t, jsx.ParseError)
}
