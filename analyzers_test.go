package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatchByExtension(t *testing.T) {
	r := NewAnalyzerRegistry()

	assert.IsType(t, &PythonAnalyzer{}, r.AnalyzerFor("src/main.py"))
	assert.IsType(t, &JavaScriptAnalyzer{}, r.AnalyzerFor("app.tsx"))
	assert.IsType(t, &ShellAnalyzer{}, r.AnalyzerFor("build.sh"))
	assert.IsType(t, &MarkdownAnalyzer{}, r.AnalyzerFor("README.md"))
	assert.IsType(t, &JSONAnalyzer{}, r.AnalyzerFor("package.json"))
	assert.IsType(t, &YAMLAnalyzer{}, r.AnalyzerFor("ci.yml"))
	assert.IsType(t, &RustAnalyzer{}, r.AnalyzerFor("lib.rs"))
	assert.IsType(t, &GenericAnalyzer{}, r.AnalyzerFor("data.bin"))
	// Extensions are matched case-insensitively.
	assert.IsType(t, &PythonAnalyzer{}, r.AnalyzerFor("MAIN.PY"))
	// Dotfiles have no extension.
	assert.IsType(t, &GenericAnalyzer{}, r.AnalyzerFor(".gitignore"))
}

func TestPythonAnalyze(t *testing.T) {
	content := `#!/usr/bin/env python3
"""Module docstring."""
import os
from pathlib import Path

# TODO: refactor this
class Encoder:
    def encode(self):
        pass

async def fetch():
    pass

if __name__ == "__main__":
    main()
`
	a := &PythonAnalyzer{}
	analysis := a.Analyze(content, "encoder.py")

	assert.Equal(t, "Python", analysis.Language)
	assert.Equal(t, []string{"Encoder"}, analysis.Classes)
	assert.Equal(t, []string{"encode", "fetch"}, analysis.Functions)
	assert.Equal(t, []string{"os", "pathlib"}, analysis.Imports)
	assert.Contains(t, analysis.EntryPoints, "__main__ block")
	require.Len(t, analysis.Markers, 1)
	assert.Equal(t, "TODO: refactor this", analysis.Markers[0])
	// An entry point makes it an application.
	assert.Equal(t, "application", analysis.Category)
}

func TestPythonCategoryTestPath(t *testing.T) {
	a := &PythonAnalyzer{}
	analysis := a.Analyze("def test_x():\n    pass\n", "tests/test_enc.py")
	assert.Equal(t, "test", analysis.Category)
}

func TestPythonStructureRangesKeepSignatures(t *testing.T) {
	content := `import os

class Encoder:
    def encode(self):
        x = 1
        return x

def main():
    print("hi")
`
	a := &PythonAnalyzer{}
	ranges := a.StructureRanges(splitLines(content))
	kept := extractRanges(splitLines(content), ranges, false)

	assert.Contains(t, kept, "import os")
	assert.Contains(t, kept, "class Encoder:")
	assert.Contains(t, kept, "def encode(self):")
	assert.Contains(t, kept, "def main():")
	assert.NotContains(t, kept, "x = 1")
	assert.NotContains(t, kept, `print("hi")`)
}

func TestJavaScriptAnalyze(t *testing.T) {
	content := `import { thing } from './thing';

export class Widget {}

export function render() {}

const helper = (a, b) => a + b;

// FIXME: flaky on resize
`
	a := &JavaScriptAnalyzer{}
	analysis := a.Analyze(content, "widget.ts")

	assert.Equal(t, "JavaScript/TypeScript", analysis.Language)
	assert.Equal(t, []string{"Widget"}, analysis.Classes)
	assert.Equal(t, []string{"render", "helper"}, analysis.Functions)
	assert.Equal(t, []string{"./thing"}, analysis.Imports)
	assert.Equal(t, "module", analysis.Category)
	require.Len(t, analysis.Markers, 1)
	assert.Contains(t, analysis.Markers[0], "FIXME")
}

func TestShellAnalyze(t *testing.T) {
	content := `#!/bin/bash
source ./lib.sh

deploy() {
    echo deploying
}
`
	a := &ShellAnalyzer{}
	analysis := a.Analyze(content, "deploy.sh")

	assert.Equal(t, "Shell (bash)", analysis.Language)
	assert.Equal(t, []string{"deploy"}, analysis.Functions)
	assert.Equal(t, []string{"./lib.sh"}, analysis.Imports)
	assert.Equal(t, []string{"#!/bin/bash"}, analysis.EntryPoints)
}

func TestMarkdownAnalyze(t *testing.T) {
	content := "# Title\n\nIntro with a [link](https://example.com).\n\n## Usage\n\n```bash\npmenc .\n```\n\n### Details\n"
	a := &MarkdownAnalyzer{}
	analysis := a.Analyze(content, "README.md")

	assert.Equal(t, "Markdown", analysis.Language)
	assert.Equal(t, "documentation", analysis.Category)
	require.Len(t, analysis.EntryPoints, 3)
	assert.Equal(t, "# Title (line 1)", analysis.EntryPoints[0])
	assert.Equal(t, "## Usage (line 5)", analysis.EntryPoints[1])
	assert.Equal(t, []string{"bash"}, analysis.CodeBlocks)
	assert.Equal(t, []string{"https://example.com"}, analysis.Imports)
	// H1 and H2 open critical spans; the H3 does not.
	assert.Len(t, analysis.CriticalRanges, 2)
}

func TestJSONAnalyze(t *testing.T) {
	content := `{"name": "pmenc", "scripts": {"build": "make"}, "version": "1.0"}`
	a := &JSONAnalyzer{}
	analysis := a.Analyze(content, "package.json")

	assert.Equal(t, "JSON", analysis.Language)
	assert.Equal(t, "config", analysis.Category)
	assert.Equal(t, []string{"name", "scripts", "version"}, analysis.ConfigKeys)
	require.Len(t, analysis.Markers, 1)
	assert.Equal(t, "4 keys, max depth 2", analysis.Markers[0])
}

func TestJSONAnalyzeMalformedDegrades(t *testing.T) {
	a := &JSONAnalyzer{}
	analysis := a.Analyze("{not json", "broken.json")
	assert.Equal(t, "Unknown", analysis.Language)
	assert.Equal(t, "unknown", analysis.Category)
}

func TestYAMLAnalyze(t *testing.T) {
	content := `name: pipeline
on:
  push: {}
jobs:
  build: {}
`
	a := &YAMLAnalyzer{}
	analysis := a.Analyze(content, "ci.yaml")

	assert.Equal(t, "YAML", analysis.Language)
	// Only line-leading keys count; nested keys are indented.
	assert.Equal(t, []string{"name", "on", "jobs"}, analysis.ConfigKeys)
}

func TestRustAnalyze(t *testing.T) {
	content := `use std::fmt;

pub struct Encoder;

pub enum Mode { A, B }

trait Render {}

pub async fn serve() {}

fn main() {
    serve();
}
`
	a := &RustAnalyzer{}
	analysis := a.Analyze(content, "main.rs")

	assert.Equal(t, "Rust", analysis.Language)
	assert.Equal(t, []string{"Encoder", "Mode", "Render"}, analysis.Classes)
	assert.Equal(t, []string{"serve", "main"}, analysis.Functions)
	assert.Equal(t, []string{"std::fmt"}, analysis.Imports)
	assert.Contains(t, analysis.EntryPoints, "main function")
	assert.Equal(t, "application", analysis.Category)
}

func TestGenericAnalyze(t *testing.T) {
	a := &GenericAnalyzer{}
	analysis := a.Analyze("whatever content", "data.xyz")
	assert.Equal(t, "Unknown", analysis.Language)
	assert.Equal(t, "unknown", analysis.Category)
	assert.Empty(t, analysis.Functions)
}

func TestSupportedLanguagesIsStable(t *testing.T) {
	r := NewAnalyzerRegistry()
	langs := r.SupportedLanguages()
	assert.Equal(t, []string{
		"JSON", "JavaScript/TypeScript", "Markdown", "Python",
		"Rust", "Shell (bash)", "YAML",
	}, langs)
}

func TestMergeRanges(t *testing.T) {
	merged := mergeRanges([]LineRange{{5, 6}, {1, 2}, {3, 4}, {10, 12}})
	assert.Equal(t, []LineRange{{1, 6}, {10, 12}}, merged)

	assert.Nil(t, mergeRanges(nil))

	// Overlaps collapse.
	merged = mergeRanges([]LineRange{{1, 10}, {5, 8}})
	assert.Equal(t, []LineRange{{1, 10}}, merged)
}

func TestClampRanges(t *testing.T) {
	out := clampRanges([]LineRange{{-3, 2}, {8, 99}, {50, 60}}, 10)
	assert.Equal(t, []LineRange{{1, 2}, {8, 10}}, out)
}

func TestCollectMarkersTruncatesLongText(t *testing.T) {
	long := "# TODO: " + strings.Repeat("x", 100)
	markers := collectMarkers([]string{long}, "#")
	require.Len(t, markers, 1)
	assert.True(t, len(markers[0]) <= len("TODO: ")+60)
}
