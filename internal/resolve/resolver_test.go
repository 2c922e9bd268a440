// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ManuGH/docsmith/internal/docpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureTree lays out a small package on disk:
//
//	kipoiseq/__init__.py
//	kipoiseq/utils.py
//	kipoiseq/extractors/__init__.py
//	kipoiseq/extractors/vcf_seq.py
func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"kipoiseq/__init__.py",
		"kipoiseq/utils.py",
		"kipoiseq/extractors/__init__.py",
		"kipoiseq/extractors/vcf_seq.py",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte("# test fixture\n"), 0600))
	}
	return root
}

func TestResolver_Resolve(t *testing.T) {
	root := fixtureTree(t)
	r := New([]string{root})

	tests := []struct {
		name      string
		spec      string
		file      string
		attribute string
		resolved  bool
	}{
		{
			"top level package",
			"kipoiseq",
			"kipoiseq/__init__.py",
			"",
			true,
		},
		{
			"plain module",
			"kipoiseq.utils",
			"kipoiseq/utils.py",
			"",
			true,
		},
		{
			"subpackage",
			"kipoiseq.extractors",
			"kipoiseq/extractors/__init__.py",
			"",
			true,
		},
		{
			"module in subpackage",
			"kipoiseq.extractors.vcf_seq",
			"kipoiseq/extractors/vcf_seq.py",
			"",
			true,
		},
		{
			"class inside module",
			"kipoiseq.extractors.vcf_seq.SingleVariantVCFSeqExtractor++",
			"kipoiseq/extractors/vcf_seq.py",
			"SingleVariantVCFSeqExtractor",
			true,
		},
		{
			"attribute on package",
			"kipoiseq.extractors.FastaStringExtractor",
			"kipoiseq/extractors/__init__.py",
			"FastaStringExtractor",
			true,
		},
		{
			"unknown package",
			"numpy.linalg",
			"",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(docpath.MustParse(tt.spec))

			assert.Equal(t, tt.resolved, res.Resolved)
			if tt.resolved {
				assert.Equal(t, filepath.FromSlash(tt.file), res.File)
				assert.Equal(t, tt.attribute, res.Attribute)
				assert.Equal(t, root, res.SearchPath)
			}
		})
	}
}

func TestResolver_SearchPathOrder(t *testing.T) {
	first := t.TempDir()
	second := fixtureTree(t)

	// Same package name in both roots; the first search path must win.
	require.NoError(t, os.MkdirAll(filepath.Join(first, "kipoiseq"), 0750))
	require.NoError(t, os.WriteFile(
		filepath.Join(first, "kipoiseq", "__init__.py"), []byte(""), 0600))

	r := New([]string{first, second})
	res := r.Resolve(docpath.MustParse("kipoiseq"))

	require.True(t, res.Resolved)
	assert.Equal(t, first, res.SearchPath)
}

func TestResolver_ResolveAll(t *testing.T) {
	root := fixtureTree(t)
	r := New([]string{root})

	paths := []docpath.Path{
		docpath.MustParse("kipoiseq.utils"),
		docpath.MustParse("missing.module"),
		docpath.MustParse("kipoiseq.extractors++"),
	}

	resolutions, unresolved := r.ResolveAll(paths)
	require.Len(t, resolutions, 3)
	assert.Equal(t, 1, unresolved)
	assert.True(t, resolutions[0].Resolved)
	assert.False(t, resolutions[1].Resolved)
	assert.True(t, resolutions[2].Resolved)
}

func TestResolver_NoSearchPaths(t *testing.T) {
	r := New(nil)
	res := r.Resolve(docpath.MustParse("kipoiseq"))
	assert.False(t, res.Resolved)
}
