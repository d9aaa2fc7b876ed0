package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	t.Parallel()
	p := DefaultProfile()
	assert.Contains(t, p.Keywords, "pricing")
	assert.Contains(t, p.ValuablePaths, "/about")
	assert.Contains(t, p.AvoidPaths, "/blog")
}

func TestLoadProfile_OverridesAndInherits(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keywords:
  - widgets
  - gadgets
avoid_paths:
  - /forum
`), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"widgets", "gadgets"}, p.Keywords)
	assert.Equal(t, []string{"/forum"}, p.AvoidPaths)
	// valuable_paths untouched in the file, inherits defaults.
	assert.Contains(t, p.ValuablePaths, "/pricing")
}

func TestLoadProfile_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadProfile_BadYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: [unclosed"), 0o644))
	_, err := LoadProfile(path)
	require.Error(t, err)
}

func TestWithKeywords(t *testing.T) {
	t.Parallel()
	p := &ScoringProfile{Keywords: []string{"a"}}

	merged := p.WithKeywords([]string{"b"})
	assert.Equal(t, []string{"a", "b"}, merged.Keywords)
	assert.Equal(t, []string{"a"}, p.Keywords, "original must not be mutated")

	assert.Same(t, p, p.WithKeywords(nil))
}
