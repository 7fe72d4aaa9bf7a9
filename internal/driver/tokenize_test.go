package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwarg/internal/diag"
	"kwarg/internal/token"
	"kwarg/internal/tree"
)

func TestTokenizeSourceBuildsTree(t *testing.T) {
	res := TokenizeSource("mem.kw", []byte("f(a, [b])\n"), Options{})

	require.NotEmpty(t, res.Tokens)
	assert.Equal(t, token.EOF, res.Tokens[len(res.Tokens)-1].Kind)
	assert.Equal(t, 0, res.Bag.Len())
	assert.Equal(t, "f(a, [b])\n", tree.Print(res.Tree))
}

func TestTokenizeReportsUnbalancedDelimiters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.kw")
	require.NoError(t, os.WriteFile(path, []byte("f(a, b\n"), 0o600))

	res, err := Tokenize(path, Options{})
	require.NoError(t, err)
	assert.True(t, res.Bag.HasErrors())
	assert.Equal(t, "open.kw", filepath.Base(res.File.Path))
}

func TestTokenizeMissingFile(t *testing.T) {
	_, err := Tokenize(filepath.Join(t.TempDir(), "nope.kw"), Options{})
	assert.Error(t, err)
}

func TestTokenizeHonoursDiagnosticLimit(t *testing.T) {
	res := TokenizeSource("stray.kw", []byte(") ) ) )"), Options{MaxDiagnostics: 2})
	assert.LessOrEqual(t, res.Bag.Len(), 2)
	for _, d := range res.Bag.Items() {
		assert.Equal(t, diag.SevError, d.Severity)
	}
}
