package driver

import (
	"fmt"

	"kwarg/internal/diag"
	"kwarg/internal/lexer"
	"kwarg/internal/source"
	"kwarg/internal/token"
	"kwarg/internal/tree"
)

// TokenizeResult is the lexed form of one file. Nothing is rewritten.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Tree    *tree.File
	Bag     *diag.Bag
}

// Tokenize lexes path and checks delimiter balance.
func Tokenize(path string, opts Options) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return tokenize(fs, id, opts), nil
}

// TokenizeSource is Tokenize for in-memory content.
func TokenizeSource(name string, content []byte, opts Options) *TokenizeResult {
	fs := source.NewFileSet()
	return tokenize(fs, fs.AddVirtual(name, content), opts)
}

func tokenize(fs *source.FileSet, id source.FileID, opts Options) *TokenizeResult {
	file := fs.Get(id)
	bag := diag.NewBag(opts.maxDiagnostics())
	reporter := diag.BagReporter{Bag: bag}

	tokens := lexer.New(file, lexer.Options{Reporter: reporter}).All()
	root := tree.Build(tokens, reporter)
	bag.Sort()
	log.Debugf("tokenized %s: %d tokens, %d diagnostics", file.Path, len(tokens), bag.Len())

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Tree:    root,
		Bag:     bag,
	}
}
