package rewrite

import (
	"fmt"
	"strings"
)

// CallStyle selects which call sites are treated as invocations.
type CallStyle uint8

const (
	// StyleBang rewrites `name!(...)`.
	StyleBang CallStyle = iota
	// StylePlain rewrites `name(...)`.
	StylePlain
)

func (s CallStyle) String() string {
	switch s {
	case StyleBang:
		return "bang"
	case StylePlain:
		return "plain"
	}
	return "unknown"
}

func ParseCallStyle(s string) (CallStyle, error) {
	switch s {
	case "", "bang":
		return StyleBang, nil
	case "plain":
		return StylePlain, nil
	}
	return StyleBang, fmt.Errorf("unknown call style %q (want bang or plain)", s)
}

const (
	DefaultKeyword     = "declare"
	DefaultPlaceholder = "/* kwarg: expansion failed */"
	DefaultMaxDepth    = 32
	// DefaultMaxExpansions bounds the call sites expanded in one file,
	// counting every copy of a default.
	DefaultMaxExpansions = 1 << 16
)

type Options struct {
	// Keyword introduces a declaration.
	Keyword string
	Style   CallStyle
	// SkipAfter lists identifiers that mark a definition rather than a call
	// in plain style, e.g. `fn foo(a, b)`.
	SkipAfter []string
	// Placeholder replaces call sites that fail to expand.
	Placeholder string
	// MaxDepth bounds nested expansion through arguments and defaults.
	MaxDepth int
	// MaxExpansions bounds the expansions performed for one file.
	MaxExpansions int
	Suggest       bool
}

func DefaultOptions() Options {
	return Options{
		Keyword:       DefaultKeyword,
		Style:         StyleBang,
		SkipAfter:     []string{"fn"},
		Placeholder:   DefaultPlaceholder,
		MaxDepth:      DefaultMaxDepth,
		MaxExpansions: DefaultMaxExpansions,
		Suggest:       true,
	}
}

func (o Options) withDefaults() Options {
	if o.Keyword == "" {
		o.Keyword = DefaultKeyword
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxExpansions <= 0 {
		o.MaxExpansions = DefaultMaxExpansions
	}
	return o
}

// Fingerprint identifies every option that changes rewrite output.
func (o Options) Fingerprint() string {
	o = o.withDefaults()
	return fmt.Sprintf("kw=%s;style=%s;skip=%s;ph=%q;depth=%d;budget=%d;suggest=%t",
		o.Keyword, o.Style, strings.Join(o.SkipAfter, ","), o.Placeholder, o.MaxDepth, o.MaxExpansions, o.Suggest)
}
