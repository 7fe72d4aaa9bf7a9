package driver

import (
	"github.com/tliron/commonlog"

	"kwarg/internal/decl"
	"kwarg/internal/pipeline"
	"kwarg/internal/project"
	"kwarg/internal/rewrite"
)

var log = commonlog.GetLogger("kwarg.driver")

// Options controls one expansion run.
type Options struct {
	Rewrite rewrite.Options
	Policy  decl.Policy
	// Prelude files are processed first; their declarations are visible to
	// every target file but they produce no output.
	Prelude    []string
	Extensions []string
	// Exclude lists glob patterns a directory walk skips; see
	// project.InputConfig.
	Exclude        []string
	MaxDiagnostics int
	// Jobs bounds parallel file processing; 0 means GOMAXPROCS.
	Jobs          int
	Cache         *DiskCache
	Progress      pipeline.ProgressSink
	EnableTimings bool
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return []string{".kw"}
	}
	return o.Extensions
}

// OptionsFromConfig builds run options from a decoded kwarg.toml. Prelude
// paths also pick up $KWARG_PRELUDE.
func OptionsFromConfig(cfg project.Config) (Options, error) {
	rw, err := cfg.RewriteOptions()
	if err != nil {
		return Options{}, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Rewrite:    rw,
		Policy:     policy,
		Prelude:    ResolvePrelude(cfg.Input.Prelude),
		Extensions: cfg.Input.Extensions,
		Exclude:    cfg.Input.Exclude,
	}, nil
}
