package project

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"kwarg/internal/decl"
	"kwarg/internal/rewrite"
)

// Config mirrors kwarg.toml. Zero-valued sections fall back to Default.
type Config struct {
	Rewrite RewriteConfig `toml:"rewrite"`
	Input   InputConfig   `toml:"input"`
	Output  OutputConfig  `toml:"output"`
	Cache   CacheConfig   `toml:"cache"`
}

type RewriteConfig struct {
	Keyword     string   `toml:"keyword"`
	CallStyle   string   `toml:"call_style"`
	SkipAfter   []string `toml:"skip_after"`
	Placeholder string   `toml:"placeholder"`
	MaxDepth    int      `toml:"max_depth"`
	Redeclare   string   `toml:"redeclare"`
	Suggest     bool     `toml:"suggest"`
}

type InputConfig struct {
	Extensions []string `toml:"extensions"`
	// Prelude files are loaded into every session before the target.
	Prelude []string `toml:"prelude"`
	// Exclude holds slash-separated glob patterns; a directory walk skips
	// files and directories whose relative path or base name matches one.
	Exclude []string `toml:"exclude"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Manifest is a loaded kwarg.toml together with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used when no kwarg.toml exists.
func Default() Config {
	opts := rewrite.DefaultOptions()
	return Config{
		Rewrite: RewriteConfig{
			Keyword:     opts.Keyword,
			CallStyle:   opts.Style.String(),
			SkipAfter:   opts.SkipAfter,
			Placeholder: opts.Placeholder,
			MaxDepth:    opts.MaxDepth,
			Redeclare:   "overwrite",
			Suggest:     opts.Suggest,
		},
		Input: InputConfig{
			Extensions: []string{".kw"},
		},
	}
}

// LoadManifest finds kwarg.toml above startDir and decodes it. ok is false
// when there is no manifest; the caller should then use Default.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes path on top of Default and validates the result.
func LoadConfig(path string) (Config, error) {
	// #nosec G304 -- path comes from manifest discovery or the --config flag
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := ParseConfig(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Output.Dir != "" && !filepath.IsAbs(cfg.Output.Dir) {
		cfg.Output.Dir = filepath.Join(filepath.Dir(path), cfg.Output.Dir)
	}
	for i, p := range cfg.Input.Prelude {
		if !filepath.IsAbs(p) {
			cfg.Input.Prelude[i] = filepath.Join(filepath.Dir(path), filepath.FromSlash(p))
		}
	}
	return cfg, nil
}

// ParseConfig decodes TOML text on top of Default.
func ParseConfig(text string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if meta.IsDefined("rewrite", "keyword") && !isIdent(cfg.Rewrite.Keyword) {
		return Config{}, fmt.Errorf("[rewrite].keyword %q is not an identifier", cfg.Rewrite.Keyword)
	}
	if meta.IsDefined("rewrite", "max_depth") && cfg.Rewrite.MaxDepth <= 0 {
		return Config{}, fmt.Errorf("[rewrite].max_depth must be positive, got %d", cfg.Rewrite.MaxDepth)
	}
	if meta.IsDefined("rewrite", "skip_after") && slices.ContainsFunc(cfg.Rewrite.SkipAfter, func(s string) bool { return !isIdent(s) }) {
		return Config{}, fmt.Errorf("[rewrite].skip_after must list identifiers")
	}
	if meta.IsDefined("input", "extensions") {
		if len(cfg.Input.Extensions) == 0 {
			return Config{}, fmt.Errorf("[input].extensions must not be empty")
		}
		for _, ext := range cfg.Input.Extensions {
			if !strings.HasPrefix(ext, ".") {
				return Config{}, fmt.Errorf("[input].extensions: %q must start with '.'", ext)
			}
		}
	}
	for _, pattern := range cfg.Input.Exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			return Config{}, fmt.Errorf("[input].exclude: %q: %w", pattern, err)
		}
	}
	if _, err := rewrite.ParseCallStyle(cfg.Rewrite.CallStyle); err != nil {
		return Config{}, fmt.Errorf("[rewrite].call_style: %w", err)
	}
	if _, err := decl.ParsePolicy(cfg.Rewrite.Redeclare); err != nil {
		return Config{}, fmt.Errorf("[rewrite].redeclare: %w", err)
	}
	return cfg, nil
}

// RewriteOptions converts the [rewrite] section into session options.
func (c Config) RewriteOptions() (rewrite.Options, error) {
	style, err := rewrite.ParseCallStyle(c.Rewrite.CallStyle)
	if err != nil {
		return rewrite.Options{}, err
	}
	return rewrite.Options{
		Keyword:     c.Rewrite.Keyword,
		Style:       style,
		SkipAfter:   slices.Clone(c.Rewrite.SkipAfter),
		Placeholder: c.Rewrite.Placeholder,
		MaxDepth:    c.Rewrite.MaxDepth,
		Suggest:     c.Rewrite.Suggest,
	}, nil
}

// Policy returns the redeclaration policy from [rewrite].redeclare.
func (c Config) Policy() (decl.Policy, error) {
	return decl.ParsePolicy(c.Rewrite.Redeclare)
}

// HasExtension reports whether path carries one of the input extensions.
func (c Config) HasExtension(path string) bool {
	return slices.Contains(c.Input.Extensions, filepath.Ext(path))
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
