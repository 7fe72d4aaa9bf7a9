package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kwarg/internal/driver"
	"kwarg/internal/project"
)

// settings is the merged result of kwarg.toml and command-line flags.
type settings struct {
	config   project.Config
	manifest string
	opts     driver.Options
}

func addRewriteFlags(cmd *cobra.Command) {
	cmd.Flags().String("style", "", "call style (bang|plain), overrides [rewrite].call_style")
	cmd.Flags().String("keyword", "", "declaration keyword, overrides [rewrite].keyword")
	cmd.Flags().String("redeclare", "", "redeclaration policy (overwrite|error)")
	cmd.Flags().StringSlice("prelude", nil, "extra declaration files visible to every target")
	cmd.Flags().Bool("no-suggest", false, "disable \"did you mean\" suggestions")
	cmd.Flags().Int("max-depth", 0, "nested expansion limit, overrides [rewrite].max_depth")
}

// loadSettings reads the configuration for target and applies flag
// overrides. target may be a file, a directory or "-" for stdin.
func loadSettings(cmd *cobra.Command, target string) (*settings, error) {
	st := &settings{config: project.Default()}

	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	switch {
	case configPath != "":
		cfg, loadErr := project.LoadConfig(configPath)
		if loadErr != nil {
			return nil, loadErr
		}
		st.config = cfg
		st.manifest = configPath
	default:
		start := target
		if target == "-" || target == "" {
			if start, err = os.Getwd(); err != nil {
				return nil, err
			}
		}
		manifest, ok, loadErr := project.LoadManifest(start)
		if loadErr != nil {
			return nil, loadErr
		}
		if ok {
			st.config = manifest.Config
			st.manifest = manifest.Path
		}
	}

	if err := applyRewriteFlags(cmd, &st.config); err != nil {
		return nil, err
	}

	st.opts, err = driver.OptionsFromConfig(st.config)
	if err != nil {
		if st.manifest != "" {
			return nil, fmt.Errorf("%s: %w", st.manifest, err)
		}
		return nil, err
	}

	if st.opts.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if st.opts.EnableTimings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return nil, err
	}
	return st, nil
}

func applyRewriteFlags(cmd *cobra.Command, cfg *project.Config) error {
	flags := cmd.Flags()
	if flags.Lookup("style") == nil {
		return nil
	}
	if flags.Changed("style") {
		v, err := flags.GetString("style")
		if err != nil {
			return err
		}
		cfg.Rewrite.CallStyle = v
	}
	if flags.Changed("keyword") {
		v, err := flags.GetString("keyword")
		if err != nil {
			return err
		}
		cfg.Rewrite.Keyword = v
	}
	if flags.Changed("redeclare") {
		v, err := flags.GetString("redeclare")
		if err != nil {
			return err
		}
		cfg.Rewrite.Redeclare = v
	}
	if flags.Changed("prelude") {
		v, err := flags.GetStringSlice("prelude")
		if err != nil {
			return err
		}
		for _, p := range v {
			if abs, absErr := filepath.Abs(p); absErr == nil {
				p = abs
			}
			cfg.Input.Prelude = append(cfg.Input.Prelude, p)
		}
	}
	if flags.Changed("no-suggest") {
		v, err := flags.GetBool("no-suggest")
		if err != nil {
			return err
		}
		cfg.Rewrite.Suggest = !v
	}
	if flags.Changed("max-depth") {
		v, err := flags.GetInt("max-depth")
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("--max-depth must be positive")
		}
		cfg.Rewrite.MaxDepth = v
	}
	return nil
}

// openCache opens the disk cache when it is enabled by flag or config.
func openCache(cmd *cobra.Command, cfg project.Config) (*driver.DiskCache, error) {
	enabled := cfg.Cache.Enabled
	if f := cmd.Flags().Lookup("cache"); f != nil && f.Changed {
		v, err := cmd.Flags().GetBool("cache")
		if err != nil {
			return nil, err
		}
		enabled = v
	}
	if !enabled {
		return nil, nil
	}
	cache, err := driver.OpenDiskCache("kwarg", cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return cache, nil
}
