package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kwarg/internal/driver"
)

var declsCmd = &cobra.Command{
	Use:   "decls [flags] <file|directory>",
	Short: "List the declarations visible to each file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecls,
}

func init() {
	declsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	addRewriteFlags(declsCmd)
}

type declsPayload struct {
	Prelude []string            `json:"prelude,omitempty"`
	Files   map[string][]string `json:"files"`
}

func runDecls(cmd *cobra.Command, args []string) error {
	target := args[0]
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	st, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	res, err := driver.Expand(cmd.Context(), target, st.opts)
	if err != nil {
		return fmt.Errorf("decls failed: %w", err)
	}

	payload := declsPayload{Files: make(map[string][]string, len(res.Files))}
	for _, d := range res.PreludeDecls {
		payload.Prelude = append(payload.Prelude, d.Signature())
	}
	for _, fr := range res.Files {
		payload.Files[fr.Path] = fr.Signatures
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	} else {
		writeDecls(os.Stdout, payload, res)
	}
	if res.HasErrors() {
		ro := reportOptions{format: "short", withNotes: false}
		if err := report(os.Stderr, res.Bag, res.FileSet, ro, nil); err != nil {
			return err
		}
		return errDiagnostics
	}
	return nil
}

func writeDecls(w io.Writer, payload declsPayload, res *driver.ExpandResult) {
	if len(payload.Prelude) > 0 {
		fmt.Fprintln(w, "prelude:")
		for _, sig := range payload.Prelude {
			fmt.Fprintf(w, "  %s\n", sig)
		}
	}
	for _, fr := range res.Files {
		fmt.Fprintf(w, "%s:\n", fr.Path)
		if len(fr.Signatures) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, sig := range fr.Signatures {
			fmt.Fprintf(w, "  %s\n", sig)
		}
	}
}
