package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/ai-health-analyze/internal/health"
)

func flagsCmd() *cobra.Command {
	var (
		lang    string
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "flags [file]",
		Short: "Normalize a health form and print its warning flags",
		Long: "Reads a health form as JSON from file (or stdin when omitted or \"-\"), " +
			"prints the normalized metrics and the warning flags. No completion service is called.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runFlags(in, cmd.OutOrStdout(), lang, summary)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", health.LangEnglish, "language of flags and summary (en or th)")
	cmd.Flags().BoolVar(&summary, "summary", false, "print the text summary instead of JSON")
	return cmd
}

type flagsOutput struct {
	Metrics health.Record `json:"metrics"`
	Flags   []string      `json:"flags"`
}

func runFlags(in io.Reader, out io.Writer, lang string, summary bool) error {
	var raw map[string]any
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	rec := health.Normalize(raw)
	flags := health.EvaluateFlags(rec)
	if summary {
		_, err := fmt.Fprintln(out, health.Summary(rec, flags, lang))
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(flagsOutput{Metrics: rec, Flags: health.FlagTexts(flags, lang)})
}
