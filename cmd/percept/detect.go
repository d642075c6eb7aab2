package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/session"
	"github.com/oukeidos/percept/internal/subtitle"
	"github.com/spf13/cobra"
)

type detectOptions struct {
	filePath      string
	subtitlePath  string
	locale        string
	minConfidence float64
	jsonOut       bool
}

func newDetectCmd() *cobra.Command {
	opts := detectOptions{}
	cmd := &cobra.Command{
		Use:     "detect [text...]",
		Short:   "Detect the language of text, a text file, or a subtitle file",
		Example: `  percept detect "Où est la gare, s'il vous plaît ?"
  percept detect --subtitle movie.srt --locale de
  cat notes.txt | percept detect --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !hasAnyFlagSet(cmd) && isTerminal(int(os.Stdin.Fd())) {
				return cmd.Help()
			}
			return runDetect(cmd, args, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "Read text from a UTF-8 file")
	cmd.Flags().StringVar(&opts.subtitlePath, "subtitle", "", "Read dialogue from a subtitle file (.srt, .vtt, .ssa, .ass, .ttml, .stl)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "Locale for the language name (default: OS locale)")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", language.DefaultMinConfidence, "Minimum confidence (0-1) to report a language; 0 selects the default")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print a JSON report instead of a message")
	cmd.MarkFlagsMutuallyExclusive("file", "subtitle")
	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *detectOptions) error {
	text, source, err := detectInput(cmd, args, opts)
	if err != nil {
		return err
	}

	cfg, notes := session.Config{Locale: opts.locale, MinConfidence: opts.minConfidence}.Normalize()
	notes = append(zeroFlagNotes(cmd, "min-confidence"), notes...)
	for _, note := range notes {
		logger.Warn("Adjusted setting", "note", note)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	detector, err := session.NewDetector(cfg)
	if err != nil {
		return err
	}

	view := session.New(detector, nil).DetectText(text)
	out := cmd.OutOrStdout()
	if opts.jsonOut {
		report := session.NewTextReport(source, view)
		report.Locale = detector.Locale().String()
		data, err := session.MarshalReport(report)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	fmt.Fprintln(out, view.Message)
	return nil
}

// detectInput picks the text to analyse from the arguments, --file,
// --subtitle or piped stdin. Arguments cannot be combined with a file.
func detectInput(cmd *cobra.Command, args []string, opts *detectOptions) (string, string, error) {
	if len(args) > 0 && (opts.filePath != "" || opts.subtitlePath != "") {
		_ = cmd.Usage()
		return "", "", fmt.Errorf("give text arguments or a file, not both")
	}
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), "", nil
	case opts.filePath != "":
		text, err := readTextFile(opts.filePath)
		return text, opts.filePath, err
	case opts.subtitlePath != "":
		if !subtitle.Supported(opts.subtitlePath) {
			return "", "", fmt.Errorf("unsupported subtitle extension (supported: %s)", strings.Join(subtitle.Extensions, ", "))
		}
		text, err := subtitle.Text(opts.subtitlePath)
		if err != nil {
			logger.Debug("Subtitle load failed", "path", opts.subtitlePath, "error", err)
			return "", "", fmt.Errorf("%s: %s", opts.subtitlePath, apperrors.PublicMessage(err))
		}
		return text, opts.subtitlePath, nil
	case !isTerminal(int(os.Stdin.Fd())):
		text, err := readText(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return text, "stdin", nil
	default:
		_ = cmd.Usage()
		return "", "", fmt.Errorf("text, --file, or --subtitle is required")
	}
}
