package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/auth"
	"github.com/oukeidos/percept/internal/cleanup"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/metadata"
	"github.com/oukeidos/percept/internal/session"
	"github.com/oukeidos/percept/internal/vision"
	"github.com/spf13/cobra"
)

type tagOptions struct {
	backend    string
	model      string
	threshold  float64
	maxLabels  int
	outputPath string
	jsonOut    bool
	yes        bool
	allowEnv   bool
	envOnly    bool
}

func newTagCmd() *cobra.Command {
	opts := tagOptions{}
	cmd := &cobra.Command{
		Use:     "tag <image>",
		Short:   "List the objects recognized in an image",
		Example: `  percept tag photo.jpg
  percept tag --backend gemini --max-labels 10 photo.png
  percept tag scan.webp --json -o scan.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Usage()
				return fmt.Errorf("exactly one image file is required")
			}
			return runTag(cmd, args[0], &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTagFlags(cmd, &opts)
	return cmd
}

func addTagFlags(cmd *cobra.Command, opts *tagOptions) {
	cmd.Flags().StringVar(&opts.backend, "backend", string(metadata.BackendLocal), "Tagging backend (local, gemini or openai)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name for remote backends (default per backend)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", vision.DefaultThreshold, "Minimum label confidence (0-1); 0 selects the default")
	cmd.Flags().IntVar(&opts.maxLabels, "max-labels", vision.DefaultMaxLabels, "Maximum number of labels (1-50); 0 selects the default")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Path to save a JSON report")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print a JSON report instead of a list")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite output file without asking")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API key from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
}

func runTag(cmd *cobra.Command, path string, opts *tagOptions) error {
	cfg, notes := session.Config{
		Backend:      metadata.Backend(opts.backend),
		Model:        opts.model,
		TagThreshold: opts.threshold,
		MaxLabels:    opts.maxLabels,
	}.Normalize()
	notes = append(zeroFlagNotes(cmd, "threshold", "max-labels"), notes...)
	for _, note := range notes {
		logger.Warn("Adjusted setting", "note", note)
	}
	if _, ok := metadata.ParseBackend(string(cfg.Backend)); !ok {
		return fmt.Errorf("unknown backend %q (use local, gemini or openai)", opts.backend)
	}
	if !metadata.IsKnownModel(cfg.Backend, cfg.Model) {
		logger.Warn("Model is not in the known list; using it anyway", "backend", cfg.Backend, "model", cfg.Model)
	}

	if cfg.IsRemote() {
		svc, err := auth.ParseService(string(cfg.Backend))
		if err != nil {
			return err
		}
		key, source, err := resolveAPIKey(svc, opts.allowEnv, opts.envOnly)
		if err != nil {
			return err
		}
		logger.Info("Using API Key", "service", svc, "source", source)
		cfg.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sel := session.SelectFile(path)
	if sel.Err != nil {
		logger.Debug("Image load failed", "path", path, "error", sel.Err)
		return fmt.Errorf("%s: %s", path, apperrors.PublicMessage(sel.Err))
	}

	ctx, stop := signalContext()
	defer stop()

	tagger, err := session.NewTagger(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := tagger.(io.Closer); ok {
		cleanup.RegisterCloser("tagger", c)
	}
	cfg.Model = session.ModelOf(tagger, cfg.Model)
	logger.Info("Tagging image", "path", path, "backend", cfg.Backend, "model", cfg.Model)

	sess := session.New(nil, tagger)
	reqCtx, ticket := sess.ImageRequests.Begin(ctx)
	view := sess.TagImage(reqCtx, sel)
	sess.ImageRequests.Finish(ticket)

	if view.Err != nil && ctx.Err() != nil {
		logger.Warn("Tagging canceled", "error", view.Err)
		return nil
	}

	report := session.NewImageReport(path, cfg, view)
	if opts.outputPath != "" {
		data, err := session.MarshalReport(report)
		if err != nil {
			return err
		}
		if _, err := writeReport(cmd, opts.outputPath, data, opts.yes); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		data, err := session.MarshalReport(report)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	} else if view.Err == nil {
		printLabels(out, view)
	}

	if view.Err != nil {
		if apperrors.IsRetryable(view.Err) {
			return errors.New(view.Message + " Try again later.")
		}
		return errors.New(view.Message)
	}
	return nil
}

func printLabels(w io.Writer, view session.ImageView) {
	fmt.Fprintln(w, view.Message)
	for _, label := range view.Labels {
		fmt.Fprintf(w, "  - %s\n", label)
	}
}
