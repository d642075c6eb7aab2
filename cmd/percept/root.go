package main

import (
	"fmt"
	"io"
	"os"

	"github.com/oukeidos/percept/internal/cleanup"
	"github.com/oukeidos/percept/internal/files"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/version"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	debug       bool
	logFilePath string
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	global := globalOptions{}

	cmd := &cobra.Command{
		Use:   "percept",
		Short: "Language detection and image tagging",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(&global)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			_ = cmd.Usage()
			return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	cmd.PersistentFlags().BoolVar(&global.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&global.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")

	cmd.AddCommand(
		newAboutCmd(),
		newDetectCmd(),
		newTagCmd(),
		newLanguagesCmd(),
		newModelsCmd(),
		newEnvCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func setupLogging(opts *globalOptions) error {
	level := logger.LevelInfo
	if opts.debug {
		level = logger.LevelDebug
	}
	var logFileW io.Writer
	if opts.logFilePath != "" {
		f, err := files.OpenLogFile(opts.logFilePath)
		if err != nil {
			return err
		}
		cleanup.RegisterCloser("log file", f)
		logFileW = f
	}
	logger.Init(level, logFileW)
	return nil
}
