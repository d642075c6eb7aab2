package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/oukeidos/percept/internal/auth"
	"github.com/oukeidos/percept/internal/files"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/prompt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	promptForKey = auth.PromptForAPIKey
	confirmer    = prompt.DefaultConfirmer
)

// resolveAPIKey handles the logic for finding the API key.
func resolveAPIKey(svc auth.Service, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, ok := getEnvKey(svc); ok {
			return key, auth.SourceEnv, nil
		}
		return "", "", fmt.Errorf("env-only set but %s is not set", svc.EnvVar())
	}

	if key, source := getKey(svc, false); key != "" {
		return key, source, nil
	}

	if allowEnv {
		if key, ok := getEnvKey(svc); ok {
			return key, auth.SourceEnv, nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no API key available (non-interactive shell); set keychain or use --allow-env")
	}
	key, err := promptForKey(fmt.Sprintf("%s API Key (press Enter to skip): ", svc.Label()))
	if err != nil {
		return "", "", fmt.Errorf("error reading API key: %w", err)
	}
	if strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), auth.SourcePrompt, nil
	}

	if allowEnv {
		return "", "", fmt.Errorf("API key is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
}

// maxTextBytes bounds text read from files and stdin.
const maxTextBytes = 4 << 20

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxTextBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readTextFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open text file: %w", err)
	}
	defer f.Close()
	text, err := readText(f)
	if err != nil {
		return "", fmt.Errorf("failed to read text file %s: %w", path, err)
	}
	return text, nil
}

// writeReport stores a JSON report at path. An existing file is replaced only
// after confirmation (or with force); a declined overwrite skips the write.
// It returns the path actually written, or "" when skipped.
func writeReport(cmd *cobra.Command, path string, data []byte, force bool) (string, error) {
	if err := files.RejectSymlinkPath(path); err != nil {
		return "", err
	}

	overwrite := false
	if _, err := os.Stat(path); err == nil {
		ok, err := confirmer().ConfirmOverwrite(path, force)
		if err != nil {
			return "", err
		}
		if !ok {
			logger.Info("Output file exists. Aborted by user.", "path", path)
			return "", nil
		}
		overwrite = true
		logger.Info("Overwriting output file", "path", path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat output path: %w", err)
	}

	effective := path
	if !overwrite {
		safePath, changed, err := files.SafePath(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve output path: %w", err)
		}
		if changed {
			logger.Warn("Output path adjusted to avoid overwrite", "original", path, "effective", safePath)
			effective = safePath
		}
	}

	if err := files.AtomicWrite(effective, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", effective)
	return effective, nil
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

func hasAnyFlagSet(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().Visit(func(_ *pflag.Flag) {
		changed = true
	})
	return changed
}

// zeroFlagNotes reports the named flags that were explicitly set to 0.
// session.Config treats 0 as unset, so such a flag runs at its default.
func zeroFlagNotes(cmd *cobra.Command, names ...string) []string {
	var notes []string
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if v, err := strconv.ParseFloat(f.Value.String(), 64); err == nil && v == 0 {
			notes = append(notes, fmt.Sprintf("%s 0 selects the default %s", name, f.DefValue))
		}
	}
	return notes
}
