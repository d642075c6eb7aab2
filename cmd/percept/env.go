package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/oukeidos/percept/internal/auth"
	"github.com/spf13/cobra"
)

var (
	saveKey   = auth.SaveKey
	deleteKey = auth.DeleteKey
)

type envOptions struct {
	service string
	yes     bool
}

func newEnvCmd() *cobra.Command {
	opts := envOptions{}
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the tagging backends' API keys in the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, &opts)
		},
	}

	cmd.SetUsageTemplate(envUsageTemplate)
	cmd.PersistentFlags().StringVar(&opts.service, "service", string(auth.Gemini), "Service to manage (gemini or openai)")
	cmd.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "Replace or delete a stored key without asking")

	cmd.AddCommand(
		newEnvActionCmd("setup", "Save an API key to the keychain (prompt only)", &opts, runEnvSetup),
		newEnvActionCmd("delete", "Delete an API key from the keychain", &opts, runEnvDelete),
		newEnvActionCmd("status", "Show where each key comes from (default action)", &opts, runEnvStatus),
	)
	return cmd
}

func newEnvActionCmd(name, short string, opts *envOptions, run func(*cobra.Command, *envOptions) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

// selectedServices is the --service value, or every service for status when
// the flag was not given.
func selectedServices(cmd *cobra.Command, opts *envOptions, all bool) ([]auth.Service, error) {
	if all && !cmd.Flags().Changed("service") {
		return auth.Services(), nil
	}
	svc, err := auth.ParseService(opts.service)
	if err != nil {
		return nil, err
	}
	return []auth.Service{svc}, nil
}

func runEnvSetup(cmd *cobra.Command, opts *envOptions) error {
	services, err := selectedServices(cmd, opts, false)
	if err != nil {
		return err
	}
	svc := services[0]
	out := cmd.OutOrStdout()

	if getStatus(svc) && !opts.yes {
		ok, err := confirmer().Confirm(fmt.Sprintf("A %s API key is already saved. Replace it?", svc.Label()))
		if err != nil {
			return fmt.Errorf("%w (use -y to replace)", err)
		}
		if !ok {
			fmt.Fprintln(out, "Kept the existing key.")
			return nil
		}
	}

	promptKey, err := promptForKey(fmt.Sprintf("%s API Key: ", svc.Label()))
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	key := strings.TrimSpace(promptKey)
	if key == "" {
		return fmt.Errorf("API key is required for setup")
	}
	if err := saveKey(svc, key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintf(out, "Saved %s API key to keychain.\n", svc)
	return nil
}

func runEnvDelete(cmd *cobra.Command, opts *envOptions) error {
	services, err := selectedServices(cmd, opts, false)
	if err != nil {
		return err
	}
	svc := services[0]
	out := cmd.OutOrStdout()

	if !getStatus(svc) {
		fmt.Fprintf(out, "No %s API key in keychain.\n", svc)
		return nil
	}
	if !opts.yes {
		ok, err := confirmer().Confirm(fmt.Sprintf("Delete the stored %s API key?", svc.Label()))
		if err != nil {
			return fmt.Errorf("%w (use -y to delete)", err)
		}
		if !ok {
			fmt.Fprintln(out, "Key not deleted.")
			return nil
		}
	}
	if err := deleteKey(svc); err != nil {
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintf(out, "Deleted %s API key from keychain.\n", svc)
	return nil
}

func runEnvStatus(cmd *cobra.Command, opts *envOptions) error {
	services, err := selectedServices(cmd, opts, true)
	if err != nil {
		return err
	}
	for _, svc := range services {
		printKeyStatus(cmd.OutOrStdout(), svc)
	}
	return nil
}

// printKeyStatus reports where a key would come from without printing it.
func printKeyStatus(w io.Writer, svc auth.Service) {
	switch {
	case getStatus(svc):
		fmt.Fprintf(w, "%s API Key: Found (source=Keychain)\n", svc)
	case hasEnvKey(svc):
		fmt.Fprintf(w, "%s API Key: Found (source=Environment Variable %s; disabled by default, use --allow-env)\n", svc, svc.EnvVar())
	default:
		fmt.Fprintf(w, "%s API Key: Not Found (keychain empty, %s not set)\n", svc, svc.EnvVar())
	}
}

func hasEnvKey(svc auth.Service) bool {
	key, ok := getEnvKey(svc)
	return ok && key != ""
}
