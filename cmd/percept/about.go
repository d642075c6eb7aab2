package main

import (
	"fmt"
	"strings"

	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/metadata"
	"github.com/oukeidos/percept/internal/version"
	"github.com/spf13/cobra"
)

const projectURL = "https://github.com/oukeidos/percept"

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			backends := make([]string, len(metadata.Backends))
			for i, b := range metadata.Backends {
				backends[i] = string(b)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: text language detection and image tagging\n", version.Name, version.Version)
			fmt.Fprintf(out, "Detects %d languages offline; tags images with the %s backends.\n",
				len(language.Supported()), strings.Join(backends, ", "))
			fmt.Fprintln(out, projectURL)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
