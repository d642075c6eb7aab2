package main

import (
	"fmt"

	"github.com/oukeidos/percept/internal/metadata"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List tagging backends and their known models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, b := range metadata.Backends {
				fmt.Fprintf(out, "%s:\n", b)
				def := metadata.DefaultModel(b)
				for _, m := range metadata.Models(b) {
					marker := ""
					if m.ID == def {
						marker = " (default)"
					}
					fmt.Fprintf(out, "  %-26s %s%s\n", m.ID, m.Label, marker)
				}
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
