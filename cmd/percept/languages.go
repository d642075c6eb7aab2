package main

import (
	"fmt"

	"github.com/oukeidos/percept/internal/language"
	"github.com/spf13/cobra"
)

func newLanguagesCmd() *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List detectable languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.ParseLocale(locale)
			if err != nil {
				return fmt.Errorf("invalid locale %q: %w", locale, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Supported Languages:")
			for _, l := range language.Supported() {
				fmt.Fprintf(out, "  %-28s [%s]\n", language.DisplayName(l.Code, tag), l.Code)
			}
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&locale, "locale", "", "Locale for language names (default: OS locale)")
	return cmd
}
