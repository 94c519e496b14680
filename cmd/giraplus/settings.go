package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/giraplus/giraplus-go/knownerrors"
	"github.com/giraplus/giraplus-go/settings"
	"github.com/spf13/cobra"
)

func newSettingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the settings read from GIRA_SETTINGS_*",
		Long: `Prints the settings as JSON, together with the locale they resolve to on
this system.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := settings.Load(ctx, settings.EnvStore{})
			if err != nil {
				return err
			}

			out := struct {
				settings.Settings

				ResolvedLocale settings.Locale `json:"resolvedLocale"`
			}{s, settings.ResolveLocale(s, settings.SystemLanguage(ctx))}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(out)
		},
	}
}

func newKnownErrorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "known-errors",
		Short: "List the known back-end errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := knownerrors.Default()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd
			fmt.Fprintln(tw, "ID\tRETRY\tDESCRIPTION")

			for _, id := range catalog.IDs() {
				entry, _ := catalog.Lookup(id)
				fmt.Fprintf(tw, "%s\t%t\t%s\n", entry.ID, entry.Retry, entry.Description)
			}

			if err := tw.Flush(); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%d known errors\n", catalog.Len())

			return err
		},
	}
}
