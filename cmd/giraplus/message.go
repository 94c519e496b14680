package main

import (
	"fmt"

	"github.com/giraplus/giraplus-go/cli"
	"github.com/spf13/cobra"
)

func newMessageCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "message",
		Short: "Show the message of the day",
		Long: `Fetches the message of the day and prints it as a banner sized to the
terminal (COLUMNS).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := a.client(ctx)
			if err != nil {
				return err
			}

			msg, err := client.GetMessage(ctx)
			if err != nil {
				return err
			}

			if msg.Message == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No message today.")

				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.BannerAutoWidth(ctx, msg.Message, cli.AlignCenter))

			return nil
		},
	}
}
