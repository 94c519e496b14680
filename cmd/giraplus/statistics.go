package main

import (
	"fmt"

	"github.com/giraplus/giraplus-go/cli"
	"github.com/giraplus/giraplus-go/giramais"
	"github.com/spf13/cobra"
)

func newUsageCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Report that the app was used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), cmd.OutOrStdout(), func(r *giramais.Reporter) {
				r.AppUsage()
			})
		},
	}
}

// TripOptions holds the flags of the trip command.
type TripOptions struct {
	Bike    string
	Station string
}

func newTripCommand(a *app) *cobra.Command {
	opts := &TripOptions{}

	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Report the start of a trip",
		Example: `  # Trip started at a station
  giraplus trip --bike E0123 --station S42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), cmd.OutOrStdout(), func(r *giramais.Reporter) {
				r.TripStart(optional(opts.Bike), optional(opts.Station))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Bike, "bike", "b", "", "Bike serial number")
	cmd.Flags().StringVarP(&opts.Station, "station", "s", "", "Station serial number")

	return cmd
}

// ErrorOptions holds the flags of the error command.
type ErrorOptions struct {
	Code    string
	Message string
}

func newErrorCommand(a *app) *cobra.Command {
	opts := &ErrorOptions{}

	cmd := &cobra.Command{
		Use:   "error",
		Short: "Report an error",
		Long:  `Reports an error code to the back end. The code is asked for when --code is omitted.`,
		Example: `  giraplus error --code UNLOCK_FAILED --message "dock did not open"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code := opts.Code
			if code == "" {
				var err error

				if code, err = a.prompter.String("Error code"); err != nil {
					return err
				}
			}

			return a.report(cmd.Context(), cmd.OutOrStdout(), func(r *giramais.Reporter) {
				r.Error(code, optional(opts.Message))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Code, "code", "c", "", "Error code")
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Error message")

	return cmd
}

// RateOptions holds the flags of the rate command.
type RateOptions struct {
	Bike   string
	Rating string
}

func newRateCommand(a *app) *cobra.Command {
	opts := &RateOptions{}

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Rate a bike",
		Long: `Rates a bike from 1 to 5. Without --rating the rating is picked from a
menu and confirmed before it is sent.`,
		Example: `  # Rate directly
  giraplus rate --bike E0123 --rating 5

  # Pick the rating interactively
  giraplus rate --bike E0123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Rating != "" {
				rating, err := cli.ParseRating(opts.Rating)
				if err != nil {
					return err
				}

				return a.rate(cmd, opts.Bike, rating)
			}

			rating, err := a.prompter.Rating("How was bike " + opts.Bike + "?")
			if err != nil {
				return err
			}

			ok, err := a.prompter.Confirm("Send " + cli.Stars(rating))
			if err != nil {
				return err
			}

			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Rating not sent.")

				return nil
			}

			return a.rate(cmd, opts.Bike, rating)
		},
	}

	cmd.Flags().StringVarP(&opts.Bike, "bike", "b", "", "Bike serial number")
	cmd.Flags().StringVarP(&opts.Rating, "rating", "r", "", "Rating from 1 to 5")
	_ = cmd.MarkFlagRequired("bike")

	return cmd
}

func (a *app) rate(cmd *cobra.Command, bike string, rating int) error {
	return a.report(cmd.Context(), cmd.OutOrStdout(), func(r *giramais.Reporter) {
		r.BikeRating(bike, rating)
	})
}
