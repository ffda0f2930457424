package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/i474232898/weatherpick/internal/view"
	"github.com/i474232898/weatherpick/internal/weather"
)

type rootOptions struct {
	output string
	api    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "weatherpick",
		Short:        "Look up current weather by region or coordinates",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unsupported --output %q (text|json)", opts.output)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	cmd.PersistentFlags().StringVar(&opts.api, "api", "", "Override WEATHERPICK_API_BASE_URL")

	cmd.AddCommand(
		newSearchCommand(opts),
		newCoordsCommand(opts),
		newLocateCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <region...>",
		Short: "Search by place name or address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.api)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			st := a.orchestrator.SearchByRegion(cmd.Context(), strings.Join(args, " "))
			return a.print(cmd.OutOrStdout(), opts.output, st)
		},
	}
}

func newCoordsCommand(opts *rootOptions) *cobra.Command {
	var lon, lat float64

	cmd := &cobra.Command{
		Use:   "coords",
		Short: "Search by longitude and latitude",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts.api)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			st := a.orchestrator.SearchByCoordinates(cmd.Context(), lon, lat)
			return a.print(cmd.OutOrStdout(), opts.output, st)
		},
	}
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	_ = cmd.MarkFlagRequired("lon")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

func newLocateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Search by the configured device position",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts.api)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			st, err := a.orchestrator.SearchByCurrentPosition(cmd.Context())
			var serr weather.SensorError
			if errors.As(err, &serr) {
				// Already reported through the notifier.
				return fmt.Errorf("no position fix (code %d)", serr.Code)
			}
			return a.print(cmd.OutOrStdout(), opts.output, st)
		},
	}
}

func (a *app) print(w io.Writer, format string, st weather.State) error {
	v := view.Build(st, a.transformer)
	if format == "json" {
		out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	return view.WriteCard(w, v)
}
