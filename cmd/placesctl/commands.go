package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zatekoja/placesreview/internal/bootstrap"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/pkg/geo"
)

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every record from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			return withRuntime(cmd, func(rt *bootstrap.Runtime) error {
				if err := rt.Services.Admin.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "store reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(rt *bootstrap.Runtime) error {
				ctx := cmd.Context()
				if reset {
					if err := rt.Services.Admin.Reset(ctx); err != nil {
						return err
					}
				}
				result, err := seed(ctx, rt.Services)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "seeded %d users, %d places, %d reviews, %d questions\n",
					result.Users, result.Places, result.Reviews, result.Questions)

				counts, err := rt.Services.Admin.Counts(ctx)
				if err != nil {
					return err
				}
				for _, kind := range entities.AllKinds() {
					fmt.Fprintf(out, "  %-14s %d\n", kind, counts[kind])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "reset the store before seeding")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "status <place-id>",
		Short: "Show the opening status of a place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Time{}
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be an RFC 3339 time: %w", err)
				}
				when = parsed
			}
			return withRuntime(cmd, func(rt *bootstrap.Runtime) error {
				details, err := rt.Services.Places.Details(cmd.Context(), args[0], "", when, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", details.Place.Name, details.Status.State, details.Status.Message)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate at this RFC 3339 time instead of now")
	return cmd
}

func newDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance <lat1> <lng1> <lat2> <lng2>",
		Short: "Great-circle distance in kilometres",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords := make([]float64, len(args))
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid coordinate %q", arg)
				}
				coords[i] = v
			}
			km := geo.Distance(geo.Point{Lat: coords[0], Lng: coords[1]}, geo.Point{Lat: coords[2], Lng: coords[3]})
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f km\n", km)
			return nil
		},
	}
}
