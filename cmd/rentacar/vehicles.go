package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"rentacar/internal/models"
	"rentacar/internal/service"

	"github.com/spf13/cobra"
)

// readJSON decodes a JSON document from path, or from stdin when path is "-".
func readJSON(path string, in io.Reader, out any) error {
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func vehicleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicle",
		Short: "Manage the vehicle catalog with the stored admin token",
	}

	withService := func(run func(ctx context.Context, svc *service.ReservationService, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("cli")
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			svc, db, err := core(cfg, logger, "")
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()
			return run(ctx, svc, cmd, args)
		}
	}

	var createFile string
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a vehicle from a JSON file",
		RunE: withService(func(ctx context.Context, svc *service.ReservationService, cmd *cobra.Command, _ []string) error {
			var in models.VehicleInput
			if err := readJSON(createFile, cmd.InOrStdin(), &in); err != nil {
				return err
			}
			created, err := svc.CreateVehicle(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(created)
		}),
	}
	create.Flags().StringVarP(&createFile, "file", "f", "-", "Vehicle JSON (- for stdin)")

	var updateFile string
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Apply a partial update from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, svc *service.ReservationService, cmd *cobra.Command, args []string) error {
			var patch models.VehiclePatch
			if err := readJSON(updateFile, cmd.InOrStdin(), &patch); err != nil {
				return err
			}
			updated, err := svc.UpdateVehicle(ctx, models.ID(args[0]), patch)
			if err != nil {
				return err
			}
			return printJSON(updated)
		}),
	}
	update.Flags().StringVarP(&updateFile, "file", "f", "-", "Patch JSON (- for stdin)")

	cmd.AddCommand(create, update,
		&cobra.Command{
			Use:   "delete ID",
			Short: "Remove a vehicle",
			Args:  cobra.ExactArgs(1),
			RunE: withService(func(ctx context.Context, svc *service.ReservationService, _ *cobra.Command, args []string) error {
				if err := svc.DeleteVehicle(ctx, models.ID(args[0])); err != nil {
					return err
				}
				fmt.Printf("vehicle %s deleted\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status ID STATUS",
			Short: "Set the maintenance status of a vehicle",
			Args:  cobra.ExactArgs(2),
			RunE: withService(func(ctx context.Context, svc *service.ReservationService, _ *cobra.Command, args []string) error {
				updated, err := svc.UpdateVehicleStatus(ctx, models.ID(args[0]), args[1])
				if err != nil {
					return err
				}
				fmt.Printf("vehicle %s is now %s\n", updated.ID, updated.Status)
				return nil
			}),
		},
	)
	return cmd
}
