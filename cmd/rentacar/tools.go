package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"rentacar/internal/auth"
	"rentacar/internal/config"
	"rentacar/internal/database"
	"rentacar/internal/domain"
	"rentacar/internal/export"
	"rentacar/internal/gateway"
	"rentacar/internal/models"
	"rentacar/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const cliTimeout = 30 * time.Second

// core opens the token store and builds the reservation service used by the operator commands.
func core(cfg *config.Config, logger *zerolog.Logger, today string) (*service.ReservationService, *database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	client := operatorClient(cfg, db, logger)
	svc := service.NewReservationService(client, client, nil, cfg.Availability.FailClosed, logger)

	if today != "" {
		day, err := models.ParseDate(today)
		if err != nil || day.IsZero() {
			db.Close()
			return nil, nil, fmt.Errorf("invalid --today %q", today)
		}
		svc.WithClock(func() time.Time { return day.Time() })
	}
	return svc, db, nil
}

// operatorClient sends the stored token on every request and forgets it once the API rejects it.
func operatorClient(cfg *config.Config, db *database.DB, logger *zerolog.Logger) *gateway.Client {
	return gateway.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, db, logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func quoteCmd() *cobra.Command {
	var price float64

	cmd := &cobra.Command{
		Use:   "quote START END",
		Short: "Compute the day count and price of a stay",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stay, err := service.QuoteStay(args[0], args[1], price)
			if err != nil {
				return err
			}
			fmt.Printf("%d day(s), total %.2f\n", stay.Days, stay.TotalPrice)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&price, "price", "p", 0, "Price per day")
	return cmd
}

func availabilityCmd() *cobra.Command {
	var (
		start, end, policy, today string
		asJSON                    bool
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "List vehicles for a date window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("cli")
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			svc, db, err := core(cfg, logger, today)
			if err != nil {
				return err
			}
			defer db.Close()

			if policy == "" {
				policy = cfg.Availability.DefaultPolicy
			}
			p, err := service.ParsePolicy(policy)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			result, err := svc.AvailableVehicles(ctx, models.DateRange{StartDate: start, EndDate: end}, p)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(result)
			}

			if result.AvailabilityUnknown {
				fmt.Printf("warning: reservations unavailable (%s); no vehicle marked reserved\n", result.ReservationsError)
			}
			for _, v := range result.Vehicles {
				fmt.Printf("%-6s %-24s %-12s %-22s %8.2f\n", v.ID, v.Name, v.Type, v.EffectiveStatus, v.PricePerDay)
			}
			fmt.Printf("%d vehicle(s)\n", len(result.Vehicles))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&policy, "policy", "", "hide or label (default from config)")
	cmd.Flags().StringVar(&today, "today", "", "Override today's date")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		out, from, to, status, search, today string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reservations to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("cli")
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			svc, db, err := core(cfg, logger, today)
			if err != nil {
				return err
			}
			defer db.Close()

			period := export.Period{}
			if period.From, err = models.ParseDate(from); err != nil {
				return err
			}
			if period.To, err = models.ParseDate(to); err != nil {
				return err
			}

			query := service.ReservationQuery{Search: search, SortBy: service.SortStartDate}
			if status != "" {
				query.Status = models.DisplayStatus(status)
				if !query.Status.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			views, err := svc.AllReservations(ctx, query)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("reservations_%s.xlsx", svc.Today())
			}
			if err := export.SaveAs(out, views, period); err != nil {
				return err
			}
			fmt.Printf("%d reservation(s) written to %s\n", len(views), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	cmd.Flags().StringVar(&from, "from", "", "Calendar start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Calendar end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "active, upcoming or completed")
	cmd.Flags().StringVar(&search, "search", "", "Free-text filter")
	cmd.Flags().StringVar(&today, "today", "", "Override today's date")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored API token used by operator commands",
	}

	withStore := func(run func(ctx context.Context, client *gateway.Client, db *database.DB, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("cli")
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			db, err := database.NewDB(cfg.Database.Path, logger)
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), cliTimeout)
			defer cancel()
			return run(ctx, operatorClient(cfg, db, logger), db, args)
		}
	}

	var email, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in to the API and store the issued token",
		RunE: withStore(func(ctx context.Context, client *gateway.Client, db *database.DB, _ []string) error {
			if password == "" {
				password = os.Getenv("RENTACAR_PASSWORD")
			}
			logger := zerolog.Ctx(ctx)
			session, err := service.NewAuthService(client, logger).Login(ctx, models.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			return saveSession(ctx, db, session)
		}),
	}
	login.Flags().StringVar(&email, "email", "", "Account email")
	login.Flags().StringVar(&password, "password", "", "Account password (default $RENTACAR_PASSWORD)")
	cmd.AddCommand(login)

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the stored token with the API",
		RunE: withStore(func(ctx context.Context, client *gateway.Client, _ *database.DB, _ []string) error {
			valid, err := client.ValidateToken(ctx)
			if err != nil {
				return err
			}
			if !valid {
				return errors.New("stored token is not valid; run token login")
			}
			fmt.Println("stored token is valid")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set TOKEN",
		Short: "Store a bearer token and the profile it carries",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, _ *gateway.Client, db *database.DB, args []string) error {
			return storeToken(ctx, db, strings.TrimSpace(args[0]))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored profile",
		RunE: withStore(func(ctx context.Context, _ *gateway.Client, db *database.DB, _ []string) error {
			profile, err := db.Profile(ctx)
			if err != nil {
				return err
			}
			if profile == nil {
				fmt.Println("no stored profile")
				return nil
			}
			return printJSON(profile)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the stored token",
		RunE: withStore(func(ctx context.Context, _ *gateway.Client, db *database.DB, _ []string) error {
			return db.ClearToken(ctx)
		}),
	})
	return cmd
}

type profileStore interface {
	domain.CredentialStore
	SaveProfile(ctx context.Context, p database.Profile) error
}

// storeToken saves the token and, when its claims are readable, the profile they describe.
func storeToken(ctx context.Context, store profileStore, token string) error {
	if token == "" {
		return auth.ErrNoToken
	}
	if err := store.SaveToken(ctx, token); err != nil {
		return err
	}

	claims, err := auth.ClaimsFromToken(token)
	if err != nil {
		fmt.Println("token stored; claims unreadable, profile not updated")
		return nil
	}
	profile := database.Profile{ID: claims.UserID, Email: claims.Email, Name: claims.Email, Role: string(claims.Role)}
	if err := store.SaveProfile(ctx, profile); err != nil {
		return err
	}
	fmt.Printf("token stored for %s (%s)\n", claims.Email, claims.Role)
	return nil
}

// saveSession stores a fresh login and the profile of the account it belongs to.
func saveSession(ctx context.Context, store profileStore, session *models.Session) error {
	if err := store.SaveToken(ctx, session.Token); err != nil {
		return err
	}
	user := session.User
	profile := database.Profile{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  string(auth.RoleFromClaim(user.Role)),
	}
	if err := store.SaveProfile(ctx, profile); err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.Name, profile.Role)
	return nil
}
