package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/parade-state/api"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// =============================================================================
// SERVE
// =============================================================================

// ServeCmd runs the HTTP server.
func ServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions) error {
	rt, err := opts.open()
	if err != nil {
		return err
	}
	defer rt.close()

	handler := api.NewHandler(rt.svc, rt.log)
	router := api.NewRouter(handler, rt.cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", rt.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("Server starting", zap.Int("port", rt.cfg.Server.Port), zap.String("store", rt.cfg.Store.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	case <-contextOrBackground(ctx).Done():
	}

	rt.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	rt.log.Info("Server stopped")
	return nil
}

// =============================================================================
// SWEEP
// =============================================================================

// SweepCmd deletes expired status rows.
func SweepCmd(opts *globalOptions) *cobra.Command {
	var today string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete status rows that ended before today",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := optionalDate(today)
			if err != nil {
				return err
			}
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			result, err := rt.svc.Sweep(contextOrBackground(cmd.Context()), date)
			if err != nil {
				return err
			}
			fmt.Printf("Sweep for %s: %s removed", result.Today,
				color.New(color.FgGreen).Sprint(len(result.Removed)))
			if len(result.Failed) > 0 {
				fmt.Printf(", %s failed", color.New(color.FgRed).Sprint(len(result.Failed)))
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "sweep as of this date (DDMMYYYY)")
	return cmd
}

// =============================================================================
// PARADE
// =============================================================================

// ParadeCmd prints who is away.
func ParadeCmd(opts *globalOptions) *cobra.Command {
	var group, date string
	var all bool
	cmd := &cobra.Command{
		Use:   "parade",
		Short: "Print the parade state for a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := optionalDate(date)
			if err != nil {
				return err
			}
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()
			ctx := contextOrBackground(cmd.Context())

			if d.IsZero() {
				d = rt.svc.Today()
			}
			label := group
			if strings.TrimSpace(label) == "" {
				label = "all groups"
			}
			fmt.Printf("Parade state for %s on %s\n\n", color.New(color.Bold).Sprint(label), d)

			if all {
				rows, err := rt.svc.RosterView(ctx, group, d)
				if err != nil {
					return err
				}
				present := 0
				for _, row := range rows {
					mark := color.New(color.FgGreen).Sprint("PRESENT")
					if row.Away {
						mark = color.New(color.FgYellow).Sprintf("%-7s", strings.ToUpper(row.Status))
					} else {
						present++
					}
					fmt.Printf("  %s  %-8s %s\n", mark, row.ID, row.Name)
				}
				fmt.Printf("\n%d/%d present\n", present, len(rows))
				return nil
			}

			rows, err := rt.svc.ParadeState(ctx, group, d)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println(color.New(color.FgGreen).Sprint("Everyone present"))
				return nil
			}
			for _, row := range rows {
				fmt.Printf("  %s  %-8s %-24s %s\n", kindColor(row.Status).Sprintf("%-7s", row.Status), row.ID, row.Name, row.Description())
			}
			fmt.Printf("\n%d away\n", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group label (blank for all)")
	cmd.Flags().StringVar(&date, "date", "", "date (DDMMYYYY), default today")
	cmd.Flags().BoolVar(&all, "all", false, "list the whole roster with away flags")
	return cmd
}

func kindColor(kind string) *color.Color {
	switch paradestate.KindPriority(kind) {
	case 0:
		return color.New(color.FgCyan)
	case 1:
		return color.New(color.FgYellow)
	case 2:
		return color.New(color.FgRed)
	}
	return color.New(color.FgMagenta)
}

// =============================================================================
// OUTLIERS
// =============================================================================

// OutliersCmd prints the outlier tally for a conduct.
func OutliersCmd(opts *globalOptions) *cobra.Command {
	var group, name string
	cmd := &cobra.Command{
		Use:   "outliers",
		Short: "Print how often each person sat out a conduct",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			report, err := rt.svc.Outliers(contextOrBackground(cmd.Context()), group, name)
			if err != nil {
				return err
			}
			if !report.Match.Found {
				fmt.Println(color.New(color.FgYellow).Sprintf("No conduct matching %q for %s", name, group))
				return nil
			}
			heading := fmt.Sprintf("%s / %s", report.Match.Group, report.Match.Name)
			if report.Match.Fuzzy {
				heading += color.New(color.FgHiMagenta).Sprintf(" (closest match, score %.2f)", report.Match.Score)
			}
			fmt.Printf("%s: %d sessions\n\n", color.New(color.Bold).Sprint(heading), report.Match.Sessions)
			if len(report.Tallies) == 0 {
				fmt.Println(color.New(color.FgGreen).Sprint("No outliers"))
				return nil
			}
			for _, t := range report.Tallies {
				fmt.Printf("  %-20s %3d  %s\n", t.Token, t.Count,
					color.New(color.FgCyan).Sprint(t.Rate(report.Match.Sessions).Mul(hundred).StringFixed(1)+"%"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group label")
	cmd.Flags().StringVar(&name, "conduct", "", "conduct name")
	cmd.MarkFlagRequired("group")
	cmd.MarkFlagRequired("conduct")
	return cmd
}

// =============================================================================
// SEED
// =============================================================================

// SeedCmd loads a demo dataset.
func SeedCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <scenario>",
		Short: "Wipe the store and load a demo dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()
			if err := api.LoadScenarioByID(contextOrBackground(cmd.Context()), rt.svc, args[0]); err != nil {
				return err
			}
			fmt.Printf("%s scenario %s\n", color.New(color.FgGreen).Sprint("Loaded"), args[0])
			return nil
		},
	}
}

func optionalDate(raw string) (generic.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return generic.Date{}, nil
	}
	date := paradestate.NormalizeDate(raw)
	if date == "" {
		return generic.Date{}, &generic.MalformedDateError{Value: raw, Reason: "not a DDMMYYYY date"}
	}
	return generic.ParseDate(date)
}

var hundred = decimal.NewFromInt(100)
