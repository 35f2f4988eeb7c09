package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clubbrunch/brunch/internal/config"
	"github.com/clubbrunch/brunch/internal/database"
	"github.com/clubbrunch/brunch/internal/utils"
	"github.com/clubbrunch/brunch/pkg/registration"
	"github.com/clubbrunch/brunch/pkg/schedule"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const defaultConfigPath = "./config/application.yaml"

// NewRootCommand builds the brunch command line. Without a sub command the server is started.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "brunch",
		Short:         "Sign-up sheet for the monthly club brunch",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the web server and the reset job",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				if err := database.Migrate(cfg.Database); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the next event and the number of registrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printStatus(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "hash-password <password>",
			Short: "Print a bcrypt hash for the credentials file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(hash))
				return nil
			},
		},
	)
	return root
}

func serve(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	application, err := NewApplication(ctx, cfg)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}

func printStatus(cmd *cobra.Command, configPath string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	scheduleService := schedule.NewService(schedule.NewRepository(db), schedule.NewResolver(loc), utils.SystemClock{Location: loc})
	status, err := scheduleService.Status(ctx)
	if err != nil {
		return err
	}
	lastReset, err := scheduleService.Get(ctx, schedule.LastResetKey)
	if err != nil {
		return err
	}
	count, err := registration.NewRepository(db).Count(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Next event:    %s\n", status.EventDate)
	if status.OverrideDate != "" {
		fmt.Fprintf(out, "Override:      %s\n", status.OverrideDate)
	}
	fmt.Fprintf(out, "Cancelled:     %t\n", status.Cancelled)
	fmt.Fprintf(out, "Registration:  %s\n", openClosed(status.Open))
	fmt.Fprintf(out, "Participants:  %d\n", count)
	if lastReset != "" {
		fmt.Fprintf(out, "Last reset:    %s\n", lastReset)
	}
	return nil
}

func openClosed(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}
