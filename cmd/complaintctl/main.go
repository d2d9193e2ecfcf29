package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/observability"
	"github.com/resolvease/complaint-service/internal/persistence"
	"github.com/resolvease/complaint-service/internal/repository"
	"github.com/resolvease/complaint-service/internal/service"
)

var errNoDatabase = errors.New("POSTGRES_DSN is required")

// backend opens the stores a command operates on.
type backend struct {
	cfg       *config.Config
	logger    *zap.Logger
	openUsers func(ctx context.Context) (repository.UserRepository, func(), error)
	migrate   func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	cmd := newRootCommand(postgresBackend(cfg, logger))
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func postgresBackend(cfg *config.Config, logger *zap.Logger) *backend {
	connect := func(ctx context.Context) (*persistence.Postgres, error) {
		if cfg.Postgres.DSN == "" {
			return nil, errNoDatabase
		}
		return persistence.NewPostgres(ctx, cfg.Postgres, logger)
	}
	return &backend{
		cfg:    cfg,
		logger: logger,
		openUsers: func(ctx context.Context) (repository.UserRepository, func(), error) {
			pg, err := connect(ctx)
			if err != nil {
				return nil, nil, err
			}
			return repository.NewUserRepository(pg.PoolHandle()), pg.Close, nil
		},
		migrate: func(ctx context.Context) error {
			pg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pg.Close()
			return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
		},
	}
}

func newRootCommand(b *backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "complaintctl",
		Short:         "Operator tooling for the complaint service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCommand(b))
	cmd.AddCommand(newCreateAdminCommand(b))
	return cmd
}

func newMigrateCommand(b *backend) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := b.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateAdminCommand(b *backend) *cobra.Command {
	var input service.ProvisionAdminInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an administrator account",
		Long:  "Create an admin account directly in the store. Public registration never grants the admin role.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, closeFn, err := b.openUsers(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return createAdmin(cmd.Context(), cmd.OutOrStdout(), service.NewUserService(b.cfg.Auth, users), input)
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&input.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&input.Department, "department", "", "Department")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, out io.Writer, users *service.UserService, input service.ProvisionAdminInput) error {
	admin, err := users.ProvisionAdmin(ctx, input)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(out, "admin %s created with id %s\n", admin.Email, admin.ID)
	return nil
}
