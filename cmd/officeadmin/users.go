package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/boddenberg/office-admin-go/internal/config"
	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/cache"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/port"
	"github.com/boddenberg/office-admin-go/internal/service"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const (
	usernameFlag = "username"
	passwordFlag = "password"
)

func newCreateUserFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		usernameFlag: &cobraflags.StringFlag{
			Name:  usernameFlag,
			Value: "",
			Usage: "Login name (required)",
		},
		passwordFlag: &cobraflags.StringFlag{
			Name:  passwordFlag,
			Value: "",
			Usage: "Password, stored as a bcrypt hash (required)",
		},
	}
}

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage system users",
	}

	flags := newCreateUserFlags()
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user and print its API secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateUser(cmd, flags)
		},
	}
	cobraflags.RegisterMap(create, flags)
	create.Flags().Bool("superuser", false, "Grant access to every user's records")
	create.Flags().Bool("staff", false, "Mark the user as staff")

	cmd.AddCommand(create)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE:  runListUsers,
	})
	cmd.AddCommand(newSetActiveCommand("activate", "Allow a user to authenticate again", true))
	cmd.AddCommand(newSetActiveCommand("deactivate", "Block a user from authenticating", false))
	return cmd
}

func newSetActiveCommand(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthService(cmd, func(ctx context.Context, svc *service.AuthService) error {
				u, err := svc.SetUserActive(ctx, args[0], active)
				if err != nil {
					return err
				}
				fmt.Printf("user %s active: %t\n", u.Username, u.IsActive)
				return nil
			})
		},
	}
}

// withAuthService runs fn against the configured store. Only a shared redis
// principal cache is opened, so evictions reach running servers.
func withAuthService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.AuthService) error) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	metrics := observability.NewMetrics()
	store, closeStore, err := openStore(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var principals port.Cache[domain.User] = cache.Noop[domain.User]{}
	if cfg.CacheBackend == config.CacheRedis {
		shared, closeCache, err := openPrincipalCache(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		principals = shared
	}

	return fn(ctx, newAuthService(cfg, store, principals, metrics, logger))
}

func runCreateUser(cmd *cobra.Command, flags map[string]cobraflags.Flag) error {
	req := &domain.NewUserRequest{
		Username: flags[usernameFlag].GetString(),
		Password: flags[passwordFlag].GetString(),
	}
	req.IsSuperuser, _ = cmd.Flags().GetBool("superuser")
	req.IsStaff, _ = cmd.Flags().GetBool("staff")
	if req.Username == "" || req.Password == "" {
		return errors.New("--username and --password are required")
	}

	return withAuthService(cmd, func(ctx context.Context, svc *service.AuthService) error {
		u, err := svc.CreateUser(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("created user %s\nid: %s\nx_api_key: %s\n", u.Username, u.ID, u.Secret)
		return nil
	})
}

func runListUsers(cmd *cobra.Command, _ []string) error {
	return withAuthService(cmd, func(ctx context.Context, svc *service.AuthService) error {
		users, err := svc.ListUsers(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tACTIVE\tSUPERUSER\tSTAFF\tCREATED")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%t\t%s\n",
				u.ID, u.Username, u.IsActive, u.IsSuperuser, u.IsStaff, u.CreatedAt.Format("2006-01-02"))
		}
		return tw.Flush()
	})
}
