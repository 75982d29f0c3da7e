package main

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"

	auth "github.com/webafan/portfolio-auth"
	"github.com/webafan/portfolio-auth/config"
	"github.com/webafan/portfolio-auth/repository"
)

// NewUserCmd creates the user subcommand group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user records in the configured store",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserSetActiveCmd("disable", false))
	cmd.AddCommand(newUserSetActiveCmd("enable", true))

	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		username string
		password string
		role     string
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Insert a user record",
		Long: `Insert a user with a hashed credential. When --password is omitted the
password is read from the first line of stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}

			parsedRole, ok := auth.ParseRole(role)
			if !ok {
				return goerrors.New("invalid role "+role, goerrors.CategoryBadInput).
					WithMetadata(map[string]any{"roles": auth.GetAllRoles()})
			}

			if password == "" {
				if password, err = passwordArg(cmd, nil); err != nil {
					return err
				}
			}

			hasher, err := auth.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}

			users, closeFn, err := openUsers(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			created, err := users.Create(cmd.Context(), &auth.User{
				Username:     username,
				PasswordHash: hash,
				Role:         parsedRole,
				IsActive:     !inactive,
			})
			if err != nil {
				return err
			}

			cmd.Printf("created user %s (%s, role %s)\n", created.Username, created.ID, created.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username (required)")
	cmd.Flags().StringVar(&password, "password", "", "plaintext password")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "role (USER, ADMIN)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the user disabled")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newUserSetActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}

			users, closeFn, err := openUsers(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := users.SetActive(cmd.Context(), args[0], active); err != nil {
				return err
			}

			cmd.Printf("user %s %sd\n", args[0], use)
			return nil
		},
	}
}

func openUsers(ctx context.Context, cfg *config.Config) (*repository.Users, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewUsers(db), func() { _ = db.Close() }, nil
}
