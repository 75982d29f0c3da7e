package main

import (
	"bufio"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"

	auth "github.com/webafan/portfolio-auth"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	var (
		algorithm string
		cost      int
	)

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a password hash for seeding a user store",
		Long: `Hash a password with the configured algorithm and print the result.
When no argument is given the password is read from the first line of stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(cmd, args)
			if err != nil {
				return err
			}

			hasher, err := auth.NewHasher(algorithm, cost)
			if err != nil {
				return err
			}

			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}

			cmd.Println(hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", auth.HasherBcrypt, "hash algorithm (bcrypt, argon2id)")
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost, 0 for the default")

	return cmd
}

func passwordArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read password")
		}
		return "", auth.ErrNoEmptyString
	}
	return password, nil
}
