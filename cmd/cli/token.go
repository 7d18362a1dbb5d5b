package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SergeySenin/user-service/internal/auth"
)

var tokenAdmin bool

var tokenCmd = &cobra.Command{
	Use:   "token <userId>",
	Short: "Mint a bearer token for a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var userID int64
		if _, err := fmt.Sscanf(args[0], "%d", &userID); err != nil || userID <= 0 {
			fmt.Fprintln(os.Stderr, "Error: userId must be a positive integer")
			os.Exit(1)
		}

		if len(cfg.JWTSecret) == 0 {
			fmt.Fprintln(os.Stderr, "Error: JWT_SECRET environment variable not set")
			os.Exit(1)
		}

		token, expiresAt, err := auth.NewService(cfg.JWTSecret).IssueToken(userID, tokenAdmin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to sign token: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.UTC().Format("2006-01-02 15:04:05 MST"))
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "Mint an admin token")
}
