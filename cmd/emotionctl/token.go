package main

import (
	"fmt"
	"time"

	jwtPkg "EmotionLens/pkg/jwt"

	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for the history endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, exp, err := jwtPkg.Sign(map[string]interface{}{"sub": tokenSubject}, tokenTTL)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(exp, 0).Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}
