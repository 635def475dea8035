package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supabase/siws/internal/utilities/siws"
)

var nonceCmd = cobra.Command{
	Use:   "nonce",
	Short: "Print a random nonce for a message",
	Run: func(cmd *cobra.Command, args []string) {
		nonce, err := siws.GenerateNonce()
		if err != nil {
			logrus.WithError(err).Fatal("unable to generate nonce")
		}

		fmt.Fprintln(cmd.OutOrStdout(), nonce)
	},
}
