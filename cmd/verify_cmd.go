package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supabase/siws/internal/utilities"
	"github.com/supabase/siws/internal/utilities/siws"
)

type verifyOptions struct {
	signature string
	domain    string
	nonce     string
	at        string
	mode      string
}

func verifyCmd() *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [message-file]",
		Short: "Verify a signed message read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			in := cmd.InOrStdin()

			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					logrus.WithError(err).Fatal("unable to open message file")
				}
				defer utilities.SafeClose(f)

				in = f
			}

			msg, err := verify(in, opts)
			if err != nil {
				logrus.WithError(err).Fatal("message did not verify")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "verified message from %s for %s\n", msg.Address(), msg.Domain())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.signature, "signature", "", "base58 encoded Ed25519 signature")
	flags.StringVar(&opts.domain, "domain", "", "expected domain, not checked when empty")
	flags.StringVar(&opts.nonce, "nonce", "", "expected nonce, not checked when empty")
	flags.StringVar(&opts.at, "at", "", "ISO 8601 time to verify at, now when empty")
	flags.StringVar(&opts.mode, "mode", siws.GrammarMode.String(), "parser mode, grammar or pattern")

	_ = cmd.MarkFlagRequired("signature")

	return cmd
}

func verify(in io.Reader, opts *verifyOptions) (*siws.Message, error) {
	mode, err := siws.ParseParserMode(opts.mode)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}

	// editors and shells add a trailing newline
	text := strings.TrimRight(string(raw), "\r\n")

	msg, err := siws.ParseMessage(text, mode)
	if err != nil {
		return nil, err
	}

	params := siws.VerifyParams{
		Domain: opts.domain,
		Nonce:  opts.nonce,
	}

	if opts.at != "" {
		at, err := siws.ParseTimestamp(opts.at)
		if err != nil {
			return nil, fmt.Errorf("invalid --at value %q: %w", opts.at, err)
		}
		params.Timestamp = at.Time()
	} else {
		params.Timestamp = time.Now()
	}

	if err := msg.Verify(opts.signature, params); err != nil {
		return nil, err
	}

	return msg, nil
}
