package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supabase/siws/internal/utilities/siws"
)

type prepareOptions struct {
	domain         string
	address        string
	statement      string
	uri            string
	version        string
	chainID        uint64
	nonce          string
	issuedAt       string
	expirationTime string
	notBefore      string
	requestID      string
	resources      []string
}

func prepareCmd() *cobra.Command {
	opts := &prepareOptions{}

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Print the message text a wallet signs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			text, err := prepare(cmd, opts, time.Now())
			if err != nil {
				logrus.WithError(err).Fatal("unable to prepare message")
			}

			fmt.Fprint(cmd.OutOrStdout(), text)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.domain, "domain", "", "domain requesting the signature")
	flags.StringVar(&opts.address, "address", "", "base58 encoded Solana address of the signer")
	flags.StringVar(&opts.statement, "statement", "", "human readable statement shown to the signer")
	flags.StringVar(&opts.uri, "uri", "", "URI of the resource that is the subject of the signing")
	flags.StringVar(&opts.version, "message-version", "1", "message version")
	flags.Uint64Var(&opts.chainID, "chain-id", 1, "chain the session is bound to")
	flags.StringVar(&opts.nonce, "nonce", "", "nonce, a random one is generated when empty")
	flags.StringVar(&opts.issuedAt, "issued-at", "", "ISO 8601 issue time, now when empty")
	flags.StringVar(&opts.expirationTime, "expiration-time", "", "ISO 8601 time the message expires")
	flags.StringVar(&opts.notBefore, "not-before", "", "ISO 8601 time the message becomes valid")
	flags.StringVar(&opts.requestID, "request-id", "", "system specific request identifier")
	flags.StringArrayVar(&opts.resources, "resource", nil, "resource URI, may be repeated")

	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("uri")

	return cmd
}

// prepare builds the message from the flags that were set and renders it.
func prepare(cmd *cobra.Command, opts *prepareOptions, now time.Time) (string, error) {
	record := map[string]any{
		siws.FieldDomain:  opts.domain,
		siws.FieldAddress: opts.address,
		siws.FieldURI:     opts.uri,
		siws.FieldVersion: opts.version,
		siws.FieldChainID: opts.chainID,
	}

	if opts.nonce == "" {
		nonce, err := siws.GenerateNonce()
		if err != nil {
			return "", err
		}
		record[siws.FieldNonce] = nonce
	} else {
		record[siws.FieldNonce] = opts.nonce
	}

	optional := map[string]string{
		"statement":       siws.FieldStatement,
		"issued-at":       siws.FieldIssuedAt,
		"expiration-time": siws.FieldExpirationTime,
		"not-before":      siws.FieldNotBefore,
		"request-id":      siws.FieldRequestID,
	}

	for flag, field := range optional {
		if cmd.Flags().Changed(flag) {
			value, err := cmd.Flags().GetString(flag)
			if err != nil {
				return "", err
			}
			record[field] = value
		}
	}

	if len(opts.resources) > 0 {
		record[siws.FieldResources] = opts.resources
	}

	msg, err := siws.NewMessageFromMap(record)
	if err != nil {
		return "", err
	}

	return msg.WithResolvedTimestamp(now).PrepareMessage()
}
