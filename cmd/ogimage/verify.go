package main

import (
	"encoding/json"
	"errors"

	"github.com/chimerakang/ogimage-go/token"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a signed token and print its claims in signing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := a.config().Secret
			if secret == "" {
				return errors.New("no secret configured (use --secret or OGIMAGE_SECRET)")
			}
			claims, err := token.Verify(args[0], secret)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}
