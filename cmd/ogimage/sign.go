package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignCmd(a *app) *cobra.Command {
	var pf paramFlags
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signed token for an image request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			params, opts, err := pf.build()
			if err != nil {
				return err
			}
			signed, err := client.SignedToken(params, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func newURLCmd(a *app) *cobra.Command {
	var pf paramFlags
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the signed request URL without calling the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			params, opts, err := pf.build()
			if err != nil {
				return err
			}
			u, err := client.SignedURL(params, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}
