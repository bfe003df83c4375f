package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		pf      paramFlags
		asJSON  bool
		headers []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Request an image and print its location",
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
			opts.JSON = asJSON
			if opts.Headers, err = parseHeaders(headers); err != nil {
				return err
			}

			res, err := client.CreateImage(cmd.Context(), params, opts)
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), res.Location)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.JSON)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Request and print the JSON response instead of the location")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Extra request header as 'Name: value' (repeatable)")
	return cmd
}
