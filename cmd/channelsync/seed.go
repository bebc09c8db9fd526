package main

import (
	"fmt"
	"os"

	"github.com/erp/channelsync/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert channels, status mappings and user channel access from YAML",
		Example: `  channelsync seed --file channels.yaml

  # channels.yaml
  channels:
    - code: web
      name: Web shop
      source: webshop
      company_id: 6f1c...
      warehouse_id: 0b7e...
      currency: EUR
      payment_term_id: 9d2a...
      mappings:
        - {status: paid, action: process_automatically, invoice_method: order, shipment_method: order}
  users:
    - {username: clerk, current_channel: web, create: [web], read: [web]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			return a.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				result, err := c.Seeds.Seed(cmd.Context(), f)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
