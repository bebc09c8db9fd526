package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tradeapp "github.com/erp/channelsync/internal/application/trade"
	"github.com/erp/channelsync/internal/bootstrap"
	"github.com/erp/channelsync/internal/interfaces/http/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <order-id> <status>",
		Short: "Apply an external channel status to one order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			return a.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				result, err := c.ChannelSync.SyncToChannelState(cmd.Context(), orderID, args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		file        string
		strict      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply external channel statuses to many orders",
		Long: `Apply the statuses listed in a YAML file. Per-order failures are reported
in the output and make the command exit non-zero. A strict batch is refused
up front when any listed order has an unresolved channel exception.

--strict defaults to sync.strict_batch, or to the file's own strict flag.`,
		Example: `  channelsync batch --file requests.yaml --strict

  # requests.yaml
  requests:
    - {order_id: 3b0f..., status: paid}
    - {order_id: 7c21..., status: shipped}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open batch file: %w", err)
			}
			defer f.Close()

			req, err := parseBatchFile(f)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strict") {
				req.Strict = strict
			} else {
				req.Strict = req.Strict || a.cfg.Sync.StrictBatch
			}

			return a.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				result, err := c.ChannelSync.SyncBatch(cmd.Context(), req.Requests, req.Strict, concurrency)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				if result.Failed > 0 {
					return fmt.Errorf("%d of %d orders failed to sync", result.Failed, len(result.Results))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the sync requests")
	cmd.Flags().BoolVar(&strict, "strict", false, "refuse the batch when an order has unresolved exceptions")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "orders synced in parallel (default sync.batch_concurrency)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

var batchValidator = newBatchValidator()

func newBatchValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := middleware.RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// parseBatchFile decodes and validates a batch request document
func parseBatchFile(r io.Reader) (*tradeapp.BatchSyncRequest, error) {
	var req tradeapp.BatchSyncRequest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if err := batchValidator.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid batch file: %w", err)
	}
	return &req, nil
}
