package main

import (
	"fmt"

	"github.com/erp/channelsync/internal/bootstrap"
	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newExceptionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exceptions <order-id>",
		Short: "List the channel exceptions of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			return a.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				exceptions, err := c.Exceptions.ListExceptions(cmd.Context(), orderID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), exceptions)
			})
		},
	}
	cmd.AddCommand(newResolveExceptionCmd(a))
	return cmd
}

func newResolveExceptionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <exception-id>",
		Short: "Mark a channel exception resolved as the system user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exceptionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid exception id %q", args[0])
			}

			return a.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				exception, err := c.Exceptions.ResolveException(cmd.Context(), exceptionID, identity.SystemUserID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), exception)
			})
		},
	}
}
