package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/stockboard/backend/internal/domain"
)

func newBoardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show products grouped by category bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			partition, err := a.board.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderBoard(partition))
			return nil
		},
	}
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <item-id> <bucket>",
		Short: "Move a product to another category bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			if _, err := a.board.Refresh(cmd.Context()); err != nil {
				return err
			}

			partition, outcome, err := a.board.Drop(cmd.Context(), args[0], domain.BucketName(args[1]))
			if err != nil {
				return fmt.Errorf("move %s to %s: %w", args[0], args[1], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Move %s -> %s: %s\n", args[0], args[1], outcome)
			fmt.Fprintln(out, renderBoard(partition))
			return nil
		},
	}
}

func renderBoard(partition domain.Partition) string {
	rows := make([][]string, 0, partition.Len())
	for _, bucket := range partition.Order {
		items := partition.Items(bucket)
		if len(items) == 0 {
			rows = append(rows, []string{string(bucket), "0", "", "", ""})
			continue
		}
		for i, item := range items {
			label, count := "", ""
			if i == 0 {
				label, count = string(bucket), strconv.Itoa(len(items))
			}
			rows = append(rows, []string{label, count, item.ID, item.Name, item.Barcode})
		}
	}
	return renderTable(
		[]string{"Bucket", "Items", "ID", "Name", "Barcode"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}
