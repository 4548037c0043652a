package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stockboard/backend/internal/domain"
	"github.com/stockboard/backend/internal/usecase"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var save bool
	var barcode string

	cmd := &cobra.Command{
		Use:   "scan [image]",
		Short: "Extract a barcode from an image and optionally look it up",
		Long: "Runs text recognition on the image and prints the barcode. " +
			"With --barcode the recognition step is skipped. With --save the barcode is resolved against the remote store.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && barcode == "" {
				return fmt.Errorf("an image path or --barcode is required")
			}

			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				input, err := readInput(args[0])
				if err != nil {
					return err
				}
				a.ingestion.Select(input)
			}

			var status usecase.ScanStatus
			if barcode != "" {
				status, err = a.ingestion.SetIdentifier(barcode)
			} else {
				status, err = a.ingestion.Scan(cmd.Context())
			}
			if err != nil {
				return statusError(status, err)
			}
			fmt.Fprintf(out, "Barcode: %s\n", status.Barcode)

			if !save {
				return nil
			}

			status, err = a.ingestion.Save(cmd.Context())
			if err != nil {
				return statusError(status, err)
			}
			fmt.Fprintln(out, status.Message)
			fmt.Fprintln(out, renderProducts([]domain.ProductRecord{*status.Product}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Resolve the barcode against the remote store")
	cmd.Flags().StringVar(&barcode, "barcode", "", "Use this barcode instead of recognizing the image")
	return cmd
}

func readInput(path string) (domain.ScannedInput, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.ScannedInput{}, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.ScannedInput{}, fmt.Errorf("read image: %w", err)
	}
	return domain.NewScannedInput(filepath.Base(path), "", data), nil
}

// statusError prefers the user-facing message of a failed scan
func statusError(status usecase.ScanStatus, err error) error {
	if status.Message != "" && status.Severity == usecase.SeverityError {
		return fmt.Errorf("%s (%s): %w", status.Message, status.ErrorKind, err)
	}
	return err
}

func renderProducts(products []domain.ProductRecord) string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, p.Name, p.DisplayCategory(), p.Barcode})
	}
	return renderTable([]string{"ID", "Name", "Category", "Barcode"}, rows, nil)
}
