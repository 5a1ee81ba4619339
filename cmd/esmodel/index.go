package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var dataFlag string

	cmd := &cobra.Command{
		Use:   "index <model>",
		Short: "Validate and index one document",
		Long: `Reads a JSON document from --data or stdin, validates it against the
model's schema, and indexes it. Prints the stored document including the
engine-assigned id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := lookupModel(args[0])
			if err != nil {
				return err
			}

			raw := []byte(dataFlag)
			if dataFlag == "" {
				raw, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read document from stdin: %w", err)
				}
			}
			var fields map[string]interface{}
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("document is not valid JSON: %w", err)
			}

			doc := model.New(fields)
			if err := doc.Save().Exec(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), documentJSON(doc))
		},
	}

	cmd.Flags().StringVarP(&dataFlag, "data", "d", "", "document JSON (default: read stdin)")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model> <id>",
		Short: "Delete a document by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := lookupModel(args[0])
			if err != nil {
				return err
			}
			doc, err := model.FindByID(args[1]).One(cmd.Context())
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("no %s document with id %s", args[0], args[1])
			}
			return doc.Remove().Exec(cmd.Context())
		},
	}
}
