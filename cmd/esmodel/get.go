package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var populatePath string

	cmd := &cobra.Command{
		Use:   "get <model> <id>",
		Short: "Fetch a single document by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := lookupModel(args[0])
			if err != nil {
				return err
			}
			q := model.FindByID(args[1])
			if populatePath != "" {
				q.Populate(populatePath)
			}
			doc, err := q.One(cmd.Context())
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("no %s document with id %s", args[0], args[1])
			}
			return printJSON(cmd.OutOrStdout(), documentJSON(doc))
		},
	}

	cmd.Flags().StringVarP(&populatePath, "populate", "p", "", "dotted reference path to populate")
	return cmd
}
