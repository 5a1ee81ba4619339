package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esmodel/esmodel/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate and maintain schema files",
	}
	cmd.AddCommand(newSchemaValidateCmd(), newSchemaFmtCmd())
	return cmd
}

func newSchemaValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Compile a schema file and report errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d models OK\n", args[0], len(schemas))
			return nil
		},
	}
}

func newSchemaFmtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a schema file in normalized form",
		Long: `Compiles the schema file and writes it back with models sorted by
name and properties in canonical encoding. The rewrite holds a file lock
so concurrent runs cannot interleave.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := schema.SaveFile(args[0], schemas); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: normalized %d models\n", args[0], len(schemas))
			return nil
		},
	}
}
