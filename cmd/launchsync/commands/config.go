package commands

import (
	"fmt"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/viant/launchsync/config"
	"github.com/viant/launchsync/internal/cli/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(newSchemaCmd())
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate JSON schema for the configuration file",
		Long: `Generate a JSON schema for the launchsync configuration file, usable for
editor completion and validation.

Examples:
  launchsync config schema
  launchsync config schema --output config.schema.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema := configSchema()
			if outPath == "" {
				return output.PrintJSON(cmd.OutOrStdout(), schema)
			}
			data, err := json.Marshal(schema, jsontext.WithIndent("  "))
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write schema file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func configSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		FieldNameTag:              "mapstructure",
	}
	schema := reflector.Reflect(&config.Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "launchsync configuration"
	return schema
}
