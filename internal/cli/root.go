package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/openapi2ts/internal/logger"
)

// Execute runs the openapi2ts CLI.
func Execute() error {
	defer logger.Cleanup()
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "openapi2ts",
		Short:         "Generate TypeScript declarations from OpenAPI documents",
		Long:          "openapi2ts compiles the components of a Swagger/OpenAPI document into TypeScript type and enum declarations, and registers generated namespaces in an openapi2ts.config.ts file.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			jsonLogs, err := cmd.Flags().GetBool("log-json")
			if err != nil {
				return err
			}
			return logger.Initialize(logger.Options{Verbose: verbose, JSON: jsonLogs})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML, JSON or TOML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON lines on stderr")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd(), newRegisterCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
