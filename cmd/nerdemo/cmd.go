package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/internal"
)

var (
	log = internal.GetLogger()

	cfgFile       string
	showVersion   bool
	dumpConfig    bool
	generateToken bool
	echoUI        bool
)

var cmd = &cobra.Command{
	Use:   "nerdemo",
	Short: "nerdemo serves a named entity recognition model over HTTP and as an interactive demo",
	Run:   func(cmd *cobra.Command, args []string) { runAPI() },
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the NER HTTP API",
	Run:   func(cmd *cobra.Command, args []string) { runAPI() },
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Run the interactive demo page",
	Run:   func(cmd *cobra.Command, args []string) { runUI(echoUI) },
}

var extractCmd = &cobra.Command{
	Use:     "extract [text...]",
	Short:   "Extract entities from the arguments, or from stdin when none are given",
	Example: `nerdemo extract "Barack Obama was born in Hawaii."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return runExtract(cmd.Context(), text, cmd.OutOrStdout())
	},
}

var fetchModelCmd = &cobra.Command{
	Use:   "fetch-model",
	Short: "Download and install the fallback model archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetchModel(cmd.Context(), cmd.OutOrStdout())
	},
}

var dumpJsonSchemaCmd = &cobra.Command{
	Use:     "json-schema",
	Short:   "Generates JSON Schema for nerdemo's configuration file",
	Example: "nerdemo json-schema > nerdemo_config_schema.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.JSONSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return nil
	},
}

func init() {
	uiCmd.Flags().BoolVar(&echoUI, "echo", false, "echo the input back instead of extracting entities")

	cmd.AddCommand(apiCmd)
	cmd.AddCommand(uiCmd)
	cmd.AddCommand(extractCmd)
	cmd.AddCommand(fetchModelCmd)
	cmd.AddCommand(dumpJsonSchemaCmd)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.yaml)")
	cmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version number")
	cmd.PersistentFlags().BoolVarP(&dumpConfig, "dump-config", "d", false, "dump config")
	cmd.PersistentFlags().
		BoolVarP(&generateToken, "generate-token", "g", false, "generate a new JWT token")
}

// Execute executes the root cobra command.
func Execute() {
	log.SetLevel(logrus.InfoLevel)

	err := cmd.Execute()

	if err != nil {
		os.Exit(1)
	}
}
