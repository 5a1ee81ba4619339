package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "esmodel",
		Short: "Query and maintain documents behind an esmodel schema",
		Long: `esmodel loads model schemas from a YAML file and talks to a search
engine over HTTP. Configuration comes from flags, ESMODEL_* environment
variables, or a config file, in that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initLogging(viper.GetString("log-level"))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("engine-url", "http://localhost:9200", "base URL of the search engine")
	flags.String("index-prefix", "", "prefix prepended to every model's index name")
	flags.String("schemas", "schemas.yaml", "path to the model schema file")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("config", "", "config file (default: ./esmodel.yaml if present)")

	for _, name := range []string{"engine-url", "index-prefix", "schemas", "log-level"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("ESMODEL")
	viper.AutomaticEnv()

	cobra.OnInitialize(func() {
		if cfg, _ := flags.GetString("config"); cfg != "" {
			viper.SetConfigFile(cfg)
		} else {
			viper.SetConfigName("esmodel")
			viper.SetConfigType("yaml")
			viper.AddConfigPath(".")
		}
		if err := viper.ReadInConfig(); err == nil {
			fmt.Fprintln(root.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
		}
	})

	root.AddCommand(
		newQueryCmd(),
		newGetCmd(),
		newIndexCmd(),
		newRemoveCmd(),
		newSchemaCmd(),
	)
	return root
}
