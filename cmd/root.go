package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/banktocsv/releve/extractor"
	"github.com/banktocsv/releve/extractor/attijari"
	"github.com/banktocsv/releve/extractor/common"
	"github.com/banktocsv/releve/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	logJSON bool
	log     = zerolog.Nop()
	rootCmd = &cobra.Command{
		Use:   "releve [filename]",
		Short: "Extract transactions from Attijari bank statements",
		Long: `releve reads Attijari bank (Tunisia) account statements, as PDF or as
already extracted text, and prints their transactions and closing balance
as JSON.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				viper.Set("target", args[0])
				return handler(extractCmd, []string{})
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.releve.yaml or $HOME/.releve.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON lines")
}

func initLogging() {
	if !logJSON {
		log = logger.New(os.Stderr, verbose)
		return
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = logger.NewWithWriter(os.Stderr).Level(level)
}

// initConfig loads the built-in statement layout, then merges the user's
// config file on top when there is one.
func initConfig() {
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(attijari.DefaultConfigYAML)); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}
	viper.SetDefault("extraction.max_bytes", extractor.DefaultMaxBytes)
	viper.SetDefault("extraction.min_text_quality", common.DefaultMinTextQuality)
	viper.SetDefault("extraction.unidoc_license_key", "")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".releve")
	}

	viper.SetEnvPrefix("RELEVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
