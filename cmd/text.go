package cmd

import (
	"fmt"

	"github.com/banktocsv/releve/extractor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Prints the text extracted from a statement",
	Long: `Prints the raw text the extractor sees for a PDF statement, one row
per line. Useful when a statement yields no transactions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("no file given, use --file")
		}

		ex, err := extractor.NewFromViper(viper.GetViper(), log)
		if err != nil {
			return err
		}

		data, err := ex.ReadFile(path)
		if err != nil {
			return err
		}
		text, err := ex.ExtractText(data, path)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(textCmd)
	textCmd.Flags().StringP("file", "f", "", "PDF statement to read")
}
