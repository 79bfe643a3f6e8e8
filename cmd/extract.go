package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/banktocsv/releve/extractor"
	"github.com/banktocsv/releve/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts statement(s)",
	Long: `Extracts a given statement or every statement in a folder.
PDF files go through text extraction first; .txt files are parsed as is.`,
	RunE: handler,
}

func handler(cmd *cobra.Command, args []string) error {
	target := viper.GetString("target")

	ex, err := extractor.NewFromViper(viper.GetViper(), log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithContext(ctx, log)
	docs, err := ex.ProcessPath(ctx, target, viper.GetInt("workers"))
	if err != nil {
		return err
	}

	transactionsOnly := viper.GetBool("transactions_only")
	balanceOnly := viper.GetBool("balance_only")

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var output interface{}
	if info.IsDir() {
		all := make([]interface{}, 0, len(docs))
		for _, doc := range docs {
			all = append(all, extractor.CreateFinalOutput(doc, ex.Precision(), transactionsOnly, balanceOnly))
		}
		output = all
	} else {
		output = extractor.CreateFinalOutput(docs[0], ex.Precision(), transactionsOnly, balanceOnly)
	}

	if err := writeJSON(cmd, output, viper.GetBool("pretty")); err != nil {
		return err
	}

	if !info.IsDir() && docs[0].Err != nil {
		return fmt.Errorf("%s: %w", target, docs[0].Err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}, pretty bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("file", "f", ".", "Statement file, or folder in which releve will scan for .pdf and .txt files")
	extractCmd.Flags().BoolP("transactions-only", "t", false, "Output only the transaction list")
	extractCmd.Flags().BoolP("balance-only", "b", false, "Output only the summary and closing balance")
	extractCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Number of files processed in parallel")
	extractCmd.Flags().Bool("pretty", false, "Indent JSON output")

	viper.BindPFlag("target", extractCmd.Flags().Lookup("file"))
	viper.BindPFlag("transactions_only", extractCmd.Flags().Lookup("transactions-only"))
	viper.BindPFlag("balance_only", extractCmd.Flags().Lookup("balance-only"))
	viper.BindPFlag("workers", extractCmd.Flags().Lookup("workers"))
	viper.BindPFlag("pretty", extractCmd.Flags().Lookup("pretty"))
}
