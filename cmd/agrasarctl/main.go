// Command agrasarctl はAgrasarバックエンドの運用CLIです。
// DBマイグレーション、村データの投入、予測のオフライン生成を行います。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "agrasarctl",
	Short:         "Operational tooling for the Agrasar backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd, villagesCmd, forecastCmd, knowledgeCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
