package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var pgDataIn string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "controledit",
	Short: "A tool for editing the control record of a copied database cluster.",
	Long: `A tool for editing the control record of a copied database cluster.

It reads the control record from an input data directory, applies the
requested field overrides and writes the modified record to an output
data directory, leaving the input untouched.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&pgDataIn,
		"pgdata-in",
		"D",
		"",
		"The input data directory to read the control record from.",
	)
	if err := rootCmd.MarkPersistentFlagRequired("pgdata-in"); err != nil {
		panic(err)
	}
}
