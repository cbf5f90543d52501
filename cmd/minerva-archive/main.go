// Package main is the entry point for the minerva-archive CLI.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd is the base command for the minerva-archive CLI.
var rootCmd = &cobra.Command{
	Use:   "minerva-archive",
	Short: "Archive Minerva expense reports as PDFs",
	Long: `minerva-archive walks the Minerva "View All Requests" list, opens each
request's detail view, and saves it as a PDF (plus a text rendering and a
SQLite record). It drives a Chrome instance you start yourself with remote
debugging enabled, for example:

  chrome --remote-debugging-port=9222 --user-data-dir=/tmp/chrome-minerva-profile

Log in, navigate to Finance > Advances and Expense Reports Menu > View All
Requests, select a date range, then start "minerva-archive run" and press
Enter. The list can only show a limited number of requests at once, so use
one date range (e.g. one year) per run.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./minerva-archive.yaml)")
	rootCmd.PersistentFlags().String("output-dir", "pdf_output", "directory artifacts are written to")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show [DEBUG] lines")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress [INFO] lines")

	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("minerva-archive")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "minerva-archive"))
		}
	}

	viper.SetEnvPrefix("MINERVA")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
