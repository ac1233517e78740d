package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "lienzo",
	Short: "Annotate recordings on their spectrogram",
	Long: `Lienzo shows a recording as a zoomable spectrogram in the terminal and
lets you draw, select, edit and delete time-frequency annotations on it.

Annotations are loaded from and saved to a JSON file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"JSON config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil,
		"dotenv files loaded before LIENZO_* overrides are read")
	rootCmd.PersistentFlags().StringVarP(&flags.logFile, "log", "l", "",
		"write logs to this file (the terminal is taken by the viewer)")

	rootCmd.AddCommand(viewCmd, probeCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
