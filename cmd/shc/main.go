package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shc",
		Short:         "shc is a C-style macro preprocessor and expression calculator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	cfg, err := loadConfig("shc.yaml")
	if err != nil {
		cfg = &config{}
	}

	rootCmd.AddCommand(newPreprocessCmd(out, errOut, cfg))
	rootCmd.AddCommand(newCalcCmd(out, errOut, cfg))

	return rootCmd
}
