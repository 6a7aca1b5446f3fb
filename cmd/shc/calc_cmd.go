package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shc-lang/shc/pkg/calc"
	"github.com/spf13/cobra"
)

func newCalcCmd(out, errOut io.Writer, cfg *config) *cobra.Command {
	var defineFlags []string

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Interactive calculator: evaluates one constant expression per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defines := parseDefines(append(cfg.Defines, defineFlags...))
			return runCalcRepl(cmd.InOrStdin(), out, errOut, defines)
		},
	}

	cmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "define macro (NAME or NAME=VALUE) visible to expressions")

	return cmd
}

// runCalcRepl reads lines from in until EOF or a "q"/"quit" line,
// evaluating each as a constant expression and printing the result to
// out, or the error to errOut.
func runCalcRepl(in io.Reader, out, errOut io.Writer, defines map[string]string) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "shc calc: enter an expression, or q to quit")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" {
			return nil
		}
		result, err := calc.Evaluate(line, defines)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, formatResult(result))
	}
}

// formatResult renders a float64 without a trailing ".0" for whole
// numbers, so integer-valued expressions read the way a calculator
// user expects.
func formatResult(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
