package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shc-lang/shc/pkg/cpp"
	"github.com/spf13/cobra"
)

func newPreprocessCmd(out, errOut io.Writer, cfg *config) *cobra.Command {
	var includePaths, systemPaths, defineFlags, undefineFlags []string

	cmd := &cobra.Command{
		Use:   "preprocess <file>",
		Short: "Run the macro preprocessor over a file and print the flattened output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("shc: reading %s: %w", filename, err)
			}

			resolver := cpp.NewFileResolver(
				append(append([]string{}, cfg.Include...), includePaths...),
				append(append([]string{}, cfg.ISystem...), systemPaths...),
			)
			defines := parseDefines(append(cfg.Defines, defineFlags...))

			result, err := cpp.Preprocess(filename, string(data), resolver, defines, undefineFlags)
			if err != nil {
				fmt.Fprintf(errOut, "shc: preprocessing error: %v\n", err)
				return err
			}
			fmt.Fprintln(out, result)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "add directory (or doublestar glob) to the include search path")
	cmd.Flags().StringArrayVar(&systemPaths, "isystem", nil, "add directory (or doublestar glob) to the system include search path")
	cmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "define macro (NAME or NAME=VALUE)")
	cmd.Flags().StringArrayVarP(&undefineFlags, "undefine", "U", nil, "undefine a predefined macro")

	return cmd
}

// parseDefines turns "NAME" / "NAME=VALUE" command-line forms into the
// map Preprocessor.Define expects, an empty body meaning "defined as 1".
func parseDefines(raw []string) map[string]string {
	defines := make(map[string]string, len(raw))
	for _, d := range raw {
		if idx := strings.Index(d, "="); idx >= 0 {
			defines[d[:idx]] = d[idx+1:]
		} else {
			defines[d] = ""
		}
	}
	return defines
}
