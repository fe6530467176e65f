package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/script"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Evaluate a working plane script",
	Long: `Evaluate a working plane script against the loaded model. Use "-" to
read the script from standard input.`,
	Example: `  gowp run -m part.stl planes.wp`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			r = f
		}

		return withSession(cmd.Context(), func(guard *session.Guard, doc *document.Document, logger *slog.Logger) error {
			return runScript(script.NewEngine(guard, doc, cmd.OutOrStdout(), logger), r)
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScript(engine *script.Engine, r io.Reader) error {
	evalErrs, err := engine.EvaluateFile(r)
	if err != nil {
		return err
	}
	for _, e := range evalErrs {
		if e.Line > 0 {
			printError(fmt.Sprintf("line %d: %s", e.Line, e.Message))
		} else {
			printError(e.Message)
		}
	}
	if len(evalErrs) > 0 {
		return fmt.Errorf("script failed with %d error(s)", len(evalErrs))
	}
	return nil
}
