package cli

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/booruq/internal/domain/query"
)

var validateCmd = &cobra.Command{
	Use:   "validate QUERY",
	Short: "Check that a query parses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, svc, err := localEngine(cmd)
		if err != nil {
			return err
		}
		if err := svc.Validate(ctx, args[0]); err != nil {
			printQueryError(cmd, args[0], err)
			return err
		}
		cmd.Println("ok")
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain QUERY",
	Short: "Print the expression tree a query compiles to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, svc, err := localEngine(cmd)
		if err != nil {
			return err
		}
		tree, err := svc.Explain(ctx, args[0])
		if err != nil {
			printQueryError(cmd, args[0], err)
			return err
		}
		cmd.Println(tree)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(explainCmd)
}

// printQueryError writes the query with a caret under the failing offset.
func printQueryError(cmd *cobra.Command, src string, err error) {
	var pe *query.ParseError
	if !errors.As(err, &pe) || pe.Pos < 0 || pe.Pos > len(src) {
		return
	}
	col := utf8.RuneCountInString(src[:pe.Pos])
	cmd.PrintErrln("  " + src)
	cmd.PrintErrln("  " + strings.Repeat(" ", col) + "^ " + pe.Kind.String())
}
