package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/parser"
)

// FormatOptions holds the flags of the format command.
type FormatOptions struct {
	Raw bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Parse SQL and print it back",
		Long: `Parse a query or expression and print it back.

Without --raw the output is the input, byte for byte. With --raw
whitespace and comments are dropped and keywords are upper-cased.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rootOpts.parse(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			out := ast.Format(n)
			if opts.Raw {
				out = ast.Raw(n) + "\n"
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print without formatting")

	return cmd
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [file]",
		Short: "Print the tree structure of a query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rootOpts.parse(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), ast.Explain(n))
			return err
		},
	}
}

func loadFunctionTable(path string) (*parser.FunctionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.LoadFunctionTable(f)
}
