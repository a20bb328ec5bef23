package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/filterpattern"
)

// FiltersOptions holds the flags of the filters command.
type FiltersOptions struct {
	Output string
}

// NewFiltersCommand creates the filters command.
func NewFiltersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FiltersOptions{}

	cmd := &cobra.Command{
		Use:   "filters [file]",
		Short: "Describe the filters of a WHERE clause",
		Long: `Describe the filters of a query's WHERE clause as filter patterns.

The input is either a query or a bare filter expression. A query without
a WHERE clause has no filters.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Output != "yaml" && opts.Output != "json" {
				return fmt.Errorf("invalid output %q: must be yaml or json", opts.Output)
			}
			n, err := rootOpts.parse(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			patterns := filterpattern.FitFilterPatterns(whereOf(n))
			if patterns == nil {
				patterns = []filterpattern.Pattern{}
			}
			return writePatterns(cmd.OutOrStdout(), opts.Output, patterns)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "yaml", "output format (yaml|json)")

	return cmd
}

// whereOf returns the WHERE expression of a query, or n itself when n is
// not a query.
func whereOf(n ast.Node) ast.Node {
	q, ok := ast.StripParens(n).(*ast.Query)
	if !ok {
		return n
	}
	if q.Where == nil {
		return nil
	}
	return q.Where.Expr
}

func writePatterns(w io.Writer, output string, patterns []filterpattern.Pattern) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(patterns)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(patterns); err != nil {
		return err
	}
	return enc.Close()
}
