// Package cli implements the druidsql command.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/filterpattern"
	"github.com/sqlc-dev/druidsql/parser"
)

// RootOptions holds the global flags.
type RootOptions struct {
	Verbose   bool
	Functions string

	logger *slog.Logger
	table  *parser.FunctionTable
}

// NewRootCommand creates the druidsql command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "druidsql",
		Short: "Parse, print and inspect Druid SQL",
		Long: `druidsql parses Druid SQL without losing any of the input text.

It can print a query back exactly or in its raw form, dump the tree
structure, and describe the filters of a WHERE clause.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.PersistentFlags().StringVar(&opts.Functions, "functions", "", "YAML function table to parse with")

	cmd.AddCommand(NewFormatCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewFiltersCommand(opts))

	return cmd
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	filterpattern.SetLogger(o.logger)

	if o.Functions == "" {
		return nil
	}
	table, err := loadFunctionTable(o.Functions)
	if err != nil {
		return err
	}
	o.table = table
	return nil
}

func (o *RootOptions) parserOptions() []parser.Option {
	opts := []parser.Option{parser.WithLogger(o.logger)}
	if o.table != nil {
		opts = append(opts, parser.WithFunctions(o.table))
	}
	return opts
}

// parse reads the query or expression named by args, or standard input
// when there is none.
func (o *RootOptions) parse(ctx context.Context, cmd *cobra.Command, args []string) (ast.Node, error) {
	if len(args) > 0 && args[0] != "-" {
		o.logger.Debug("parsing file", "path", args[0])
		return parser.ParseFile(ctx, args[0], o.parserOptions()...)
	}
	o.logger.Debug("parsing standard input")
	return parser.Parse(ctx, cmd.InOrStdin(), o.parserOptions()...)
}
