// Command yamlet loads a Yamlet configuration file and prints a key, the
// whole tree, or a provenance trace for a key.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JoshDreamland/yamlet/eval"
	"github.com/JoshDreamland/yamlet/loader"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var maxDepth int
	var diagnostic bool

	root := &cobra.Command{
		Use:           "yamlet",
		Short:         "Evaluate Yamlet configuration documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().IntVar(&maxDepth, "max-depth", eval.DefaultMaxDepth, "evaluator recursion depth limit")
	root.PersistentFlags().BoolVar(&diagnostic, "diagnostic", false, "use the diagnostic stringify style")

	newOpts := func() loader.Options {
		style := eval.Terse
		if diagnostic {
			style = eval.Diagnostic
		}
		return loader.Options{MaxDepth: maxDepth, Style: style}
	}

	root.AddCommand(newEvalCmd(newOpts))
	root.AddCommand(newExplainCmd(newOpts))
	return root
}

func newEvalCmd(newOpts func() loader.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <file> [key]",
		Short: "Load a file and print a key (or the whole document)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.NewLoader(newOpts())
			doc, err := l.LoadFile(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				items, err := doc.Items()
				if err != nil {
					return err
				}
				for _, k := range doc.Keys() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, doc.Stringify(items[k]))
				}
				return nil
			}
			v, err := doc.Get(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.Stringify(v))
			return nil
		},
	}
}

func newExplainCmd(newOpts func() loader.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <file> <key>",
		Short: "Print the provenance trace for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.NewLoader(newOpts())
			doc, err := l.LoadFile(args[0])
			if err != nil {
				return err
			}
			out, err := doc.Explain(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
