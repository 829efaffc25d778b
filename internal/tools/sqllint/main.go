// Command sqllint checks that every inline SQL statement starts with a unique
// "--sql <uuid>" audit marker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "sqllint [path...]",
		Short:         "Check SQL audit markers in Go sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"internal/sqlinline"}
			}
			l := newLinter()
			for _, target := range args {
				if err := l.lintPath(target); err != nil {
					return err
				}
			}
			if len(l.violations) == 0 {
				return nil
			}
			out := cmd.ErrOrStderr()
			fmt.Fprintln(out, "sqllint: missing SQL audit markers")
			for _, v := range l.violations {
				fmt.Fprintf(out, "  %s:%d %s (%s)\n", v.file, v.line, v.message, v.name)
			}
			return fmt.Errorf("%d violation(s)", len(l.violations))
		},
	}
}
