package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jabolina/pleroma/internal/evaluator"
	"github.com/jabolina/pleroma/internal/kernel"
)

// testCmd implements "pleroma test <file>": parse/typecheck only, then
// exit. The surface-language lexer/parser/typechecker is out of scope
// (spec.md section 1) - the default table-driven evaluator shipped here
// has no program text to compile, so this subcommand's "parse" step is
// limited to confirming the file exists and that --entity,
// if given, names a module this process actually has registered.
func testCmd() *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "test <file>",
		Short: "Parse/typecheck a program file and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("test: %w", err)
			}

			ev := evaluator.NewTableEvaluator()
			kernel.Register(ev)

			if entity != "" && !ev.HasModule(entity) {
				return fmt.Errorf("test: no registered module named %q", entity)
			}

			fmt.Printf("%s: ok\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Bootstrap entity name to validate against registered modules")
	return cmd
}
