// Command kvs is a thin command-line front end over the Ignite storage
// engine: it opens the engine rooted at the current working directory,
// dispatches to the requested operation, and reports the result on the
// appropriate stream with the appropriate exit code. Every decision
// beyond that belongs to the engine.
package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/ignite"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kvs",
		Short:         "A log-structured key-value store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGetCmd(), newSetCmd(), newRmCmd())
	return root
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <KEY>",
		Short: "Print the value for KEY, or \"Key not found\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHere()
			if err != nil {
				return err
			}
			defer db.Close()

			value, ok, err := db.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Key not found")
				return nil
			}

			fmt.Println(value)
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <KEY> <VALUE>",
		Short: "Set KEY to VALUE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHere()
			if err != nil {
				return err
			}
			defer db.Close()

			return db.Set(args[0], args[1])
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <KEY>",
		Short: "Remove KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHere()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Remove(args[0]); err != nil {
				if pkgerrors.ClassifyKind(err) == pkgerrors.KindKeyNotFound {
					fmt.Fprintln(os.Stderr, "Key not found")
					os.Exit(1)
				}
				return err
			}

			return nil
		},
	}
}

// openHere opens the engine rooted at the process's current working
// directory, mirroring the original implementation's use of
// std::env::current_dir.
func openHere() (*ignite.Instance, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return ignite.Open("kvs", options.WithDataDir(dir))
}
