package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lattice/store"
)

var flagGetBy string

var getCmd = &cobra.Command{
	Use:   "get <type> <value>",
	Short: "Load one record by primary key or unique field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, value := args[0], args[1]

		var rec *store.Record
		var err error
		if flagGetBy != "" {
			rec, err = engine.GetOneBy(cmd.Context(), typ, flagGetBy, value)
		} else {
			rec, err = engine.GetOne(cmd.Context(), typ, value)
		}
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%s %q not found", typ, value)
		}
		return printJSON(documentFromRecord(rec))
	},
}

func init() {
	getCmd.Flags().StringVar(&flagGetBy, "by", "", "look up by this unique field instead of the primary key")
}
