package main

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <type> <id>",
	Short: "Delete a record and unwind its derived structures",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.Delete(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		logger.Debug("record deleted", "type", args[0], "id", args[1])
		return nil
	},
}
