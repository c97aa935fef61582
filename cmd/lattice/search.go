package main

import (
	"github.com/spf13/cobra"
)

var (
	flagSearchLimit int
	flagSearchIDs   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <type> <field> <text>",
	Short: "Search a field for a case-insensitive substring",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, field, text := args[0], args[1], args[2]

		if flagSearchIDs {
			ids, err := engine.SearchIDs(cmd.Context(), typ, field, text, flagSearchLimit)
			if err != nil {
				return err
			}
			return printJSON(ids)
		}

		records, err := engine.Search(cmd.Context(), typ, field, text, flagSearchLimit)
		if err != nil {
			return err
		}
		docs := make([]map[string]any, len(records))
		for i, rec := range records {
			docs[i] = documentFromRecord(rec)
		}
		return printJSON(docs)
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 10, "maximum matches to return (0 = all)")
	searchCmd.Flags().BoolVar(&flagSearchIDs, "ids", false, "print primary keys only")
}
