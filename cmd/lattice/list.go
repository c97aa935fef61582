package main

import (
	"github.com/spf13/cobra"

	"lattice/store"
)

var (
	flagListLimit   int
	flagListOffset  int
	flagListOrderBy string
	flagListDesc    bool
	flagListIDs     bool
)

var listCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "Enumerate records of a listable entity type",
	Long: `List records in insertion order, or ordered by a sortable field with
--order-by. The entity type must be declared listable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.ListOptions{
			Limit:  flagListLimit,
			Offset: flagListOffset,
		}
		if flagListOrderBy != "" {
			strategy := store.Asc
			if flagListDesc {
				strategy = store.Desc
			}
			opts.OrderBy = &store.OrderBy{Field: flagListOrderBy, Strategy: strategy}
		}

		if flagListIDs {
			ids, err := engine.ListIDs(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printJSON(ids)
		}

		records, err := engine.List(cmd.Context(), args[0], opts)
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
	listCmd.Flags().IntVar(&flagListLimit, "limit", 0, "maximum records to return (0 = all)")
	listCmd.Flags().IntVar(&flagListOffset, "offset", 0, "records to skip")
	listCmd.Flags().StringVar(&flagListOrderBy, "order-by", "", "sortable field to order by")
	listCmd.Flags().BoolVar(&flagListDesc, "desc", false, "order descending")
	listCmd.Flags().BoolVar(&flagListIDs, "ids", false, "print primary keys only")
}
