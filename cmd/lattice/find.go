package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lattice/store"
)

var (
	flagFindOr     bool
	flagFindLimit  int
	flagFindOffset int
	flagFindIDs    bool
)

var findCmd = &cobra.Command{
	Use:   "find <type> <field>=<value>...",
	Short: "Find records by exact-match conditions",
	Long: `Find records whose indexed fields match the given conditions. Conditions
combine by intersection; pass --or for union. --limit and --offset must be
supplied together and slice the combined result.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ := args[0]

		conditions := make([]store.Condition, 0, len(args)-1)
		for _, arg := range args[1:] {
			field, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("condition %q is not of the form field=value", arg)
			}
			conditions = append(conditions, store.Condition{Field: field, Value: value})
		}

		opts := store.FindOptions{}
		if flagFindOr {
			opts.Combinator = store.Or
		}
		if cmd.Flags().Changed("limit") {
			opts.Limit = &flagFindLimit
		}
		if cmd.Flags().Changed("offset") {
			opts.Offset = &flagFindOffset
		}

		if flagFindIDs {
			ids, err := engine.FindIDs(cmd.Context(), typ, conditions, opts)
			if err != nil {
				return err
			}
			return printJSON(ids)
		}

		records, err := engine.Find(cmd.Context(), typ, conditions, opts)
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
	findCmd.Flags().BoolVar(&flagFindOr, "or", false, "combine conditions by union instead of intersection")
	findCmd.Flags().IntVar(&flagFindLimit, "limit", 0, "maximum records to return")
	findCmd.Flags().IntVar(&flagFindOffset, "offset", 0, "records to skip")
	findCmd.Flags().BoolVar(&flagFindIDs, "ids", false, "print primary keys only")
}
