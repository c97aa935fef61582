package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <type> <document>",
	Short: "Create or update a record from a JSON document",
	Long: `Save a record of the given entity type. The document is a JSON object
keyed by declared field names; pass "-" to read it from stdin. When the
primary field is absent a UUID is generated and reported.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ := args[0]
		doc, err := readDocument(args[1])
		if err != nil {
			return err
		}

		desc, err := engine.Schemas().Lookup(typ)
		if err != nil {
			return err
		}
		if _, ok := doc[desc.Primary]; !ok {
			doc[desc.Primary] = uuid.NewString()
		}

		rec, err := recordFromDocument(engine.Schemas(), typ, doc)
		if err != nil {
			return err
		}
		if err := engine.Save(cmd.Context(), rec); err != nil {
			return err
		}

		logger.Debug("record saved", "type", typ, "id", doc[desc.Primary])
		fmt.Println(doc[desc.Primary])
		return nil
	},
}
