package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/esmodel/esmodel/esmodel"
)

func newQueryCmd() *cobra.Command {
	var (
		criteriaPairs []string
		sortSpecs     []string
		selectFields  []string
		limit         int
		skip          int
		count         bool
		lean          bool
		populatePath  string
	)

	cmd := &cobra.Command{
		Use:   "query <model>",
		Short: "Run a match query against a model's index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := lookupModel(args[0])
			if err != nil {
				return err
			}
			criteria, err := parseCriteria(criteriaPairs)
			if err != nil {
				return err
			}

			q := model.Find(criteria)
			for _, spec := range sortSpecs {
				field, dir, _ := strings.Cut(spec, ":")
				q.Sort(field, dir)
			}
			if limit > 0 {
				q.Limit(limit)
			}
			if skip > 0 {
				q.Skip(skip)
			}
			if len(selectFields) > 0 {
				q.Select(selectFields...)
			}
			if lean {
				q.Lean()
			}
			if populatePath != "" {
				q.Populate(populatePath)
			}
			if count {
				q.Count()
			}

			res, err := q.Exec(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringArrayVarP(&criteriaPairs, "where", "w", nil, "match criteria as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&sortSpecs, "sort", "s", nil, "sort as field:asc or field:desc (repeatable)")
	cmd.Flags().StringSliceVar(&selectFields, "select", nil, "fields to fetch")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of hits")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of hits to skip")
	cmd.Flags().BoolVar(&count, "count", false, "return only the total hit count")
	cmd.Flags().BoolVar(&lean, "lean", false, "return raw hits without document wrapping")
	cmd.Flags().StringVarP(&populatePath, "populate", "p", "", "dotted reference path to populate")
	return cmd
}

// printResult renders one query result in its collapsed shape: a bare
// count, a single document (or a not-found message), raw lean hits, or
// the full collection. Single results carry no set and lean results may
// carry no hits, so each shape is checked before dereferencing.
func printResult(w io.Writer, res *esmodel.Result) error {
	switch {
	case res.IsCount:
		fmt.Fprintln(w, res.Count)
		return nil
	case res.Single:
		switch {
		case res.Doc != nil:
			return printJSON(w, documentJSON(res.Doc))
		case res.Hit != nil:
			return printJSON(w, res.Hit)
		default:
			fmt.Fprintln(w, "null")
			return nil
		}
	case res.Hits != nil:
		return printJSON(w, res.Hits)
	case res.Set != nil:
		docs := make([]interface{}, res.Set.Len())
		for i, doc := range res.Set.Docs() {
			docs[i] = documentJSON(doc)
		}
		return printJSON(w, docs)
	default:
		// Lean query with zero hits.
		return printJSON(w, []interface{}{})
	}
}
