package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/stayscope/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/stayscope/internal/reports"
)

func reportCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report [name]",
		Short: "List the report catalog or run one report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(rt *bootstrap.Runtime) error {
				out := cmd.OutOrStdout()

				if len(args) == 0 {
					renderCatalog(out, rt.Catalog().List())
					return nil
				}

				ctx := cmd.Context()
				gw, err := rt.Gateway(ctx)
				if err != nil {
					return err
				}
				cache, redisClient := rt.SchemaCache(ctx, gw)
				if redisClient != nil {
					defer func() { _ = redisClient.Close() }()
				}

				result, err := rt.QueryService(gw, cache).Report(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, result)
				}
				return renderReport(out, args[0], result)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw report tree as JSON")
	return cmd
}

func renderCatalog(w io.Writer, list []reports.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Report", "Description"})
	for _, r := range list {
		t.AppendRow(table.Row{r.Name, r.Description})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d reports", len(list))})
	t.Render()
}

// renderReport prints bucketed results as a table with one column per
// single-value metric. Anything else is printed as JSON.
func renderReport(w io.Writer, name string, result any) error {
	projected := result
	if tree, ok := result.(map[string]any); ok {
		aggName, buckets, found := reports.FirstBuckets(tree)
		if !found {
			return writeJSON(w, result)
		}
		name, projected = name+"/"+aggName, buckets
	}

	if _, ok := projected.([]any); !ok {
		return writeJSON(w, result)
	}
	buckets, err := reports.DecodeBuckets(projected)
	if err != nil {
		return writeJSON(w, result)
	}

	var metrics []string
	for _, b := range buckets {
		for _, m := range b.MetricNames() {
			if !slices.Contains(metrics, m) {
				metrics = append(metrics, m)
			}
		}
	}
	slices.Sort(metrics)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.SetTitle(name)

	header := table.Row{"Key", "Bookings"}
	for _, m := range metrics {
		header = append(header, m)
	}
	t.AppendHeader(header)

	for _, b := range buckets {
		row := table.Row{b.Label(), b.DocCount}
		for _, m := range metrics {
			row = append(row, formatMetric(b.MetricValue(m)))
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func formatMetric(v any) string {
	switch n := v.(type) {
	case nil:
		return "-"
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return fmt.Sprintf("%.2f", f)
		}
		return n.String()
	case float64:
		return fmt.Sprintf("%.2f", n)
	default:
		return fmt.Sprint(n)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
