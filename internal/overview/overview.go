// Package overview builds a tabular summary of node/edge attribute typings
// per group, the way graphrecord/overview/mod.rs computes a Display-able
// NodeGroupOverview/EdgeGroupOverview per group. It adds CSV and optional
// zstd-compressed export on top of that summary, the row-oriented dump
// graphrecord/polars.rs hands off to a dataframe library, minus the
// dataframe dependency.
package overview

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/klauspost/compress/zstd"

	"github.com/ritamzico/propgraph/internal/datatype"
	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/schema"
	"github.com/ritamzico/propgraph/internal/value"
)

// AttributeSummary is one attribute's typing plus the statistics its
// AttributeType implies: distinct values for Categorical/Unstructured,
// min/mean/max for Continuous, min/max for Temporal.
type AttributeSummary struct {
	Name          string
	DataType      datatype.DataType
	AttributeType datatype.AttributeType
	Count         int
	DistinctCount int
	Min, Mean, Max value.Value
}

// Details renders the per-AttributeType statistics the way
// AttributeOverviewData::details formats them in the original.
func (a AttributeSummary) Details() string {
	switch a.AttributeType {
	case datatype.Continuous:
		return fmt.Sprintf("min: %s, mean: %s, max: %s", a.Min.String(), a.Mean.String(), a.Max.String())
	case datatype.Temporal:
		return fmt.Sprintf("min: %s, max: %s", a.Min.String(), a.Max.String())
	default:
		return fmt.Sprintf("distinct values: %d", a.DistinctCount)
	}
}

// GroupSummary is one group's (or the ungrouped set's) node and edge
// attribute overview.
type GroupSummary struct {
	Label          string
	NodeCount      int
	EdgeCount      int
	NodeAttributes []AttributeSummary
	EdgeAttributes []AttributeSummary
}

// Overview is the full per-group summary, in the same order schema.Groups
// is walked (sorted by label for reproducible output) with the ungrouped
// summary first.
type Overview struct {
	Groups []GroupSummary
}

// Build computes an Overview from the live graph, group overlay and schema.
func Build(g *graphstore.Graph, gm *groupmap.GroupMapping, s *schema.Schema) *Overview {
	o := &Overview{}
	o.Groups = append(o.Groups, summarize("(ungrouped)", g.Nodes(), g.Edges(), s.Ungrouped))

	labels := make([]groupmap.Group, 0, len(s.Groups))
	for label := range s.Groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].String() < labels[j].String() })

	for _, label := range labels {
		nodeIdx := gm.NodesInGroup(label)
		edgeIdx := gm.EdgesInGroup(label)
		nodes := make([]*graphstore.Node, 0, len(nodeIdx))
		for _, idx := range nodeIdx {
			if n, err := g.GetNode(idx); err == nil {
				nodes = append(nodes, n)
			}
		}
		edges := make([]*graphstore.Edge, 0, len(edgeIdx))
		for _, idx := range edgeIdx {
			if e, err := g.GetEdge(idx); err == nil {
				edges = append(edges, e)
			}
		}
		o.Groups = append(o.Groups, summarize(label.String(), nodes, edges, s.Groups[label]))
	}

	return o
}

func summarize(label string, nodes []*graphstore.Node, edges []*graphstore.Edge, gs *schema.GroupSchema) GroupSummary {
	nodeValues := make(map[string][]value.Value)
	for _, n := range nodes {
		for k, v := range n.Attributes {
			nodeValues[k] = append(nodeValues[k], v)
		}
	}
	edgeValues := make(map[string][]value.Value)
	for _, e := range edges {
		for k, v := range e.Attributes {
			edgeValues[k] = append(edgeValues[k], v)
		}
	}

	return GroupSummary{
		Label:          label,
		NodeCount:      len(nodes),
		EdgeCount:      len(edges),
		NodeAttributes: attributeSummaries(gs.Nodes, nodeValues),
		EdgeAttributes: attributeSummaries(gs.Edges, edgeValues),
	}
}

func attributeSummaries(typed map[string]datatype.AttributeDataType, values map[string][]value.Value) []AttributeSummary {
	names := make([]string, 0, len(typed))
	for name := range typed {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]AttributeSummary, 0, len(names))
	for _, name := range names {
		adt := typed[name]
		vals := values[name]
		summary := AttributeSummary{
			Name:          name,
			DataType:      adt.DataType,
			AttributeType: adt.AttributeType,
			Count:         len(vals),
		}

		switch adt.AttributeType {
		case datatype.Continuous:
			summary.Min, summary.Mean, summary.Max = continuousStats(vals)
		case datatype.Temporal:
			summary.Min, summary.Max = minMax(vals)
		default:
			summary.DistinctCount = distinctCount(vals)
		}

		out = append(out, summary)
	}
	return out
}

func minMax(vals []value.Value) (min, max value.Value) {
	if len(vals) == 0 {
		return value.Null(), value.Null()
	}
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v.Compare(min) == value.Less {
			min = v
		}
		if v.Compare(max) == value.Greater {
			max = v
		}
	}
	return min, max
}

func continuousStats(vals []value.Value) (min, mean, max value.Value) {
	min, max = minMax(vals)
	if len(vals) == 0 {
		return min, value.Null(), max
	}
	var sum float64
	for _, v := range vals {
		f, _ := v.AsFloat()
		sum += f
	}
	return min, value.Float(sum / float64(len(vals))), max
}

func distinctCount(vals []value.Value) int {
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		seen[v.Kind.String()+":"+v.String()] = struct{}{}
	}
	return len(seen)
}

// Render formats the overview as aligned text tables, one per group, via
// text/tabwriter — the stdlib stand-in for the original's tabled-rendered
// Display impl.
func (o *Overview) Render() string {
	var buf writerBuf
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	for _, group := range o.Groups {
		fmt.Fprintf(tw, "== %s (nodes: %d, edges: %d) ==\n", group.Label, group.NodeCount, group.EdgeCount)
		fmt.Fprintln(tw, "Entity\tAttribute\tAttribute Type\tData Type\tDetails")
		for _, a := range group.NodeAttributes {
			fmt.Fprintf(tw, "node\t%s\t%s\t%s\t%s\n", a.Name, a.AttributeType, a.DataType, a.Details())
		}
		for _, a := range group.EdgeAttributes {
			fmt.Fprintf(tw, "edge\t%s\t%s\t%s\t%s\n", a.Name, a.AttributeType, a.DataType, a.Details())
		}
		fmt.Fprintln(tw)
	}

	tw.Flush()
	return buf.String()
}

type writerBuf struct{ data []byte }

func (w *writerBuf) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}
func (w *writerBuf) String() string { return string(w.data) }

// ExportCSV writes one row per (group, entity kind, attribute), the
// flattened dataframe shape graphrecord/polars.rs hands to a dataframe
// library — here just an io.Writer, since a bundled CSV file is the
// chosen wire format rather than an in-memory dataframe.
func (o *Overview) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"group", "entity", "attribute", "attribute_type", "data_type", "count", "details"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, group := range o.Groups {
		if err := writeRows(cw, group.Label, "node", group.NodeAttributes); err != nil {
			return err
		}
		if err := writeRows(cw, group.Label, "edge", group.EdgeAttributes); err != nil {
			return err
		}
	}
	return cw.Error()
}

func writeRows(cw *csv.Writer, group, entity string, attrs []AttributeSummary) error {
	for _, a := range attrs {
		row := []string{
			group, entity, a.Name,
			a.AttributeType.String(), a.DataType.String(),
			fmt.Sprintf("%d", a.Count), a.Details(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// ExportCompressedCSV writes the same rows as ExportCSV through a zstd
// writer, for overviews large enough that the CSV dump itself is worth
// compressing before it hits disk.
func (o *Overview) ExportCompressedCSV(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := o.ExportCSV(zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
