package dsl

import (
	"strings"

	"github.com/ritamzico/propgraph/internal/query"
	"github.com/ritamzico/propgraph/internal/value"
)

// Result is whatever a Query produces: a flat list of values (ungrouped
// RETURN) or a list of (key, value) pairs (grouped RETURN).
type Result interface {
	String() string
}

// ValueResult is the result of an ungrouped RETURN clause.
type ValueResult struct {
	Values []value.Value
}

func (r ValueResult) String() string {
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = v.String()
	}
	return strings.Join(parts, "\n")
}

// GroupResult is the result of a grouped RETURN clause: one row per
// partition key, in the order query.SortByKey leaves them.
type GroupResult struct {
	Rows []query.GroupResult
}

func (r GroupResult) String() string {
	lines := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		lines[i] = row.Key.String() + ": " + row.Value.String()
	}
	return strings.Join(lines, "\n")
}
