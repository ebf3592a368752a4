package overview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/schema"
	"github.com/ritamzico/propgraph/internal/value"
)

func buildTestGraph(t *testing.T) (*graphstore.Graph, *groupmap.GroupMapping, *schema.Schema) {
	t.Helper()
	g := graphstore.New()
	gm := groupmap.New()
	s := schema.New(schema.Inferred)

	a := value.KeyFromString("A")
	b := value.KeyFromString("B")
	attrsA := map[string]value.Value{"age": value.Int(10), "name": value.String("Alice")}
	attrsB := map[string]value.Value{"age": value.Int(20), "name": value.String("Bob")}

	if err := g.AddNode(a, attrsA); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if err := g.AddNode(b, attrsB); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if err := s.UpdateNodeAttributes(attrsA, nil); err != nil {
		t.Fatalf("UpdateNodeAttributes failed: %v", err)
	}
	if err := s.UpdateNodeAttributes(attrsB, nil); err != nil {
		t.Fatalf("UpdateNodeAttributes failed: %v", err)
	}

	return g, gm, s
}

func TestBuildSummarizesUngroupedAttributes(t *testing.T) {
	g, gm, s := buildTestGraph(t)

	ov := Build(g, gm, s)
	if len(ov.Groups) != 1 {
		t.Fatalf("expected a single ungrouped summary, got %d groups", len(ov.Groups))
	}

	summary := ov.Groups[0]
	if summary.NodeCount != 2 {
		t.Errorf("NodeCount = %d, want 2", summary.NodeCount)
	}
	if len(summary.NodeAttributes) != 2 {
		t.Fatalf("expected 2 node attributes, got %d", len(summary.NodeAttributes))
	}
}

func TestBuildIncludesPerGroupSummary(t *testing.T) {
	g, gm, s := buildTestGraph(t)

	grp := value.KeyFromString("people")
	gm.AddGroup(grp, nil, nil)
	gm.AddNodeToGroup(grp, value.KeyFromString("A"))
	s.UpdateNodeAttributes(map[string]value.Value{"age": value.Int(10)}, []groupmap.Group{grp})

	ov := Build(g, gm, s)
	if len(ov.Groups) != 2 {
		t.Fatalf("expected ungrouped + 1 group summary, got %d", len(ov.Groups))
	}

	var found bool
	for _, grp := range ov.Groups {
		if grp.Label == "people" {
			found = true
			if grp.NodeCount != 1 {
				t.Errorf("people group NodeCount = %d, want 1", grp.NodeCount)
			}
		}
	}
	if !found {
		t.Error("expected a summary labeled 'people'")
	}
}

func TestRenderProducesOneTablePerGroup(t *testing.T) {
	g, gm, s := buildTestGraph(t)
	ov := Build(g, gm, s)

	out := ov.Render()
	if !strings.Contains(out, "(ungrouped)") {
		t.Error("expected the rendered overview to mention the ungrouped group")
	}
	if !strings.Contains(out, "age") {
		t.Error("expected the rendered overview to list the age attribute")
	}
}

func TestExportCSVHasHeaderAndRows(t *testing.T) {
	g, gm, s := buildTestGraph(t)
	ov := Build(g, gm, s)

	var buf bytes.Buffer
	if err := ov.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected a header plus at least one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "group,entity,attribute") {
		t.Errorf("unexpected CSV header: %q", lines[0])
	}
}

func TestExportCompressedCSVRoundTrips(t *testing.T) {
	g, gm, s := buildTestGraph(t)
	ov := Build(g, gm, s)

	var compressed bytes.Buffer
	if err := ov.ExportCompressedCSV(&compressed); err != nil {
		t.Fatalf("ExportCompressedCSV failed: %v", err)
	}

	zr, err := zstd.NewReader(&compressed)
	if err != nil {
		t.Fatalf("zstd.NewReader failed: %v", err)
	}
	defer zr.Close()

	var plain bytes.Buffer
	if err := ov.ExportCSV(&plain); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	var decompressed bytes.Buffer
	if _, err := decompressed.ReadFrom(zr); err != nil {
		t.Fatalf("reading decompressed stream failed: %v", err)
	}
	if decompressed.String() != plain.String() {
		t.Error("decompressed CSV should match the uncompressed export")
	}
}
