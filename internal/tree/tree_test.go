package tree

import (
	"errors"
	"testing"
)

func TestNewHasSingleRoot(t *testing.T) {
	tr := New("Research Session")

	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}
	root := tr.Get(tr.RootID())
	if root == nil {
		t.Fatal("root node missing")
	}
	if root.Kind != KindRoot {
		t.Errorf("root Kind = %q, want %q", root.Kind, KindRoot)
	}
	if root.Content != "Research Session" {
		t.Errorf("root Content = %q", root.Content)
	}
	if root.ParentID != "" {
		t.Errorf("root ParentID = %q, want empty", root.ParentID)
	}
	if root.Metadata.CreatedAt.IsZero() {
		t.Error("root CreatedAt not stamped")
	}
}

func TestAddNodeDefaultsToRoot(t *testing.T) {
	tr := New("session")

	id, err := tr.AddNode("what causes X?", KindQuery, "", Metadata{})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	node := tr.Get(id)
	if node.ParentID != tr.RootID() {
		t.Errorf("ParentID = %q, want root %q", node.ParentID, tr.RootID())
	}
	if node.Metadata.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}

	children := tr.Children(tr.RootID())
	if len(children) != 1 || children[0].ID != id {
		t.Errorf("root children = %v, want [%s]", children, id)
	}
}

func TestAddNodeParentNotFound(t *testing.T) {
	tr := New("session")

	_, err := tr.AddNode("orphan", KindResult, "no-such-id", Metadata{})
	if !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("err = %v, want ErrParentNotFound", err)
	}
	// The failed insert must leave the tree unchanged.
	if tr.Len() != 1 {
		t.Errorf("Len() = %d after failed insert, want 1", tr.Len())
	}
	if len(tr.Children(tr.RootID())) != 0 {
		t.Error("root gained a child from a failed insert")
	}
}

func TestBidirectionalLinks(t *testing.T) {
	tr := New("session")

	queryID, _ := tr.AddNode("q", KindQuery, "", Metadata{})
	resultID, _ := tr.AddNode("r", KindResult, queryID, Metadata{})

	parent := tr.Get(queryID)
	if len(parent.ChildrenIDs) != 1 || parent.ChildrenIDs[0] != resultID {
		t.Errorf("query ChildrenIDs = %v, want [%s]", parent.ChildrenIDs, resultID)
	}
	if tr.Get(resultID).ParentID != queryID {
		t.Errorf("result ParentID = %q, want %q", tr.Get(resultID).ParentID, queryID)
	}
}

func TestPathToRoot(t *testing.T) {
	tr := New("session")

	queryID, _ := tr.AddNode("q", KindQuery, "", Metadata{})
	resultID, _ := tr.AddNode("r", KindResult, queryID, Metadata{})
	insightID, _ := tr.AddNode("i", KindInsight, resultID, Metadata{})

	path := tr.PathToRoot(insightID)
	if len(path) != 4 {
		t.Fatalf("len(path) = %d, want 4", len(path))
	}
	want := []string{tr.RootID(), queryID, resultID, insightID}
	for i, n := range path {
		if n.ID != want[i] {
			t.Errorf("path[%d].ID = %q, want %q", i, n.ID, want[i])
		}
	}
	if path[0].Kind != KindRoot {
		t.Errorf("path[0].Kind = %q, want root", path[0].Kind)
	}
}

func TestPathToRootAbsentID(t *testing.T) {
	tr := New("session")
	if path := tr.PathToRoot("nope"); path != nil {
		t.Errorf("PathToRoot(absent) = %v, want nil", path)
	}
}

func TestInsightsAndResultsInsertionOrder(t *testing.T) {
	tr := New("session")

	queryID, _ := tr.AddNode("q", KindQuery, "", Metadata{})
	resultID, _ := tr.AddNode("r", KindResult, queryID, Metadata{})
	first, _ := tr.AddNode("insight one", KindInsight, resultID, Metadata{})
	second, _ := tr.AddNode("insight two", KindInsight, resultID, Metadata{})

	insights := tr.Insights()
	if len(insights) != 2 {
		t.Fatalf("len(Insights()) = %d, want 2", len(insights))
	}
	if insights[0].ID != first || insights[1].ID != second {
		t.Errorf("insight order = [%s %s], want [%s %s]",
			insights[0].ID, insights[1].ID, first, second)
	}

	results := tr.Results()
	if len(results) != 1 || results[0].ID != resultID {
		t.Errorf("Results() = %v, want single node %s", results, resultID)
	}

	// Root + query + result + 2 insights.
	if tr.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tr.Len())
	}
}

func TestInsightContents(t *testing.T) {
	tr := New("session")
	tr.AddNode("alpha", KindInsight, "", Metadata{})
	tr.AddNode("beta", KindInsight, "", Metadata{})

	got := tr.InsightContents()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("InsightContents() = %v", got)
	}
}

func TestParentPredatesChild(t *testing.T) {
	tr := New("session")

	prev := ""
	for i := 0; i < 20; i++ {
		id, err := tr.AddNode("n", KindSummary, prev, Metadata{})
		if err != nil {
			t.Fatalf("AddNode %d: %v", i, err)
		}
		prev = id
	}

	// Depth of the last node is 20; PathToRoot must terminate at the root
	// in exactly depth+1 steps.
	path := tr.PathToRoot(prev)
	if len(path) != 21 {
		t.Fatalf("len(path) = %d, want 21", len(path))
	}
	if path[0].ID != tr.RootID() {
		t.Error("path does not start at root")
	}
}

func TestSnapshot(t *testing.T) {
	tr := New("session")
	queryID, _ := tr.AddNode("q", KindQuery, "", Metadata{Agent: "research", Extra: map[string]string{"depth": "0"}})

	snap := tr.Snapshot()
	if snap.RootID != tr.RootID() {
		t.Errorf("RootID = %q, want %q", snap.RootID, tr.RootID())
	}
	if len(snap.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(snap.Nodes))
	}
	qn, ok := snap.Nodes[queryID]
	if !ok {
		t.Fatal("query node missing from snapshot")
	}
	if qn.Metadata.Agent != "research" || qn.Metadata.Extra["depth"] != "0" {
		t.Errorf("metadata not preserved: %+v", qn.Metadata)
	}

	// Mutating the snapshot must not leak back into the tree.
	qn.ChildrenIDs = append(qn.ChildrenIDs, "bogus")
	qn.Metadata.Extra["depth"] = "9"
	if tr.Get(queryID).Metadata.Extra["depth"] != "0" {
		t.Error("snapshot shares metadata map with the tree")
	}
}

func TestNodeIDsUnique(t *testing.T) {
	tr := New("session")
	seen := map[string]bool{tr.RootID(): true}
	for i := 0; i < 100; i++ {
		id, err := tr.AddNode("n", KindSummary, "", Metadata{})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate node ID %q", id)
		}
		seen[id] = true
	}
}
