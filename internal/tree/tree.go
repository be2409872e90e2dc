// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tree maintains the research tree: a single-rooted, append-only
// hierarchy of typed text nodes recording every query, retrieved result,
// and derived insight produced during a research run.
package tree

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NodeKind categorizes a node in the research tree. The set is closed and
// a node's kind never changes after creation.
type NodeKind string

const (
	KindRoot    NodeKind = "root"
	KindQuery   NodeKind = "query"
	KindResult  NodeKind = "result"
	KindInsight NodeKind = "insight"
	KindSummary NodeKind = "summary"
	KindOutline NodeKind = "outline"
)

// ErrParentNotFound reports an AddNode call whose parent ID is absent from
// the tree. It indicates a structural bug in the caller and is never
// recovered silently.
var ErrParentNotFound = errors.New("parent node not found")

// Metadata carries per-node annotations. The well-known fields are stamped
// by the tree or the workflow; Extra holds caller-supplied values.
type Metadata struct {
	// CreatedAt is stamped at node creation.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Agent names the workflow that produced the node.
	Agent string `json:"agent,omitempty" yaml:"agent,omitempty"`

	// ExtractedBy names the component that derived an insight node.
	ExtractedBy string `json:"extracted_by,omitempty" yaml:"extracted_by,omitempty"`

	// Extra holds additional caller-supplied annotations.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Node is a single typed text record in the research tree. ID, Kind,
// Content, and ParentID are immutable after creation; ChildrenIDs is
// append-only and maintained by AddNode.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Kind        NodeKind `json:"kind" yaml:"kind"`
	Content     string   `json:"content" yaml:"content"`
	Metadata    Metadata `json:"metadata" yaml:"metadata"`
	ParentID    string   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	ChildrenIDs []string `json:"children_ids" yaml:"children_ids"`
}

// Tree owns a set of nodes rooted at a single root node. It only grows:
// no node is ever removed or re-parented. A Tree is created fresh per
// research run and is not safe for concurrent use.
type Tree struct {
	rootID string
	nodes  map[string]*Node
	order  []string // node IDs in insertion order
	now    func() time.Time
}

// New creates a tree containing exactly one root node labeled rootLabel.
func New(rootLabel string) *Tree {
	t := &Tree{
		nodes: make(map[string]*Node),
		now:   time.Now,
	}
	id := newNodeID()
	t.rootID = id
	t.nodes[id] = &Node{
		ID:       id,
		Kind:     KindRoot,
		Content:  rootLabel,
		Metadata: Metadata{CreatedAt: t.now()},
	}
	t.order = append(t.order, id)
	return t
}

// newNodeID returns a short unique node identifier. The 8-character UUID
// prefix keeps tree dumps readable while staying unique within a run.
func newNodeID() string {
	return uuid.NewString()[:8]
}

// RootID returns the ID of the tree's root node.
func (t *Tree) RootID() string {
	return t.rootID
}

// AddNode appends a node under parentID and returns the new node's ID.
// An empty parentID defaults to the root. If parentID names a node that
// does not exist in the tree, AddNode returns ErrParentNotFound and the
// tree is left unchanged. The node's Metadata.CreatedAt is always stamped.
func (t *Tree) AddNode(content string, kind NodeKind, parentID string, meta Metadata) (string, error) {
	if parentID == "" {
		parentID = t.rootID
	}
	parent, ok := t.nodes[parentID]
	if !ok {
		return "", fmt.Errorf("adding %s node: %w: %s", kind, ErrParentNotFound, parentID)
	}

	id := newNodeID()
	meta.CreatedAt = t.now()

	t.nodes[id] = &Node{
		ID:       id,
		Kind:     kind,
		Content:  content,
		Metadata: meta,
		ParentID: parentID,
	}
	t.order = append(t.order, id)
	parent.ChildrenIDs = append(parent.ChildrenIDs, id)

	return id, nil
}

// Get returns the node with the given ID, or nil if it is absent.
func (t *Tree) Get(id string) *Node {
	return t.nodes[id]
}

// Children returns the children of the node with the given ID in the order
// they were added. It returns an empty slice when the ID is absent or the
// node has no children.
func (t *Tree) Children(id string) []*Node {
	node, ok := t.nodes[id]
	if !ok {
		return nil
	}
	children := make([]*Node, 0, len(node.ChildrenIDs))
	for _, cid := range node.ChildrenIDs {
		children = append(children, t.nodes[cid])
	}
	return children
}

// PathToRoot returns the nodes from the root down to the node with the
// given ID, root first. It returns nil when the ID is absent. The walk
// always terminates: a parent is inserted strictly before its children,
// so parent links cannot form a cycle.
func (t *Tree) PathToRoot(id string) []*Node {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	var path []*Node
	for cur := id; cur != ""; {
		node := t.nodes[cur]
		path = append(path, node)
		cur = node.ParentID
	}
	// Walked leaf-to-root; reverse to root-first.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Insights returns all insight nodes in insertion order.
func (t *Tree) Insights() []*Node {
	return t.byKind(KindInsight)
}

// Results returns all result nodes in insertion order.
func (t *Tree) Results() []*Node {
	return t.byKind(KindResult)
}

func (t *Tree) byKind(kind NodeKind) []*Node {
	var nodes []*Node
	for _, id := range t.order {
		if n := t.nodes[id]; n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// InsightContents returns the content of every insight node in insertion order.
func (t *Tree) InsightContents() []string {
	insights := t.Insights()
	contents := make([]string, 0, len(insights))
	for _, n := range insights {
		contents = append(contents, n.Content)
	}
	return contents
}

// Len returns the total number of nodes, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// TotalContentLen returns the summed content length of every node.
func (t *Tree) TotalContentLen() int {
	total := 0
	for _, n := range t.nodes {
		total += len(n.Content)
	}
	return total
}

// Snapshot is a full serializable copy of a tree, suitable for transport
// or storage alongside a report.
type Snapshot struct {
	RootID string          `json:"root_id" yaml:"root_id"`
	Nodes  map[string]Node `json:"nodes" yaml:"nodes"`
}

// Snapshot returns a deep copy of the tree keyed by node ID.
func (t *Tree) Snapshot() Snapshot {
	nodes := make(map[string]Node, len(t.nodes))
	for id, n := range t.nodes {
		cp := *n
		cp.ChildrenIDs = append([]string(nil), n.ChildrenIDs...)
		if n.Metadata.Extra != nil {
			cp.Metadata.Extra = make(map[string]string, len(n.Metadata.Extra))
			for k, v := range n.Metadata.Extra {
				cp.Metadata.Extra[k] = v
			}
		}
		nodes[id] = cp
	}
	return Snapshot{RootID: t.rootID, Nodes: nodes}
}
