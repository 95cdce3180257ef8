package system

import (
	"io"
	"log"
)

type NodeKind int

const (
	NodePlanet NodeKind = iota
	NodeStar
	NodeBarycenter
)

func (k NodeKind) String() string {
	switch k {
	case NodeStar:
		return "star"
	case NodeBarycenter:
		return "barycenter"
	default:
		return "planet"
	}
}

func kindOf(t BodyType) NodeKind {
	switch {
	case t.IsStellar():
		return NodeStar
	case t == Barycenter:
		return NodeBarycenter
	default:
		return NodePlanet
	}
}

type BodyNode struct {
	Body     *Body
	Kind     NodeKind
	Parent   *BodyNode
	Children []*BodyNode
}

// BodyTree is the parent forest of a system's bodies. A body whose nearest
// parent id is missing from the system becomes a root.
type BodyTree struct {
	Roots []*BodyNode

	nodes map[int]*BodyNode
	log   *log.Logger
}

func NewBodyTree(bodies []*Body, logger *log.Logger) *BodyTree {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	t := &BodyTree{nodes: make(map[int]*BodyNode, len(bodies)), log: logger}
	for _, b := range bodies {
		t.nodes[b.Num] = &BodyNode{Body: b, Kind: kindOf(b.Type)}
	}
	for _, b := range bodies {
		n := t.nodes[b.Num]
		if len(b.Parents) > 0 {
			if p, ok := t.nodes[b.Parents[0]]; ok && p != n {
				n.Parent = p
				p.Children = append(p.Children, n)
				continue
			}
		}
		t.Roots = append(t.Roots, n)
	}
	return t
}

func (t *BodyTree) Node(num int) (*BodyNode, bool) {
	n, ok := t.nodes[num]
	return n, ok
}

// IsTidalToStar reports whether b is tidally locked along an unbroken chain of
// tidally locked ancestors up to a star, walking the tree's parent links.
// Barycenters are passed through. A parent id that is not in the system stops
// the climb with false.
func (t *BodyTree) IsTidalToStar(b *Body) bool {
	if b == nil || !b.Has(FeatureTidal) {
		return false
	}
	n, ok := t.nodes[b.Num]
	if !ok {
		return false
	}
	for steps := 0; steps <= len(t.nodes); steps++ {
		p := n.Parent
		if p == nil {
			if len(n.Body.Parents) > 0 {
				if _, ok := t.nodes[n.Body.Parents[0]]; !ok {
					t.log.Printf("error: body %q: parent %d not found", n.Body.Name, n.Body.Parents[0])
				}
			}
			return false
		}
		switch p.Kind {
		case NodeStar:
			return true
		case NodePlanet:
			if !p.Body.Has(FeatureTidal) {
				return false
			}
		}
		n = p
	}
	t.log.Printf("error: body %q: parent chain does not end", b.Name)
	return false
}
