// Package layout places mind-map nodes on a radial node-link diagram
package layout

import (
	"math"

	"github.com/local/studyai/api/models"
)

// Label caps in runes. Truncation is the only overlap defense.
const (
	CentralLabelCap  = 24
	BranchLabelCap   = 18
	SubtopicLabelCap = 14
)

const (
	subtopicDistance = 0.45
	subtopicSpread   = math.Pi / 6
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NodeKind string

const (
	NodeCentral  NodeKind = "central"
	NodeBranch   NodeKind = "branch"
	NodeSubtopic NodeKind = "subtopic"
)

// Node is a positioned mind-map node. The central node has ID 0.
type Node struct {
	ID       int      `json:"id"`
	Kind     NodeKind `json:"kind"`
	Label    string   `json:"label"`
	Emoji    string   `json:"emoji,omitempty"`
	Color    string   `json:"color,omitempty"`
	Parent   int      `json:"parent"`
	Angle    float64  `json:"angle"`
	Position Point    `json:"position"`
}

type Edge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label,omitempty"`
}

// Layout is the output of Radial. Edges link parents to children; Links are
// the map's cross connections.
type Layout struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Links  []Edge  `json:"links"`
}

// BranchAngle is the angle of branch i of n: 12 o'clock first, then clockwise
// in screen coordinates
func BranchAngle(i, n int) float64 {
	return 2*math.Pi*float64(i)/float64(n) - math.Pi/2
}

func polar(c Point, r, angle float64) Point {
	return Point{X: c.X + r*math.Cos(angle), Y: c.Y + r*math.Sin(angle)}
}

// Radial places the central topic at center and each branch on a circle of
// radius around it. Subtopics fan out around their branch.
func Radial(m models.MindMap, center Point, radius float64) Layout {
	l := Layout{
		Center: center,
		Radius: radius,
		Nodes: []Node{{
			ID:       0,
			Kind:     NodeCentral,
			Label:    Truncate(m.CentralTopic, CentralLabelCap),
			Emoji:    m.CentralEmoji,
			Parent:   -1,
			Position: center,
		}},
		Edges: []Edge{},
		Links: []Edge{},
	}

	n := len(m.Branches)
	for i, b := range m.Branches {
		theta := BranchAngle(i, n)
		pos := polar(center, radius, theta)
		l.Nodes = append(l.Nodes, Node{
			ID:       b.ID,
			Kind:     NodeBranch,
			Label:    Truncate(b.Topic, BranchLabelCap),
			Emoji:    b.Emoji,
			Color:    b.Color,
			Parent:   0,
			Angle:    theta,
			Position: pos,
		})
		l.Edges = append(l.Edges, Edge{From: 0, To: b.ID})

		k := len(b.Subtopics)
		for j, st := range b.Subtopics {
			phi := theta + (float64(j)-float64(k-1)/2)*subtopicSpread
			l.Nodes = append(l.Nodes, Node{
				ID:       st.ID,
				Kind:     NodeSubtopic,
				Label:    Truncate(st.Name, SubtopicLabelCap),
				Color:    b.Color,
				Parent:   b.ID,
				Angle:    phi,
				Position: polar(pos, subtopicDistance*radius, phi),
			})
			l.Edges = append(l.Edges, Edge{From: b.ID, To: st.ID})
		}
	}
	for _, c := range m.Connections {
		l.Links = append(l.Links, Edge{From: c.From, To: c.To, Label: c.Label})
	}
	return l
}

// Scale zooms the layout about its center. Angles and topology are kept.
func (l Layout) Scale(k float64) Layout {
	out := l
	out.Radius = l.Radius * k
	out.Nodes = make([]Node, len(l.Nodes))
	for i, n := range l.Nodes {
		n.Position = Point{
			X: l.Center.X + k*(n.Position.X-l.Center.X),
			Y: l.Center.Y + k*(n.Position.Y-l.Center.Y),
		}
		out.Nodes[i] = n
	}
	return out
}

// Node looks a node up by id
func (l Layout) Node(id int) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Truncate shortens s to at most limit runes, ending in an ellipsis when cut
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
