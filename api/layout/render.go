package layout

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// Renderer draws layouts to PNG. A nil Face uses gg's built-in bitmap font.
type Renderer struct {
	Face font.Face
}

// LoadFontFace parses a TrueType font file at the given point size
func LoadFontFace(path string, size float64) (font.Face, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// FitRadius is the branch radius that keeps subtopics inside a w x h canvas
func FitRadius(w, h int) float64 {
	return math.Min(float64(w), float64(h)) / 2 / (1 + subtopicDistance) * 0.85
}

// RenderPNG draws l onto a w x h canvas
func (r Renderer) RenderPNG(l Layout, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", w, h)
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	if r.Face != nil {
		dc.SetFontFace(r.Face)
	}

	pos := make(map[int]Node, len(l.Nodes))
	for _, n := range l.Nodes {
		pos[n.ID] = n
	}

	dc.SetLineWidth(2)
	for _, e := range l.Edges {
		from, to := pos[e.From], pos[e.To]
		setHex(dc, to.Color, "#94A3B8")
		dc.DrawLine(from.Position.X, from.Position.Y, to.Position.X, to.Position.Y)
		dc.Stroke()
	}

	dc.SetDash(4, 4)
	dc.SetLineWidth(1)
	dc.SetHexColor("#CBD5E1")
	for _, e := range l.Links {
		from, okFrom := pos[e.From]
		to, okTo := pos[e.To]
		if !okFrom || !okTo {
			continue
		}
		dc.DrawLine(from.Position.X, from.Position.Y, to.Position.X, to.Position.Y)
		dc.Stroke()
	}
	dc.SetDash()

	scale := l.Radius / 100
	for _, n := range l.Nodes {
		radius := nodeRadius(n.Kind) * math.Max(scale, 0.5)
		setHex(dc, n.Color, "#4F46E5")
		dc.DrawCircle(n.Position.X, n.Position.Y, radius)
		dc.Fill()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(n.Label, n.Position.X, n.Position.Y+radius+10, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func nodeRadius(k NodeKind) float64 {
	switch k {
	case NodeCentral:
		return 28
	case NodeBranch:
		return 16
	default:
		return 8
	}
}

func setHex(dc *gg.Context, hex, def string) {
	if hex == "" {
		hex = def
	}
	dc.SetHexColor(hex)
}
