package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/layout"
	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
)

const (
	defaultCenterX = 350
	defaultCenterY = 280
	defaultRadius  = 180
	defaultWidth   = 800
	defaultHeight  = 600
)

type LayoutQuery struct {
	CX     *float64 `form:"cx" binding:"omitempty,gte=0,lte=10000"`
	CY     *float64 `form:"cy" binding:"omitempty,gte=0,lte=10000"`
	Radius float64  `form:"radius" binding:"omitempty,gt=0,lte=5000"`
	Zoom   float64  `form:"zoom" binding:"omitempty,gt=0,lte=10"`
}

type PNGQuery struct {
	Width  int `form:"width" binding:"omitempty,min=100,max=4000"`
	Height int `form:"height" binding:"omitempty,min=100,max=4000"`
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// MindMapLayout positions the current mind map. Zoom rescales the layout
// computed at radius, it never recomputes angles.
func (h *Handler) MindMapLayout(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var q LayoutQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, ok := ws.MindMap()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No mind map generated yet"})
		return
	}

	radius := q.Radius
	if radius == 0 {
		radius = defaultRadius
	}
	l := layout.Radial(m, layout.Point{X: floatOr(q.CX, defaultCenterX), Y: floatOr(q.CY, defaultCenterY)}, radius)
	if q.Zoom != 0 && q.Zoom != 1 {
		l = l.Scale(q.Zoom)
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) MindMapPNG(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var q PNGQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, ok := ws.MindMap()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No mind map generated yet"})
		return
	}

	png, err := h.renderMindMap(m, orDefault(q.Width, defaultWidth), orDefault(q.Height, defaultHeight))
	if err != nil {
		log.Error().Err(err).Msg("Failed to render mind map")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render mind map"})
		return
	}
	c.Data(http.StatusOK, codec.ContentTypePNG, png)
}

func (h *Handler) renderMindMap(m models.MindMap, w, ht int) ([]byte, error) {
	center := layout.Point{X: float64(w) / 2, Y: float64(ht) / 2}
	return h.renderer.RenderPNG(layout.Radial(m, center, layout.FitRadius(w, ht)), w, ht)
}
