package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/db"
	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
)

const (
	exportTranscript = "transcript"
	exportMindMapPNG = "mindmap-png"
)

// CreateExport renders the current artifact (or the chat transcript) and
// stores it for download
func (h *Handler) CreateExport(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	kind := c.Param("kind")
	var (
		export   codec.Export
		fallback bool
	)
	switch kind {
	case exportTranscript:
		export = codec.ExportTranscript(ws.Chat.Learner(), ws.Chat.History())
	case exportMindMapPNG:
		m, ok := ws.MindMap()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "No mind map generated yet"})
			return
		}
		png, err := h.renderMindMap(m, defaultWidth, defaultHeight)
		if err != nil {
			log.Error().Err(err).Msg("Failed to render mind map")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render mind map"})
			return
		}
		_, fallback, _ = ws.artifact(models.KindMindMap)
		export = codec.Export{Body: png, ContentType: codec.ContentTypePNG, Filename: "mindmap.png"}
	default:
		k, ok := models.ParseKind(kind)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown export kind"})
			return
		}
		artifact, fb, ok := ws.artifact(k)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Nothing generated yet"})
			return
		}
		var err error
		if export, err = codec.ExportArtifact(artifact); err != nil {
			log.Error().Err(err).Str("kind", kind).Msg("Failed to export artifact")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export artifact"})
			return
		}
		fallback = fb
	}

	rec, err := db.SaveExport(c.Request.Context(), h.db, models.ExportRecord{
		WorkspaceID: ws.ID,
		Kind:        kind,
		ContentType: export.ContentType,
		Filename:    export.Filename,
		Body:        export.Body,
		Fallback:    fallback,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to save export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save export"})
		return
	}
	log.Info().Str("export_id", rec.ID).Str("kind", kind).Int("size", rec.Size).Msg("Export stored")

	c.JSON(http.StatusCreated, gin.H{"export": rec})
}

func (h *Handler) ListExports(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	recs, err := db.ListExports(c.Request.Context(), h.db, ws.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": recs})
}

func (h *Handler) DownloadExport(c *gin.Context) {
	rec, err := db.GetExport(c.Request.Context(), h.db, c.Param("exportId"))
	if errors.Is(err, db.ErrExportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load export"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	c.Data(http.StatusOK, rec.ContentType, rec.Body)
}
