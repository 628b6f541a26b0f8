package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

const (
	ChunkSize    = 1000 // characters per chunk
	ChunkOverlap = 200  // overlap between chunks

	// MaxPromptChunks bounds how much material goes into one prompt
	MaxPromptChunks = 10
)

// LoadMaterial reads study material from a PDF or a plain text file
func LoadMaterial(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ExtractTextFromPDF(path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read material: %w", err)
	}
	return string(b), nil
}

// ExtractTextFromPDF extracts all text from a PDF file
func ExtractTextFromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			// Continue even if one page fails
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// ChunkText splits text into overlapping chunks
func ChunkText(text string) []string {
	if len(text) == 0 {
		return []string{}
	}

	var chunks []string
	runes := []rune(text)
	start := 0

	for start < len(runes) {
		end := min(start+ChunkSize, len(runes))

		chunk := strings.TrimSpace(string(runes[start:end]))
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}

		// Move forward, but overlap
		start += ChunkSize - ChunkOverlap
	}

	return chunks
}

// ClipMaterial keeps the text covered by the first MaxPromptChunks chunks.
// Shorter material is returned trimmed.
func ClipMaterial(text string) string {
	text = strings.TrimSpace(text)
	chunks := ChunkText(text)
	if len(chunks) <= MaxPromptChunks {
		return text
	}
	limit := (MaxPromptChunks-1)*(ChunkSize-ChunkOverlap) + ChunkSize
	log.Debug().Int("chunks", len(chunks)).Int("kept_chars", limit).Msg("Clipping long material")
	return strings.TrimSpace(string([]rune(text)[:limit]))
}
