// Package ocr extracts text from scanned invoices and parses it into
// structured candidate fields with a confidence score.
package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".bmp", ".pdf"}

// Engine extracts raw text from invoice documents: go-fitz for PDFs,
// Tesseract (gosseract) for images.
type Engine struct {
	languages []string
	log       zerolog.Logger
}

// NewEngine creates an extraction engine. Tesseract runs with Spanish and
// English models, matching the documents the back office receives.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{languages: []string{"spa", "eng"}, log: log}
}

// SupportedFormats returns the accepted file extensions.
func SupportedFormats() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// SupportedFormat reports whether the filename's extension is accepted.
func (e *Engine) SupportedFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ExtractText extracts text from the document bytes. PDF pages that carry
// embedded text are read directly; images go through Tesseract.
func (e *Engine) ExtractText(ctx context.Context, content []byte, filename string) (string, error) {
	if !e.SupportedFormat(filename) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error
	if ext == ".pdf" {
		text, err = e.extractFromPDF(content)
	} else {
		text, err = e.extractFromImage(content)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrNoTextExtracted
	}

	e.log.Debug().
		Str("file", filename).
		Int("text_length", len(text)).
		Msg("text extracted")

	return text, nil
}

func (e *Engine) extractFromPDF(content []byte) (string, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			e.log.Warn().Err(err).Int("page", i+1).Msg("pdf page text extraction failed")
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
			continue
		}
		// Scanned page without an embedded text layer: render and OCR it.
		img, err := doc.ImagePNG(i, 2.0)
		if err != nil {
			e.log.Warn().Err(err).Int("page", i+1).Msg("pdf page render failed")
			continue
		}
		ocrText, err := e.extractFromImage(img)
		if err != nil {
			e.log.Warn().Err(err).Int("page", i+1).Msg("pdf page ocr failed")
			continue
		}
		b.WriteString(ocrText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (e *Engine) extractFromImage(content []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("set ocr languages: %w", err)
	}
	if err := client.SetImageFromBytes(content); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
