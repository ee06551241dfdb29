package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Transcript is a printable conversation or ticket thread.
type Transcript struct {
	Title       string
	Meta        []string
	Entries     []Entry
	GeneratedAt time.Time
}

type Entry struct {
	Author string
	At     time.Time
	Body   string
}

type Generator interface {
	Transcript(t Transcript) ([]byte, error)
}

// GoPDF renders transcripts with gofpdf. With no font path it falls back to
// the core Helvetica font, which cannot show non-Latin text.
type GoPDF struct {
	fontPath string
}

func New(fontPath string) *GoPDF {
	return &GoPDF{fontPath: strings.TrimSpace(fontPath)}
}

const fontFamily = "Transcript"

func (g *GoPDF) Transcript(t Transcript) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(t.Title, true)
	doc.SetAutoPageBreak(true, 15)

	family := "Helvetica"
	tr := doc.UnicodeTranslatorFromDescriptor("")
	if g.fontPath != "" {
		doc.AddUTF8Font(fontFamily, "", g.fontPath)
		doc.AddUTF8Font(fontFamily, "B", g.fontPath)
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font %s: %w", g.fontPath, err)
		}
		family = fontFamily
		tr = func(s string) string { return s }
	}
	doc.AddPage()

	doc.SetFont(family, "B", 15)
	doc.Cell(0, 10, tr(t.Title))
	doc.Ln(10)

	doc.SetFont(family, "", 9)
	doc.SetTextColor(90, 90, 90)
	for _, line := range t.Meta {
		doc.Cell(0, 5, tr(line))
		doc.Ln(5)
	}
	doc.SetTextColor(0, 0, 0)
	doc.Ln(3)

	for _, e := range t.Entries {
		doc.SetFont(family, "B", 10)
		header := e.Author
		if !e.At.IsZero() {
			header += "  ·  " + e.At.UTC().Format("2006-01-02 15:04")
		}
		doc.Cell(0, 6, tr(header))
		doc.Ln(6)
		doc.SetFont(family, "", 10)
		doc.MultiCell(0, 5, tr(e.Body), "", "L", false)
		doc.Ln(3)
	}

	generated := t.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	doc.SetFont(family, "", 8)
	doc.SetTextColor(120, 120, 120)
	doc.Cell(0, 5, tr("Generated "+generated.UTC().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render transcript pdf: %w", err)
	}
	return buf.Bytes(), nil
}
