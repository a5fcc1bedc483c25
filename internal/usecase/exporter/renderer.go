// Package exporter renders a processed meeting into downloadable artifacts.
package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/gomutex/godocx"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
)

const (
	notAvailable = "N/A"
	dateLayout   = "2006-01-02"
)

// Document is everything an export may draw from.
// Summary and Transcript are nil when the meeting has none yet.
type Document struct {
	Meeting    *entities.Meeting
	Transcript *entities.Transcript
	Summary    *entities.Summary
}

// Artifact is a rendered export ready for upload
type Artifact struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Renderer renders meetings in the supported export formats
type Renderer struct {
	tempDir string
}

// NewRenderer creates a renderer. Scratch files go to the OS temp directory.
func NewRenderer() *Renderer {
	return &Renderer{tempDir: os.TempDir()}
}

// Render produces the artifact for format
func (r *Renderer) Render(format entities.ExportFormat, doc Document) (*Artifact, error) {
	if doc.Meeting == nil {
		return nil, fmt.Errorf("%w: meeting", ucerr.ErrNotFound)
	}

	switch format {
	case entities.ExportFormatJSON:
		return r.renderJSON(doc)
	case entities.ExportFormatTXT:
		return r.renderTXT(doc), nil
	case entities.ExportFormatPDF:
		return r.renderPDF(doc)
	case entities.ExportFormatDOCX:
		return r.renderDOCX(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ucerr.ErrUnsupportedFormat, format)
	}
}

func (r *Renderer) renderJSON(doc Document) (*Artifact, error) {
	data, err := json.MarshalIndent(struct {
		Meeting    *entities.Meeting    `json:"meeting"`
		Summary    *entities.Summary    `json:"summary"`
		Transcript *entities.Transcript `json:"transcript"`
	}{doc.Meeting, doc.Summary, doc.Transcript}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return &Artifact{Data: data, ContentType: "application/json", Extension: "json"}, nil
}

func (r *Renderer) renderTXT(doc Document) *Artifact {
	text := fmt.Sprintf("Title: %s\nDate: %s\n\nEXECUTIVE SUMMARY\n%s\n\nTRANSCRIPT\n%s",
		doc.Meeting.Title, meetingDate(doc), executiveSummary(doc), transcriptText(doc))
	return &Artifact{Data: []byte(text), ContentType: "text/plain", Extension: "txt"}
}

func (r *Renderer) renderPDF(doc Document) (*Artifact, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(10, 20, tr(doc.Meeting.Title))

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(10, 30, "Date: "+meetingDate(doc))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(10, 50, "Executive Summary:")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(10, 55)
	pdf.MultiCell(180, 5, tr(executiveSummary(doc)), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return &Artifact{Data: buf.Bytes(), ContentType: "application/pdf", Extension: "pdf"}, nil
}

func (r *Renderer) renderDOCX(doc Document) (*Artifact, error) {
	d, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to create docx: %w", err)
	}

	if _, err := d.AddHeading(doc.Meeting.Title, 1); err != nil {
		return nil, fmt.Errorf("failed to add docx title: %w", err)
	}
	d.AddParagraph("").AddText("Date: " + meetingDate(doc)).Bold(true)
	if _, err := d.AddHeading("Executive Summary", 2); err != nil {
		return nil, fmt.Errorf("failed to add docx heading: %w", err)
	}
	d.AddParagraph(executiveSummary(doc))

	// godocx only saves to a path
	tmp, err := os.CreateTemp(r.tempDir, "export-*.docx")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := d.SaveTo(path); err != nil {
		return nil, fmt.Errorf("failed to save docx: %w", err)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read docx: %w", err)
	}

	return &Artifact{
		Data:        data,
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Extension:   "docx",
	}, nil
}

func meetingDate(doc Document) string {
	if doc.Meeting.CreatedAt.IsZero() {
		return notAvailable
	}
	return doc.Meeting.CreatedAt.Format(dateLayout)
}

func executiveSummary(doc Document) string {
	if doc.Summary == nil || doc.Summary.ExecSummary == "" {
		return notAvailable
	}
	return doc.Summary.ExecSummary
}

func transcriptText(doc Document) string {
	if !doc.Transcript.HasText() {
		return notAvailable
	}
	return doc.Transcript.TextLong
}
