package exporter

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
)

func testDocument() Document {
	meetingID := uuid.New()
	return Document{
		Meeting: &entities.Meeting{
			ID:        meetingID,
			Title:     "Quarterly Planning",
			Status:    entities.MeetingStatusReady,
			CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		Transcript: &entities.Transcript{MeetingID: meetingID, TextLong: "Hello team. Ship it."},
		Summary:    &entities.Summary{MeetingID: meetingID, ExecSummary: "We ship on Friday."},
	}
}

func TestRenderTXT(t *testing.T) {
	art, err := NewRenderer().Render(entities.ExportFormatTXT, testDocument())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "Title: Quarterly Planning\nDate: 2026-03-14\n\nEXECUTIVE SUMMARY\nWe ship on Friday.\n\nTRANSCRIPT\nHello team. Ship it."
	if string(art.Data) != want {
		t.Fatalf("txt = %q", art.Data)
	}
	if art.ContentType != "text/plain" || art.Extension != "txt" {
		t.Errorf("unexpected artifact metadata: %s %s", art.ContentType, art.Extension)
	}
}

func TestRenderTXTMissingData(t *testing.T) {
	doc := testDocument()
	doc.Summary = nil
	doc.Transcript = nil

	art, err := NewRenderer().Render(entities.ExportFormatTXT, doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(art.Data), "EXECUTIVE SUMMARY\nN/A\n\nTRANSCRIPT\nN/A") {
		t.Fatalf("expected N/A placeholders, got %q", art.Data)
	}
}

func TestRenderJSON(t *testing.T) {
	art, err := NewRenderer().Render(entities.ExportFormatJSON, testDocument())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if art.ContentType != "application/json" || art.Extension != "json" {
		t.Errorf("unexpected artifact metadata: %s %s", art.ContentType, art.Extension)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(art.Data, &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"meeting", "summary", "transcript"} {
		if _, ok := out[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if !bytes.Contains(art.Data, []byte("\n  \"meeting\"")) {
		t.Error("expected indented output")
	}
}

func TestRenderPDF(t *testing.T) {
	doc := testDocument()
	doc.Meeting.Title = "Réunion trimestrielle"

	art, err := NewRenderer().Render(entities.ExportFormatPDF, doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(art.Data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
	if art.ContentType != "application/pdf" || art.Extension != "pdf" {
		t.Errorf("unexpected artifact metadata: %s %s", art.ContentType, art.Extension)
	}
}

func TestRenderDOCX(t *testing.T) {
	art, err := NewRenderer().Render(entities.ExportFormatDOCX, testDocument())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if art.Extension != "docx" {
		t.Errorf("Extension = %q", art.Extension)
	}

	zr, err := zip.NewReader(bytes.NewReader(art.Data), int64(len(art.Data)))
	if err != nil {
		t.Fatalf("docx is not a zip archive: %v", err)
	}
	var body string
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		body = string(b)
	}
	for _, want := range []string{"Quarterly Planning", "Date: 2026-03-14", "Executive Summary", "We ship on Friday."} {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
	for _, style := range []string{`w:val="Heading1"`, `w:val="Heading2"`} {
		if !strings.Contains(body, style) {
			t.Errorf("document.xml missing heading style %s", style)
		}
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := NewRenderer().Render(entities.ExportFormat("xlsx"), testDocument())
	if !errors.Is(err, ucerr.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
