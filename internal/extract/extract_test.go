package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/commonModels"
)

func TestDetectDocType(t *testing.T) {
	cases := map[string]commonModels.DocType{
		"report.pdf":     commonModels.PDF,
		"REPORT.PDF":     commonModels.PDF,
		"notes.txt":      commonModels.TXT,
		"contract.docx":  commonModels.DOCX,
		"image.png":      commonModels.ERR,
		"archive.tar.gz": commonModels.ERR,
		"noextension":    commonModels.ERR,
	}
	for path, want := range cases {
		if got := DetectDocType(path); got != want {
			t.Errorf("DetectDocType(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestTextFromPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "First paragraph.\n\nSecond paragraph."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	text, err := Text(path)
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if text != content {
		t.Errorf("expected %q, got %q", content, text)
	}
}

func TestTextRejectsUnsupportedExtension(t *testing.T) {
	_, err := Text("slides.pptx")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestTextMissingFile(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "gone.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
