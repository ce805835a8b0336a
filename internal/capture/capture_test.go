// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capture

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeText_ComposesNFC(t *testing.T) {
	// "é" decomposed: 'e' + combining acute accent.
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	if got := NormalizeText(decomposed); got != composed {
		t.Errorf("NormalizeText(%q) = %q, want composed %q", decomposed, got, composed)
	}
}

func TestNormalizeText_Trims(t *testing.T) {
	if got := NormalizeText("  hello \n"); got != "hello" {
		t.Errorf("NormalizeText() = %q, want trimmed hello", got)
	}
}

func TestFromText(t *testing.T) {
	c := FromText("screen text")
	if c.IsImage() {
		t.Error("IsImage() = true, want false for text capture")
	}
	if c.Text != "screen text" {
		t.Errorf("Text = %q, want screen text", c.Text)
	}
}

func TestFromImageFile_EncodesAndTypes(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	path := filepath.Join(t.TempDir(), "shot.PNG")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := FromImageFile(path)
	if err != nil {
		t.Fatalf("FromImageFile() error = %v", err)
	}
	if !c.IsImage() {
		t.Fatal("IsImage() = false, want true")
	}
	if c.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png (case-insensitive ext)", c.MIMEType)
	}
	if c.ImageBase64 != base64.StdEncoding.EncodeToString(payload) {
		t.Error("ImageBase64 does not round-trip the file contents")
	}
}

func TestFromImageFile_RejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := FromImageFile(path); err == nil {
		t.Error("FromImageFile() = nil, want error for unsupported type")
	}
}

func TestFromFile_TextFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("some ocr text\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if c.IsImage() {
		t.Error("IsImage() = true, want text fallback")
	}
	if c.Text != "some ocr text" {
		t.Errorf("Text = %q, want normalized file contents", c.Text)
	}
	if c.Source != path {
		t.Errorf("Source = %q, want %q", c.Source, path)
	}
}
