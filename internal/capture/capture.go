// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package capture prepares screen context for a question.
//
// A capture is either an image file (sent base64-encoded for the backend's
// vision path) or raw text standing in for OCR output. Text goes through
// Unicode NFC normalization so visually identical strings compare and embed
// identically regardless of how the OS composed them.
package capture

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxImageBytes bounds the image payload. The backend rejects larger bodies;
// failing locally gives a better error.
const MaxImageBytes = 10 << 20 // 10 MiB

// imageMIME maps supported image extensions to their MIME types.
var imageMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Capture is prepared screen context ready to attach to a question.
type Capture struct {
	// Text is NFC-normalized OCR or raw text. Empty for image captures.
	Text string
	// ImageBase64 is the base64-encoded image payload. Empty for text captures.
	ImageBase64 string
	// MIMEType describes the image payload.
	MIMEType string
	// Source is the file the capture came from, empty for inline text.
	Source string
}

// IsImage reports whether the capture carries an image payload.
func (c *Capture) IsImage() bool { return c.ImageBase64 != "" }

// FromText builds a text capture. The text is NFC-normalized and trimmed.
func FromText(text string) *Capture {
	return &Capture{Text: NormalizeText(text)}
}

// FromImageFile reads and encodes an image file.
func FromImageFile(path string) (*Capture, error) {
	mime, ok := imageMIME[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported image type: %s", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > MaxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes (max %d)", info.Size(), MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return &Capture{
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MIMEType:    mime,
		Source:      path,
	}, nil
}

// FromFile builds a capture from any file: supported image types are encoded,
// everything else is read as text.
func FromFile(path string) (*Capture, error) {
	if _, ok := imageMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return FromImageFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	c := FromText(string(data))
	c.Source = path
	return c, nil
}

// NormalizeText applies Unicode NFC normalization and trims surrounding
// whitespace. OCR engines and clipboard paths disagree about composed vs
// decomposed accents; the backend must only ever see one form.
func NormalizeText(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}
