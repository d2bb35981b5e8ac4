package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"

	"github.com/courseflow/backend/core/ingest"
)

// MinPDFText is the least amount of text a PDF must yield. Scanned documents usually give less.
const MinPDFText = 50

var ErrNoText = errors.New("document contains no extractable text")

// Extractor reads PDFs through their text layer and any other file as plain text.
type Extractor struct{}

var _ ingest.TextExtractor = Extractor{}

func (Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "reading document")
	}
	if !utf8.Valid(b) {
		return "", errors.New("document is not valid UTF-8 text")
	}
	return string(b), nil
}

func readPDF(path string) (text string, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening PDF")
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "reading PDF text")
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", errors.Wrap(err, "reading PDF text")
	}

	text = strings.TrimSpace(buf.String())
	if utf8.RuneCountInString(text) < MinPDFText {
		return "", ErrNoText
	}
	return text, nil
}
