// Package extract turns source documents into plain text, either by direct
// PDF text extraction or by rendering pages for the recognition service.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"golang.org/x/image/draw"
)

// maxPageWidth bounds the rasterized page size sent to the recognition
// service; scanned pages at 200 DPI can exceed it.
const maxPageWidth = 2000

// Recognizer is the external OCR collaborator.
type Recognizer interface {
	Recognize(ctx context.Context, pngImage []byte) ([]string, error)
}

// Text extracts plain text directly from a PDF. Returns empty string and nil
// error when the PDF has no extractable text; callers treat that as a signal
// for the recognition path.
func Text(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	return string(out), nil
}

// TextOCR renders each PDF page to an image and feeds it to the recognizer,
// concatenating recognized lines page by page.
func TextOCR(ctx context.Context, document []byte, recognizer Recognizer, dpi int) (string, error) {
	if dpi <= 0 {
		dpi = 200
	}

	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return "", fmt.Errorf("open pdf for rasterization failed: %w", err)
	}
	defer doc.Close()

	var lines []string
	for page := 0; page < doc.NumPage(); page++ {
		img, err := doc.ImageDPI(page, float64(dpi))
		if err != nil {
			return "", fmt.Errorf("render page %d failed: %w", page+1, err)
		}

		encoded, err := encodePage(img)
		if err != nil {
			return "", fmt.Errorf("encode page %d failed: %w", page+1, err)
		}

		pageLines, err := recognizer.Recognize(ctx, encoded)
		if err != nil {
			return "", fmt.Errorf("recognize page %d failed: %w", page+1, err)
		}
		lines = append(lines, pageLines...)
	}
	return strings.Join(lines, "\n"), nil
}

// encodePage downscales oversized pages and encodes to PNG.
func encodePage(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dx() > maxPageWidth {
		scale := float64(maxPageWidth) / float64(bounds.Dx())
		h := int(float64(bounds.Dy()) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, maxPageWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
