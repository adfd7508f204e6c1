// Package extract turns uploaded resume files into cleaned plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"resumalyzer/internal/errors"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format is a supported resume file format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

var textExtensions = []string{".txt", ".md", ".markdown", ".text"}

// DefaultMaxChars caps cleaned resume text
const DefaultMaxChars = 50000

// Extractor reads resume files and cleans the result
type Extractor struct {
	maxChars    int
	maxFileSize int64
	logger      *errors.Logger
}

// NewExtractor creates an extractor. Zero limits use the defaults; a zero
// maxFileSize means unlimited.
func NewExtractor(maxChars int, maxFileSize int64, logger *errors.Logger) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = errors.Discard()
	}
	return &Extractor{maxChars: maxChars, maxFileSize: maxFileSize, logger: logger}
}

// DetectFormat picks the format from the file extension
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf":
		return FormatPDF, nil
	case ext == ".docx":
		return FormatDOCX, nil
	case slices.Contains(textExtensions, ext):
		return FormatText, nil
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("Unsupported file type %q: use .pdf, .docx, .txt or .md", ext), nil)
	}
}

// ExtractFile validates and reads a file from disk
func (e *Extractor) ExtractFile(path string) (string, error) {
	if err := e.validateInputFile(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	return e.Extract(data, filepath.Base(path))
}

// Extract reads data in the format implied by filename and returns cleaned text
func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("File %s is %s, the limit is %s", filename,
				FormatFileSize(int64(len(data))), FormatFileSize(e.maxFileSize)), nil)
	}

	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	var raw string
	switch format {
	case FormatPDF:
		raw, err = PDF(data)
	case FormatDOCX:
		raw, err = DOCX(data)
	default:
		raw = string(data)
	}
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to extract text from %s", filename), err).
			WithContext("format", string(format))
	}

	text := Clean(raw, e.maxChars)
	if text == "" {
		return "", errors.NewValidationError(errors.ErrCodeMissingInput,
			fmt.Sprintf("No readable text found in %s", filename), nil)
	}

	e.logger.Debug("Extracted resume text",
		"filename", filename,
		"format", string(format),
		"raw_length", len(raw),
		"clean_length", len(text))
	return text, nil
}

// PDF concatenates the plain text of every page
func PDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

// DOCX returns the document body text, one paragraph per line
func DOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	content := doc.Editable().GetContent()
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return unescapeXML(content), nil
}

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

// Clean replaces newlines with spaces, drops everything outside printable
// ASCII and cuts the result to maxChars.
func Clean(s string, maxChars int) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			sb.WriteByte(' ')
		case c >= 0x20 && c <= 0x7E:
			sb.WriteByte(c)
		}
		if maxChars > 0 && sb.Len() >= maxChars {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

// ReadAll reads r and extracts it as filename, bounded by the file size limit
func (e *Extractor) ReadAll(r io.Reader, filename string) (string, error) {
	if e.maxFileSize > 0 {
		r = io.LimitReader(r, e.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read upload: %s", filename), err)
	}
	return e.Extract(data, filename)
}

// validateInputFile checks that path exists, is a regular file and is readable
func (e *Extractor) validateInputFile(path string) error {
	if path == "" {
		return errors.NewValidationError(errors.ErrCodeMissingInput, "filename cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot access file %s", path), err)
	}
	if info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Path is a directory, not a file: %s", path), nil)
	}
	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("File %s is %s, the limit is %s", path,
				FormatFileSize(info.Size()), FormatFileSize(e.maxFileSize)), nil)
	}
	return nil
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
