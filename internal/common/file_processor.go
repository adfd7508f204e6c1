package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/extract"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	extractor *extract.Extractor
	logger    *errors.Logger
}

// NewFileProcessor creates a new file processor instance. A nil extractor
// uses the default limits.
func NewFileProcessor(extractor *extract.Extractor, logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	if extractor == nil {
		extractor = extract.NewExtractor(0, 0, logger)
	}
	return &FileProcessor{extractor: extractor, logger: logger}
}

// ReadFile reads raw content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ExtractFiles extracts and cleans the text of each resume or job file.
// PDF and DOCX are converted; text files are read as is.
func (fp *FileProcessor) ExtractFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		content, err := fp.extractor.ExtractFile(filename)
		if err != nil {
			return nil, err // Error already wrapped by the extractor
		}
		if content == "" {
			fp.logger.Warn("File produced no text", "filename", filename)
		}
		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
