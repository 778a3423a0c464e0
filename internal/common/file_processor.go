package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/storage"
	"resumelens/internal/types"
	"resumelens/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &FileProcessor{logger: logger}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
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

// ReadDocument validates a local resume file and reads it with its format.
// formatOverride, when set, replaces the extension-derived format.
func (fp *FileProcessor) ReadDocument(filename, formatOverride string) (types.Document, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return types.Document{}, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	format, err := documentFormat(filename, formatOverride)
	if err != nil {
		return types.Document{}, err
	}

	data, err := fp.ReadFile(filename)
	if err != nil {
		return types.Document{}, err
	}

	fp.logger.Debug("Read resume file",
		"filename", filename,
		"format", format,
		"size", utils.FormatFileSize(int64(len(data))))
	return types.Document{Name: filepath.Base(filename), Format: format, Data: data}, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}

// Fetcher downloads a stored object
type Fetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// DocumentSource loads resumes from local paths or s3:// URIs
type DocumentSource struct {
	files *FileProcessor
	store Fetcher
}

// NewDocumentSource creates a DocumentSource. store may be nil when only
// local files are read.
func NewDocumentSource(files *FileProcessor, store Fetcher) *DocumentSource {
	return &DocumentSource{files: files, store: store}
}

// Load reads the document named by input
func (ds *DocumentSource) Load(ctx context.Context, input, formatOverride string) (types.Document, error) {
	if !storage.IsS3URI(input) {
		return ds.files.ReadDocument(input, formatOverride)
	}

	bucket, key, err := storage.ParseS3URI(input)
	if err != nil {
		return types.Document{}, err
	}
	if ds.store == nil {
		return types.Document{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"document store is not configured", nil).WithContext("input", input)
	}

	format, err := documentFormat(key, formatOverride)
	if err != nil {
		return types.Document{}, err
	}

	data, err := ds.store.Fetch(ctx, bucket, key)
	if err != nil {
		return types.Document{}, err
	}
	return types.Document{Name: path.Base(key), Format: format, Data: data}, nil
}

func documentFormat(name, override string) (types.Format, error) {
	if override != "" {
		return extract.ParseFormat(override)
	}
	return extract.FormatFromFilename(name)
}
