package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(file, []byte("Jane Doe"), 0600))
	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0600))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"readable file", file, ""},
		{"empty name", "", "filename cannot be empty"},
		{"missing", filepath.Join(dir, "nope.pdf"), "file does not exist"},
		{"directory", dir, "path is a directory"},
		{"empty file", empty, "file is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateOutputFile(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, ValidateOutputFile(""))
	assert.NoError(t, ValidateOutputFile("report.json"))

	nested := filepath.Join(dir, "reports", "2024", "report.md")
	require.NoError(t, ValidateOutputFile(nested))
	assert.DirExists(t, filepath.Dir(nested))

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	assert.Error(t, ValidateOutputFile(filepath.Join(blocker, "report.json")))
}

func TestHasAllowedExtension(t *testing.T) {
	allowed := []string{"pdf", "docx", ".doc"}

	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"lowercase", "cv.pdf", true},
		{"uppercase", "CV.DOCX", true},
		{"dotted allow entry", "cv.doc", true},
		{"not allowed", "cv.txt", false},
		{"no extension", "resume", false},
		{"trailing dot", "resume.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAllowedExtension(tt.filename, allowed))
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "16.0 MB", FormatFileSize(16*1024*1024))
}
