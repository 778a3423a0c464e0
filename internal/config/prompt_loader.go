package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const maxPromptFileSize = 64 * 1024

// loadGrammarPromptFile replaces the Gemini system prompt with the content of
// grammar.gemini.systemPromptFile when one is configured.
func (c *Config) loadGrammarPromptFile() error {
	path := c.Grammar.Gemini.SystemPromptFile
	if path == "" {
		return nil
	}

	content, err := loadPromptFromFile(path)
	if err != nil {
		return err
	}

	c.Grammar.Gemini.SystemPrompt = content
	log.Printf("[CONFIG] Loaded grammar system prompt from %s (%d bytes)", path, len(content))
	return nil
}

func loadPromptFromFile(path string) (string, error) {
	clean := filepath.Clean(path)

	info, err := os.Stat(clean)
	if err != nil {
		return "", fmt.Errorf("prompt file %s is not accessible: %w", clean, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("prompt file %s is a directory", clean)
	}
	if info.Size() > maxPromptFileSize {
		return "", fmt.Errorf("prompt file %s exceeds %d bytes", clean, maxPromptFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", clean, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", clean)
	}
	return content, nil
}
