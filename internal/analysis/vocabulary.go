package analysis

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"resumelens/internal/errors"
	"resumelens/internal/types"

	"gopkg.in/yaml.v3"
)

// CategoryPhrases is the ordered phrase list of one skill category.
type CategoryPhrases struct {
	Category types.SkillCategory
	Phrases  []string
}

// Vocabulary is the skill vocabulary, one entry per category in
// types.SkillCategories order.
type Vocabulary []CategoryPhrases

// DefaultVocabulary returns the built-in skill vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		{types.CategoryTechnical, []string{
			// programming
			"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "php", "sql", "r", "swift",
			"kotlin", "go", "golang", "rust", "scala",
			// web development
			"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask",
			"ruby on rails", "asp.net", "graphql", "rest api",
			// data science
			"machine learning", "deep learning", "data analysis", "statistics", "pandas", "numpy",
			"scikit-learn", "tensorflow", "pytorch", "spark", "natural language processing",
			// cloud
			"aws", "azure", "google cloud", "gcp", "docker", "kubernetes", "serverless", "terraform",
			// databases
			"mysql", "postgresql", "mongodb", "oracle", "redis", "elasticsearch", "kafka",
		}},
		{types.CategoryTools, []string{
			"git", "github", "gitlab", "jenkins", "jira", "confluence", "slack", "trello", "agile", "scrum",
			"kanban", "figma", "postman", "tableau", "power bi", "excel",
		}},
		{types.CategorySoftSkills, []string{
			"leadership", "communication", "teamwork", "problem solving", "time management",
			"critical thinking", "adaptability", "collaboration", "mentoring", "project management",
		}},
		{types.CategoryCertifications, []string{
			"aws certified solutions architect", "aws certified developer", "aws certified cloud practitioner",
			"certified kubernetes administrator", "cka", "ckad", "pmp", "cissp", "ccna", "itil",
			"comptia security+", "certified scrum master", "professional scrum master",
			"google cloud professional", "azure fundamentals",
		}},
	}
}

// LoadVocabulary reads a YAML vocabulary file mapping category names to
// phrase lists. Categories missing from the file keep no phrases.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read vocabulary file", err).
			WithContext("file_path", path)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary parses the YAML vocabulary format.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed, "invalid vocabulary YAML", err)
	}

	for name := range raw {
		if !slices.Contains(types.SkillCategories, types.SkillCategory(name)) {
			return nil, errors.NewValidationError(errors.ErrCodeValidationFailed,
				fmt.Sprintf("unknown skill category '%s'", name), nil).
				WithContext("allowed", types.SkillCategories)
		}
	}

	vocab := make(Vocabulary, 0, len(types.SkillCategories))
	for _, category := range types.SkillCategories {
		vocab = append(vocab, CategoryPhrases{Category: category, Phrases: raw[string(category)]})
	}
	return vocab, nil
}

// normalizedEntries flattens the vocabulary into unique lower-case phrases.
// A phrase listed under two categories stays with the first.
func (v Vocabulary) normalizedEntries() []skillEntry {
	seen := map[string]bool{}
	var entries []skillEntry
	for _, cp := range v {
		for _, phrase := range cp.Phrases {
			p := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			entries = append(entries, skillEntry{phrase: p, category: cp.Category})
		}
	}
	return entries
}
