package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillIndexMatch(t *testing.T) {
	index, err := NewSkillIndex(DefaultVocabulary(), DisplayOriginal)
	require.NoError(t, err)

	got := index.Match("Python, AWS, Docker and some python scripting.\nUsed Git and JIRA daily. Strong Leadership.")

	assert.Equal(t, []string{"Python", "AWS", "Docker"}, got.Technical)
	assert.Equal(t, []string{"Git", "JIRA"}, got.Tools)
	assert.Equal(t, []string{"Leadership"}, got.SoftSkills)
	assert.Empty(t, got.Certifications)
	assert.Equal(t, 6, got.Total())
}

func TestSkillIndexCaseInsensitiveDedup(t *testing.T) {
	index, err := NewSkillIndex(DefaultVocabulary(), DisplayOriginal)
	require.NoError(t, err)

	got := index.Match("Python python PYTHON")

	assert.Equal(t, []string{"Python"}, got.Technical)
}

func TestSkillIndexTitleCase(t *testing.T) {
	index, err := NewSkillIndex(DefaultVocabulary(), DisplayTitle)
	require.NoError(t, err)

	got := index.Match("python, AWS, docker")

	assert.Equal(t, []string{"Python", "Aws", "Docker"}, got.Technical)
}

func TestSkillIndexLongestPhraseWins(t *testing.T) {
	vocab := Vocabulary{
		{types.CategoryTechnical, []string{"machine learning", "java"}},
		{types.CategoryTools, nil},
		{types.CategorySoftSkills, []string{"learning"}},
		{types.CategoryCertifications, nil},
	}
	index, err := NewSkillIndex(vocab, DisplayOriginal)
	require.NoError(t, err)

	got := index.Match("Machine Learning with JavaScript")

	assert.Equal(t, []string{"Machine Learning"}, got.Technical)
	assert.Empty(t, got.SoftSkills)
}

func TestSkillIndexShorterPhraseSurvivesPartialWord(t *testing.T) {
	index, err := NewSkillIndex(DefaultVocabulary(), DisplayOriginal)
	require.NoError(t, err)

	tests := []struct {
		name      string
		text      string
		technical []string
	}{
		{
			name:      "certification prefix then more skills",
			text:      "AWS Certified Developers; Python; AWS",
			technical: []string{"AWS", "Python"},
		},
		{
			name:      "certification prefix alone",
			text:      "AWS certified developers",
			technical: []string{"AWS"},
		},
		{
			name:      "framework prefix keeps first language",
			text:      "Machine learnings with Ruby on Railsy, then Python and Ruby",
			technical: []string{"Ruby", "Python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := index.Match(tt.text)
			assert.Equal(t, tt.technical, got.Technical)
			assert.Empty(t, got.Certifications)
		})
	}
}

func TestSkillIndexPhraseAcrossLines(t *testing.T) {
	index, err := NewSkillIndex(DefaultVocabulary(), DisplayOriginal)
	require.NoError(t, err)

	got := index.Match("expert in machine\nlearning")

	assert.Equal(t, []string{"machine learning"}, got.Technical)
}

func TestSkillIndexDuplicatePhraseKeepsFirstCategory(t *testing.T) {
	vocab := Vocabulary{
		{types.CategoryTechnical, []string{"Kubernetes"}},
		{types.CategoryTools, []string{"kubernetes"}},
	}
	index, err := NewSkillIndex(vocab, DisplayOriginal)
	require.NoError(t, err)
	assert.Equal(t, 1, index.Size())

	got := index.Match("kubernetes")
	assert.Equal(t, []string{"kubernetes"}, got.Technical)
	assert.Empty(t, got.Tools)
}

func TestNewSkillIndexEmpty(t *testing.T) {
	_, err := NewSkillIndex(Vocabulary{}, DisplayOriginal)
	assert.Error(t, err)
}

func TestParseVocabulary(t *testing.T) {
	t.Run("known categories", func(t *testing.T) {
		vocab, err := ParseVocabulary([]byte("technical:\n  - go\n  - rust\ntools:\n  - make\n"))
		require.NoError(t, err)
		require.Len(t, vocab, len(types.SkillCategories))

		assert.Equal(t, types.CategoryTechnical, vocab[0].Category)
		assert.Equal(t, []string{"go", "rust"}, vocab[0].Phrases)
		assert.Equal(t, []string{"make"}, vocab[1].Phrases)
		assert.Empty(t, vocab[2].Phrases)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := ParseVocabulary([]byte("languages:\n  - english\n"))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseVocabulary([]byte("technical: [go"))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	})
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("certifications:\n  - CKA\n"), 0o600))

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CKA"}, vocab[3].Phrases)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotReadable))
}
