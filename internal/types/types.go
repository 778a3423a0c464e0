package types

// Format is the declared document format of an upload
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
	FormatTXT  Format = "txt"
)

// Document is a raw upload together with its declared format
type Document struct {
	Name   string
	Format Format
	Data   []byte
}

// ContactInfo holds the first match of each contact field, verbatim from the text
type ContactInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Count returns the number of non-empty contact fields
func (c ContactInfo) Count() int {
	n := 0
	for _, v := range []string{c.Email, c.Phone, c.LinkedIn, c.Website} {
		if v != "" {
			n++
		}
	}
	return n
}

// Section is a canonical resume section name
type Section string

const (
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
	SectionReferences     Section = "references"
)

// IdealSectionOrder is the total order sections are scored against
var IdealSectionOrder = []Section{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionReferences,
}

// SectionSet describes the detected document structure
type SectionSet struct {
	Sections     []Section `json:"sections"`
	OrderScore   int       `json:"orderScore"`
	FormatIssues []string  `json:"formatIssues"`
	WordCount    int       `json:"wordCount"`
}

// Has reports whether s was detected
func (s SectionSet) Has(section Section) bool {
	for _, found := range s.Sections {
		if found == section {
			return true
		}
	}
	return false
}

// SkillCategory is one of the fixed vocabulary categories
type SkillCategory string

const (
	CategoryTechnical      SkillCategory = "technical"
	CategoryTools          SkillCategory = "tools"
	CategorySoftSkills     SkillCategory = "soft_skills"
	CategoryCertifications SkillCategory = "certifications"
)

// SkillCategories lists every category in serialization order
var SkillCategories = []SkillCategory{
	CategoryTechnical,
	CategoryTools,
	CategorySoftSkills,
	CategoryCertifications,
}

// SkillMatches holds matched display strings per category.
// Struct fields instead of a map keep JSON output ordered.
type SkillMatches struct {
	Technical      []string `json:"technical"`
	Tools          []string `json:"tools"`
	SoftSkills     []string `json:"soft_skills"`
	Certifications []string `json:"certifications"`
}

// Get returns the matches of one category
func (m *SkillMatches) Get(c SkillCategory) []string {
	switch c {
	case CategoryTechnical:
		return m.Technical
	case CategoryTools:
		return m.Tools
	case CategorySoftSkills:
		return m.SoftSkills
	case CategoryCertifications:
		return m.Certifications
	}
	return nil
}

// Add appends a display string to one category
func (m *SkillMatches) Add(c SkillCategory, display string) {
	switch c {
	case CategoryTechnical:
		m.Technical = append(m.Technical, display)
	case CategoryTools:
		m.Tools = append(m.Tools, display)
	case CategorySoftSkills:
		m.SoftSkills = append(m.SoftSkills, display)
	case CategoryCertifications:
		m.Certifications = append(m.Certifications, display)
	}
}

// Total returns the number of matches across all categories
func (m *SkillMatches) Total() int {
	return len(m.Technical) + len(m.Tools) + len(m.SoftSkills) + len(m.Certifications)
}

// DateRange is one employment period found in the text
type DateRange struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Source  string `json:"source"`
	Current bool   `json:"current,omitempty"`
}

// Gap is an interval between two employment periods longer than the threshold
type Gap struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Days   int    `json:"days"`
	Months int    `json:"months"`
}

// ExperienceProfile summarizes the work-history facet
type ExperienceProfile struct {
	DateRanges       []DateRange `json:"dateRanges"`
	Gaps             []Gap       `json:"gaps"`
	Organizations    []string    `json:"organizations"`
	ActionVerbs      []string    `json:"actionVerbs"`
	Achievements     []string    `json:"achievements"`
	VerbVarietyScore int         `json:"verbVarietyScore"`
}

// GrammarIssue is one finding reported by the grammar service
type GrammarIssue struct {
	Message      string   `json:"message"`
	Context      string   `json:"context"`
	Replacements []string `json:"replacements"`
}

// Highlights are informational extracts that do not affect the score
type Highlights struct {
	EducationEntries     []string `json:"educationEntries"`
	ExperienceStatements []string `json:"experienceStatements"`
	JobTitles            []string `json:"jobTitles"`
}

// SubScores are the normalized inputs of the composite score
type SubScores struct {
	Contact    int `json:"contact"`
	Structure  int `json:"structure"`
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Grammar    int `json:"grammar"`
}

// AnalysisResult is the complete assessment of one resume
type AnalysisResult struct {
	Contact         ContactInfo       `json:"contact"`
	Structure       SectionSet        `json:"structure"`
	Skills          SkillMatches      `json:"skills"`
	Experience      ExperienceProfile `json:"experience"`
	Grammar         []GrammarIssue    `json:"grammar"`
	Highlights      Highlights        `json:"highlights"`
	SubScores       SubScores         `json:"subScores"`
	Score           int               `json:"score"`
	Recommendations []string          `json:"recommendations"`
	Warnings        []string          `json:"warnings,omitempty"`
}
