package formatters

import (
	"fmt"
	"strings"

	"resumelens/internal/types"
)

// AnalysisTextFormatter renders an analysis as plain text
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var out strings.Builder

	out.WriteString("=== RESUME SCORE ===\n")
	fmt.Fprintf(&out, "Score: %d/100\n\n", result.Score)
	writeSubScoresText(&out, result.SubScores)

	out.WriteString("=== CONTACT ===\n")
	writeField(&out, "Email", result.Contact.Email)
	writeField(&out, "Phone", result.Contact.Phone)
	writeField(&out, "LinkedIn", result.Contact.LinkedIn)
	writeField(&out, "Website", result.Contact.Website)
	out.WriteString("\n")

	out.WriteString("=== STRUCTURE ===\n")
	fmt.Fprintf(&out, "Sections: %s\n", joinSections(result.Structure.Sections))
	fmt.Fprintf(&out, "Order score: %d/100\n", result.Structure.OrderScore)
	fmt.Fprintf(&out, "Word count: %d\n", result.Structure.WordCount)
	writeList(&out, "Format issues", result.Structure.FormatIssues)
	out.WriteString("\n")

	out.WriteString("=== SKILLS ===\n")
	for _, category := range types.SkillCategories {
		writeList(&out, categoryLabel(category), result.Skills.Get(category))
	}
	out.WriteString("\n")

	out.WriteString("=== EXPERIENCE ===\n")
	for _, r := range result.Experience.DateRanges {
		fmt.Fprintf(&out, "- %s to %s (%s)\n", r.Start, r.End, r.Source)
	}
	for _, g := range result.Experience.Gaps {
		fmt.Fprintf(&out, "Gap: %s to %s, %d days (%d months)\n", g.Start, g.End, g.Days, g.Months)
	}
	writeList(&out, "Organizations", result.Experience.Organizations)
	writeList(&out, "Action verbs", result.Experience.ActionVerbs)
	writeList(&out, "Achievements", result.Experience.Achievements)
	fmt.Fprintf(&out, "Verb variety: %d/100\n\n", result.Experience.VerbVarietyScore)

	out.WriteString("=== GRAMMAR ===\n")
	if len(result.Grammar) == 0 {
		out.WriteString("No issues found\n")
	}
	for _, issue := range result.Grammar {
		fmt.Fprintf(&out, "- %s (%q)", issue.Message, issue.Context)
		if len(issue.Replacements) > 0 {
			fmt.Fprintf(&out, " -> %s", strings.Join(issue.Replacements, ", "))
		}
		out.WriteString("\n")
	}
	out.WriteString("\n")

	out.WriteString("=== HIGHLIGHTS ===\n")
	writeList(&out, "Job titles", result.Highlights.JobTitles)
	writeList(&out, "Education", result.Highlights.EducationEntries)
	writeList(&out, "Experience", result.Highlights.ExperienceStatements)
	out.WriteString("\n")

	out.WriteString("=== RECOMMENDATIONS ===\n")
	for i, rec := range result.Recommendations {
		fmt.Fprintf(&out, "%d. %s\n", i+1, rec)
	}

	if len(result.Warnings) > 0 {
		out.WriteString("\n=== WARNINGS ===\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&out, "- %s\n", w)
		}
	}

	return out.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string {
	return typeAnalysisResult
}

// AnalysisMarkdownFormatter renders an analysis as a markdown report
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var out strings.Builder

	out.WriteString("# Resume Analysis\n\n")
	fmt.Fprintf(&out, "**Score:** %d/100\n\n", result.Score)

	out.WriteString("| Component | Score |\n|---|---|\n")
	fmt.Fprintf(&out, "| Contact | %d |\n", result.SubScores.Contact)
	fmt.Fprintf(&out, "| Structure | %d |\n", result.SubScores.Structure)
	fmt.Fprintf(&out, "| Skills | %d |\n", result.SubScores.Skills)
	fmt.Fprintf(&out, "| Experience | %d |\n", result.SubScores.Experience)
	fmt.Fprintf(&out, "| Grammar | %d |\n\n", result.SubScores.Grammar)

	out.WriteString("## Recommendations\n\n")
	writeBullets(&out, result.Recommendations)

	out.WriteString("## Contact\n\n")
	writeBullets(&out, nonEmpty(
		labelled("Email", result.Contact.Email),
		labelled("Phone", result.Contact.Phone),
		labelled("LinkedIn", result.Contact.LinkedIn),
		labelled("Website", result.Contact.Website),
	))

	out.WriteString("## Structure\n\n")
	fmt.Fprintf(&out, "- **Sections:** %s\n", joinSections(result.Structure.Sections))
	fmt.Fprintf(&out, "- **Order score:** %d/100\n", result.Structure.OrderScore)
	fmt.Fprintf(&out, "- **Word count:** %d\n\n", result.Structure.WordCount)
	if len(result.Structure.FormatIssues) > 0 {
		out.WriteString("### Format issues\n\n")
		writeBullets(&out, result.Structure.FormatIssues)
	}

	out.WriteString("## Skills\n\n")
	for _, category := range types.SkillCategories {
		if matches := result.Skills.Get(category); len(matches) > 0 {
			fmt.Fprintf(&out, "- **%s:** %s\n", categoryLabel(category), strings.Join(matches, ", "))
		}
	}
	out.WriteString("\n")

	out.WriteString("## Experience\n\n")
	for _, r := range result.Experience.DateRanges {
		fmt.Fprintf(&out, "- %s to %s\n", r.Start, r.End)
	}
	if len(result.Experience.Gaps) > 0 {
		out.WriteString("\n### Employment gaps\n\n")
		for _, g := range result.Experience.Gaps {
			fmt.Fprintf(&out, "- %s to %s (%d months)\n", g.Start, g.End, g.Months)
		}
	}
	if len(result.Experience.Achievements) > 0 {
		out.WriteString("\n### Achievements\n\n")
		writeBullets(&out, result.Experience.Achievements)
	} else {
		out.WriteString("\n")
	}

	if len(result.Grammar) > 0 {
		out.WriteString("## Grammar\n\n")
		for _, issue := range result.Grammar {
			fmt.Fprintf(&out, "- %s: `%s`\n", issue.Message, issue.Context)
		}
		out.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		out.WriteString("## Warnings\n\n")
		writeBullets(&out, result.Warnings)
	}

	return out.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string {
	return typeAnalysisResult
}

func writeSubScoresText(out *strings.Builder, s types.SubScores) {
	fmt.Fprintf(out, "Contact:    %3d\n", s.Contact)
	fmt.Fprintf(out, "Structure:  %3d\n", s.Structure)
	fmt.Fprintf(out, "Skills:     %3d\n", s.Skills)
	fmt.Fprintf(out, "Experience: %3d\n", s.Experience)
	fmt.Fprintf(out, "Grammar:    %3d\n\n", s.Grammar)
}

func writeField(out *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(out, "%s: %s\n", label, value)
}

func writeList(out *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(out, "%s: none\n", label)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, strings.Join(items, ", "))
}

func writeBullets(out *strings.Builder, items []string) {
	if len(items) == 0 {
		out.WriteString("_None_\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "- %s\n", item)
	}
	out.WriteString("\n")
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("**%s:** %s", label, value)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinSections(sections []types.Section) string {
	if len(sections) == 0 {
		return "none detected"
	}
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func categoryLabel(c types.SkillCategory) string {
	switch c {
	case types.CategoryTechnical:
		return "Technical"
	case types.CategoryTools:
		return "Tools"
	case types.CategorySoftSkills:
		return "Soft skills"
	case types.CategoryCertifications:
		return "Certifications"
	}
	return string(c)
}
