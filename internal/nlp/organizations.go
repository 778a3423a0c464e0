package nlp

import (
	"strings"
	"unicode"
)

var orgSuffixes = map[string]bool{
	"inc": true, "inc.": true, "llc": true, "ltd": true, "ltd.": true, "corp": true, "corp.": true,
	"corporation": true, "company": true, "co": true, "co.": true, "group": true, "gmbh": true,
	"plc": true, "ag": true, "university": true, "college": true, "institute": true, "school": true,
	"academy": true, "technologies": true, "technology": true, "labs": true, "bank": true,
	"solutions": true, "systems": true, "consulting": true, "partners": true, "agency": true,
	"foundation": true, "hospital": true,
}

var orgLeadIns = map[string]bool{"at": true, "@": true, "with": true, "for": true, "joined": true}

// FindOrganizations returns organization names from a tagged token run.
// A name is a maximal run of proper nouns, with connectors such as "of" and
// "&" allowed inside. It must contain an organization word like "Inc" or
// "University", or directly follow a lead-in such as "at" or "joined".
func FindOrganizations(tokens []Token) []string {
	var out []string
	for i := 0; i < len(tokens); {
		if !isProperNoun(tokens[i]) {
			i++
			continue
		}

		j := i + 1
		for j < len(tokens) {
			if isProperNoun(tokens[j]) || isOrgSuffix(tokens[j]) {
				j++
				continue
			}
			if isConnector(tokens[j]) && j+1 < len(tokens) && isProperNoun(tokens[j+1]) {
				j += 2
				continue
			}
			break
		}

		run := tokens[i:j]
		ledIn := i > 0 && orgLeadIns[strings.ToLower(tokens[i-1].Text)]
		if (ledIn || hasOrgSuffix(run)) && !allUpper(run) {
			out = append(out, joinTokens(run))
		}
		i = j
	}
	return out
}

func isProperNoun(t Token) bool {
	if t.Tag != "NNP" && t.Tag != "NNPS" {
		return false
	}
	r := []rune(t.Text)
	return len(r) > 0 && (unicode.IsUpper(r[0]) || unicode.IsDigit(r[0]))
}

func isOrgSuffix(t Token) bool {
	return orgSuffixes[strings.ToLower(t.Text)] && len(t.Text) > 0 && unicode.IsUpper([]rune(t.Text)[0])
}

func isConnector(t Token) bool {
	switch strings.ToLower(t.Text) {
	case "of", "&", "and", "for":
		return true
	}
	return false
}

func hasOrgSuffix(run []Token) bool {
	for _, t := range run {
		if isOrgSuffix(t) {
			return true
		}
	}
	return false
}

// allUpper rejects shouted section headers such as "WORK EXPERIENCE".
func allUpper(run []Token) bool {
	letters := 0
	for _, t := range run {
		for _, r := range t.Text {
			if unicode.IsLetter(r) {
				letters++
				if !unicode.IsUpper(r) {
					return false
				}
			}
		}
	}
	return letters > 3
}

func joinTokens(run []Token) string {
	var sb strings.Builder
	for i, t := range run {
		if i > 0 && t.Text != "." && t.Text != "," {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}
