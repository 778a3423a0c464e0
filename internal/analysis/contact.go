package analysis

import (
	"regexp"
	"strings"

	"resumelens/internal/types"
)

var (
	emailPattern         = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern         = regexp.MustCompile(`(?:\+?\d{1,2}[\s.-]?)?(?:\(\d{3}\)|\d{3})[\s.-]?\d{3}[\s.-]?\d{4}`)
	linkedInURLPattern   = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_%-]+/?`)
	linkedInLabelPattern = regexp.MustCompile(`(?i)\blinkedin\s*:\s*([A-Za-z0-9_-]{3,100})`)
	websitePattern       = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>()"',;]+`)
)

// ExtractContact finds the first email, phone number, LinkedIn profile and
// personal website in text. Values are verbatim substrings of text.
func ExtractContact(text string) types.ContactInfo {
	var info types.ContactInfo

	info.Email = emailPattern.FindString(text)
	info.Phone = firstPhone(text)

	linkedIn, linkedInSpans := findLinkedIn(text)
	info.LinkedIn = linkedIn
	info.Website = firstWebsite(text, linkedInSpans)

	return info
}

// firstPhone skips candidates embedded in longer digit runs.
func firstPhone(text string) string {
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isDigit(text[start-1]) {
			continue
		}
		if end < len(text) && isDigit(text[end]) {
			continue
		}
		return text[start:end]
	}
	return ""
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// findLinkedIn returns the earliest LinkedIn reference and the spans of all
// profile URLs. The label form yields just the handle.
func findLinkedIn(text string) (string, [][]int) {
	urlSpans := linkedInURLPattern.FindAllStringIndex(text, -1)

	best, bestStart := "", len(text)+1
	if len(urlSpans) > 0 {
		best, bestStart = strings.TrimSuffix(text[urlSpans[0][0]:urlSpans[0][1]], "/"), urlSpans[0][0]
	}

	for _, m := range linkedInLabelPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] >= bestStart {
			break
		}
		handleEnd := m[3]
		if handleEnd < len(text) && (text[handleEnd] == '.' || text[handleEnd] == '/') {
			continue // a URL follows the label
		}
		best, bestStart = text[m[2]:m[3]], m[0]
		break
	}
	return best, urlSpans
}

func firstWebsite(text string, exclude [][]int) string {
	for _, loc := range websitePattern.FindAllStringIndex(text, -1) {
		if overlapsAny(loc, exclude) {
			continue
		}
		candidate := strings.TrimRight(text[loc[0]:loc[1]], ".:!?")
		if strings.Contains(strings.ToLower(candidate), "linkedin.com") {
			continue
		}
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func overlapsAny(span []int, others [][]int) bool {
	for _, o := range others {
		if span[0] < o[1] && o[0] < span[1] {
			return true
		}
	}
	return false
}
