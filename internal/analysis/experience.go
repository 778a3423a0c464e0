package analysis

import (
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"

	"resumelens/internal/nlp"
	"resumelens/internal/types"
)

const (
	dateLayout     = "2006-01-02"
	monthLayout    = "Jan 2006"
	daysPerMonth   = 30
	pointsPerVerb  = 10
	maxVerbVariety = 100
)

const monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

var (
	dateRangePattern = regexp.MustCompile(`(?i)\b(` + monthPattern + `\s+\d{4})\s*(?:-|–|—|\bto\b|\buntil\b)\s*(` +
		monthPattern + `\s+\d{4}|present|current|now|today)\b`)

	achievementPattern = regexp.MustCompile(`(?i)\b(?:increased|reduced|improved|grew|boosted|saved|generated|cut|raised|` +
		`accelerated|delivered|achieved|expanded|doubled|tripled|lowered|decreased|exceeded)\b[^.\n]{0,80}?` +
		`(?:\$\d[\d,]*(?:\.\d+)?\s?[kmb]?\b|\d+(?:\.\d+)?\s?%|\d+(?:\.\d+)?x\b)`)
)

var openEnded = map[string]bool{"present": true, "current": true, "now": true, "today": true}

// actionVerbs is the allow-list of resume action verbs, in lemma form.
var actionVerbs = map[string]bool{
	"lead": true, "manage": true, "develop": true, "create": true, "implement": true,
	"design": true, "build": true, "launch": true, "improve": true, "increase": true,
	"reduce": true, "achieve": true, "deliver": true, "coordinate": true, "establish": true,
	"optimize": true, "streamline": true, "spearhead": true, "mentor": true, "analyze": true,
	"negotiate": true, "organize": true, "resolve": true, "automate": true, "architect": true,
	"collaborate": true, "drive": true, "execute": true, "oversee": true, "train": true,
}

// span is a parsed date range. end is inclusive.
type span struct {
	start, end time.Time
}

// AnalyzeExperience extracts the work-history facet of text. doc may be nil
// when the NLP pipeline failed, in which case organizations and action
// verbs are left empty.
func AnalyzeExperience(c *Context, text string, doc *nlp.Document) types.ExperienceProfile {
	ranges, spans := extractDateRanges(c, text)

	profile := types.ExperienceProfile{
		DateRanges:    ranges,
		Gaps:          findGaps(spans, c.Settings.GapThresholdDays),
		Organizations: []string{},
		ActionVerbs:   []string{},
		Achievements:  findAchievements(text),
	}

	if doc != nil {
		profile.Organizations = uniqueFold(doc.Organizations())
		profile.ActionVerbs = findActionVerbs(doc, c.Lemmatizer)
	}
	profile.VerbVarietyScore = min(len(profile.ActionVerbs)*pointsPerVerb, maxVerbVariety)
	return profile
}

func extractDateRanges(c *Context, text string) ([]types.DateRange, []span) {
	ranges := []types.DateRange{}
	var spans []span

	for _, m := range dateRangePattern.FindAllStringSubmatch(text, -1) {
		start, err := c.Dates.ParseMonthYear(stripDots(m[1]), nlp.StartOfMonth)
		if err != nil {
			continue
		}

		current := openEnded[strings.ToLower(m[2])]
		var end time.Time
		if current {
			end = c.AnalysisDate()
		} else {
			end, err = c.Dates.ParseMonthYear(stripDots(m[2]), nlp.EndOfMonth)
			if err != nil {
				continue
			}
		}
		if start.After(end) {
			continue
		}

		ranges = append(ranges, types.DateRange{
			Start:   start.Format(dateLayout),
			End:     end.Format(dateLayout),
			Source:  m[0],
			Current: current,
		})
		spans = append(spans, span{start: start, end: end})
	}
	return ranges, spans
}

func stripDots(s string) string {
	return strings.ReplaceAll(s, ".", "")
}

// findGaps sorts spans by calendar order, merges overlapping or adjacent
// ones and reports every break longer than thresholdDays.
func findGaps(spans []span, thresholdDays int) []types.Gap {
	gaps := []types.Gap{}
	if len(spans) < 2 {
		return gaps
	}

	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b span) int {
		if c := a.start.Compare(b.start); c != 0 {
			return c
		}
		return a.end.Compare(b.end)
	})

	merged := []span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !s.start.After(last.end.AddDate(0, 0, 1)) {
			if s.end.After(last.end) {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	for i := 1; i < len(merged); i++ {
		prev, next := merged[i-1], merged[i]
		days := int(next.start.Sub(prev.end).Hours() / 24)
		if days <= thresholdDays {
			continue
		}
		gaps = append(gaps, types.Gap{
			Start:  prev.end.AddDate(0, 0, 1).Format(monthLayout),
			End:    next.start.Format(monthLayout),
			Days:   days,
			Months: days / daysPerMonth,
		})
	}
	return gaps
}

func findActionVerbs(doc *nlp.Document, lem nlp.Lemmatizer) []string {
	verbs := []string{}
	seen := map[string]bool{}
	for _, line := range doc.Lines {
		for i, tok := range line {
			if i > 0 && !tok.IsVerb() {
				continue
			}
			if !isWord(tok.Text) {
				continue
			}
			word := strings.ToLower(tok.Text)
			lemma := lem.Lemma(word)
			switch {
			case actionVerbs[lemma]:
			case actionVerbs[word]:
				lemma = word
			default:
				continue
			}
			if !seen[lemma] {
				seen[lemma] = true
				verbs = append(verbs, lemma)
			}
		}
	}
	return verbs
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func findAchievements(text string) []string {
	return uniqueFold(achievementPattern.FindAllString(text, -1))
}

// uniqueFold trims values and removes case-insensitive duplicates, keeping
// the first spelling.
func uniqueFold(values []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
