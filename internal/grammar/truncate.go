package grammar

import "unicode"

// Truncate keeps the first maxWords whitespace-delimited words of text,
// preserving the original spacing between them. maxWords <= 0 disables
// truncation.
func Truncate(text string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}

	words := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord && words == maxWords {
				return text[:i]
			}
			inWord = false
			continue
		}
		if !inWord {
			inWord = true
			words++
		}
	}
	return text
}

// WordCount counts whitespace-delimited words.
func WordCount(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			inWord = true
			n++
		}
	}
	return n
}
