package grammar

// DefaultSystemPrompt instructs the model to act as a proofreader
const DefaultSystemPrompt = `You are a meticulous proofreader for professional resumes. Your job is to find
grammar, spelling and punctuation mistakes.

- Report only genuine errors, not stylistic preferences
- Resume fragments such as bullet points without a subject are acceptable
- Never rewrite content or invent new facts
- Proper nouns, product names and technical terms are not spelling errors`

// userPromptTemplate wraps the text under review
const userPromptTemplate = `Check the following resume text. For each problem return:

- "message": a short explanation of the error
- "context": the exact snippet from the text that contains the error
- "replacements": up to 3 suggested corrections, best first

Return an empty issues array when the text has no errors.

**Resume Text:**
-----
%s
-----`

// resolvePrompt prefers a configured prompt over the default
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
