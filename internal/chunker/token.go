package chunker

import "strings"

// EstimateTokens approximates the model token count of text from its word
// count. Chunk budgets only need to be roughly right.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
