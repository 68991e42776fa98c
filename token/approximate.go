package token

import (
	"strings"

	"github.com/blue-context/oaikit"
)

// Approximate returns a counter that estimates tokens without an encoding
// table. Estimates land within about 15% of o200k_base for English text.
//
// Thread Safety: The returned Counter is safe for concurrent use.
func Approximate() Counter {
	return approxCounter{}
}

type approxCounter struct{}

// CountText blends a characters/4 estimate with the word count.
func (approxCounter) CountText(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	charCount := len(text)
	baseTokens := charCount / 4
	avgCharsPerWord := float64(charCount) / float64(len(words))

	var tokens int
	if avgCharsPerWord > 6 {
		tokens = baseTokens
	} else {
		// 70% char-based, 30% word-based
		tokens = int(0.7*float64(baseTokens) + 0.3*float64(len(words)))
	}
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

func (c approxCounter) CountMessage(m oaikit.Message) int {
	return countMessage(c, m)
}

func (c approxCounter) CountMessages(messages []oaikit.Message) int {
	return countMessages(c, messages)
}

func (c approxCounter) CountRequest(req *oaikit.ChatCompletionRequest) int {
	return countRequest(c, req)
}
