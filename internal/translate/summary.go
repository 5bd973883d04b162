package translate

import (
	"strings"
	"unicode/utf8"
)

const (
	summarySentences   = 3
	minSentenceRunes   = 11
	shortSummaryRunes  = 100
	dictionaryDetail   = 200
	referToOriginal    = "더 자세한 내용은 원문을 참조하시기 바랍니다."
	dictionaryFootnote = "이 기사는 기본 번역 시스템으로 처리되었습니다. 더 정확한 번역을 위해서는 원문을 참조하시기 바랍니다."
)

// BasicSummary turns up to three sentences of text into bullet points. When
// fewer than two sentences are long enough it bullets a 100-character prefix.
func BasicSummary(text string) string {
	var sentences []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) >= minSentenceRunes {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) >= 2 {
		if len(sentences) > summarySentences {
			sentences = sentences[:summarySentences]
		}
		lines := make([]string, len(sentences))
		for i, s := range sentences {
			lines[i] = bullet + " " + s
		}
		return strings.Join(lines, "\n")
	}
	return bullet + " " + truncateRunes(text, shortSummaryRunes) + "..."
}

// Passthrough builds the content blocks for an article that is already in
// Korean and needs no translation.
func Passthrough(description string) Result {
	return Result{
		Summary:     BasicSummary(description),
		Detailed:    description,
		FullContent: description + "\n\n" + referToOriginal,
		Strategy:    StrategyOriginal,
	}
}

func truncateRunes(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}
