package interpreter

import "regexp"

// substitution rewrites one spoken word to its canonical token.
type substitution struct {
	re          *regexp.Regexp
	replacement string
}

func word(w, replacement string) substitution {
	return substitution{re: regexp.MustCompile(`(?i)\b` + w + `\b`), replacement: replacement}
}

// substitutions are applied in this order, each over the output of the
// previous one.
var substitutions = []substitution{
	word("one", "1"),
	word("two", "2"),
	word("three", "3"),
	word("four", "4"),
	word("for", "4"), // STT hears "four" as "for"
	word("five", "5"),
	word("six", "6"),
	word("seven", "7"),
	word("eight", "8"),
	word("ate", "8"),
	word("nine", "9"),
	word("ten", "10"),
	// misheard "bech" (Urdu: sell)
	word("betch", "bech"),
	word("beech", "bech"),
	word("bach", "bech"),
	word("beige", "bech"),
}

// Normalize rewrites number words and known misrecognitions of "bech" into
// canonical tokens. Unmapped text passes through unchanged.
func Normalize(text string) string {
	for _, s := range substitutions {
		text = s.re.ReplaceAllLiteralString(text, s.replacement)
	}
	return text
}
