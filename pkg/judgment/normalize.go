package judgment

import (
	"strings"
	"unicode"

	"mercator-hq/minerva/pkg/eligibility"
)

// verdictPhrases maps verdict wordings to outcome tiers. Order matters: at
// any scan position the first phrase that matches wins, so negated and
// hedged collocations must come before the bare tier words they contain.
var verdictPhrases = []struct {
	phrase  string
	outcome eligibility.Outcome
}{
	{"likely ineligible", eligibility.OutcomeUnlikely},
	{"likely not eligible", eligibility.OutcomeUnlikely},
	{"possibly eligible", eligibility.OutcomePossible},
	{"possibly ineligible", eligibility.OutcomePossible},
	{"not likely", eligibility.OutcomeUnlikely},
	{"not eligible", eligibility.OutcomeUnlikely},
	{"ineligible", eligibility.OutcomeUnlikely},
	{"unlikely", eligibility.OutcomeUnlikely},
	{"likely", eligibility.OutcomeLikely},
	{"eligible", eligibility.OutcomeLikely},
	{"possibly", eligibility.OutcomePossible},
	{"possible", eligibility.OutcomePossible},
	{"uncertain", eligibility.OutcomePossible},
	{"unclear", eligibility.OutcomePossible},
	{"borderline", eligibility.OutcomePossible},
}

// Normalize maps free-form verdict text to an outcome tier.
//
// The scan is line-oriented: the first line containing a recognized tier
// phrase is the verdict segment, and every tier phrase on that line must
// agree. Conflicting tiers on the verdict line, or text with no tier
// phrase at all, return ok=false so the caller treats the narrative as
// unusable instead of guessing.
func Normalize(text string) (eligibility.Outcome, bool) {
	for _, line := range strings.Split(text, "\n") {
		outcomes := scanTierPhrases(line)
		if len(outcomes) == 0 {
			continue
		}
		for _, o := range outcomes[1:] {
			if o != outcomes[0] {
				return "", false
			}
		}
		return outcomes[0], true
	}
	return "", false
}

// scanTierPhrases collects the outcome of every word-bounded tier phrase
// on one line, left to right. A matched phrase is consumed whole, so
// "not likely" never also counts its embedded "likely".
func scanTierPhrases(line string) []eligibility.Outcome {
	line = strings.Join(strings.Fields(strings.ToLower(line)), " ")

	var outcomes []eligibility.Outcome
	for i := 0; i < len(line); {
		if !wordStart(line, i) {
			i++
			continue
		}
		matched := false
		for _, vp := range verdictPhrases {
			if matchPhrase(line, i, vp.phrase) {
				outcomes = append(outcomes, vp.outcome)
				i += len(vp.phrase)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return outcomes
}

func wordStart(s string, i int) bool {
	return i == 0 || !isWordChar(rune(s[i-1]))
}

// matchPhrase reports whether phrase occurs at s[i:] ending on a word
// boundary. The start boundary is the caller's responsibility.
func matchPhrase(s string, i int, phrase string) bool {
	end := i + len(phrase)
	if end > len(s) || s[i:end] != phrase {
		return false
	}
	return end == len(s) || !isWordChar(rune(s[end]))
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
