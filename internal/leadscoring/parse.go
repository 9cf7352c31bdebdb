package leadscoring

import (
	"regexp"
	"strconv"
	"strings"
)

// Models phrase their answers inconsistently even with a mandated
// format, so each extractor tries a ladder of patterns from the
// strict format down to looser fallbacks.

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*Lead Score:\*\*\s*(\d+)/100`),
	regexp.MustCompile(`(?i)Lead Score:\s*(\d+)/100`),
	regexp.MustCompile(`(?i)Final adjusted score:\s*(\d+)/100`),
	regexp.MustCompile(`(\d+)/100`),
}

var confidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*Confidence Score:\*\*\s*(\d+)/100`),
	regexp.MustCompile(`(?i)Confidence Score:\s*(\d+)/100`),
	regexp.MustCompile(`(?i)\*\*Confidence:\*\*\s*(\d+)/100`),
	regexp.MustCompile(`(?i)Confidence:\s*(\d+)/100`),
	regexp.MustCompile(`(?i)Confidence Level:\s*(\d+)%`),
	regexp.MustCompile(`(?i)Confidence:\s*(\d+)%`),
}

var (
	jurisdictionPattern  = regexp.MustCompile(`(?i)Jurisdiction:\s*([A-Z][a-zA-Z\s]+County)`)
	jurisdictionFallback = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+County)\b`)
)

// ExtractScore pulls the lead score out of a model response. Returns
// 0 when no recognized phrasing is present.
func ExtractScore(response string) int {
	return firstMatch(scorePatterns, response)
}

// ExtractConfidence pulls the model's self-reported confidence.
// Returns 0 when absent, which the stopping policy treats as
// "keep going", never as satisfying the threshold.
func ExtractConfidence(response string) int {
	return firstMatch(confidencePatterns, response)
}

// ExtractJurisdiction pulls a "<Name> County" jurisdiction. The
// labeled form wins; a bare county mention is accepted as a fallback.
// Returns "" when neither appears.
func ExtractJurisdiction(response string) string {
	if m := jurisdictionPattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := jurisdictionFallback.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func firstMatch(patterns []*regexp.Regexp, response string) int {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(response); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n
		}
	}
	return 0
}
