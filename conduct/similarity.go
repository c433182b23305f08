package conduct

import "github.com/pmezard/go-difflib/difflib"

// SequenceRatio is the Ratcliff/Obershelp similarity of a and b, compared
// character by character: 2*M / (len(a)+len(b)).
func SequenceRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
