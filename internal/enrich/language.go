package enrich

import "strings"

// frenchIndicators are common French function words (space-delimited) and
// accented characters. Finding more than two distinct indicators in a text is
// taken to mean the text is already French.
var frenchIndicators = []string{
	" le ", " la ", " les ", " des ", " un ", " une ", " du ", " de la ", " à ", " est ",
	"ç", "é", "è", "ê", "â", "ô", "î", "û", "ë", "ï", "ü",
}

// AppearsFrench is a cheap gate against re-translating text that is already
// in the target language. False positives and negatives are tolerated.
func AppearsFrench(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)

	found := 0
	for _, indicator := range frenchIndicators {
		if strings.Contains(lower, indicator) {
			found++
		}
	}
	return found > 2
}
