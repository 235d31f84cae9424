package crawler

import "strings"

// riskMarkers are checked in order; the first hit names the hint.
var riskMarkers = []struct {
	hint    string
	needles []string
}{
	{"captcha", []string{"captcha"}},
	{"unusual_traffic", []string{"unusual traffic", "/sorry/index"}},
	{"consent", []string{"before you continue to youtube", "consent.youtube.com"}},
	{"forbidden", []string{"access denied"}},
}

// DetectRiskHint looks for signs that the page is a block or interstitial
// rather than the watch page. It returns "" when none are found.
func DetectRiskHint(body string) string {
	lower := strings.ToLower(body)
	for _, m := range riskMarkers {
		for _, n := range m.needles {
			if strings.Contains(lower, n) {
				return m.hint
			}
		}
	}
	return ""
}
