package nlu

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	searchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)search (?:for |about |)(.+)`),
		regexp.MustCompile(`(?i)google (.+)`),
		regexp.MustCompile(`(?i)find (.+)`),
		regexp.MustCompile(`(?i)look up (.+)`),
	}

	youtubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)youtube (.+)`),
		regexp.MustCompile(`(?i)search youtube (?:for |about |)(.+)`),
		regexp.MustCompile(`(?i)play (.+) on youtube`),
	}

	greetingRe = regexp.MustCompile(`\b(?:hi|hello|hey|good morning|good afternoon|good evening)\b`)

	saveWordsRe = regexp.MustCompile(`(?i)save|write file`)
)

// extractQuery returns the first capture of the first matching pattern.
func extractQuery(input string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		q := strings.TrimSpace(m[1])
		if q == "" {
			continue
		}
		return q, true
	}
	return "", false
}

// queryEscape encodes a query value with %20 for spaces.
func queryEscape(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}

func googleSearchURL(q string) string {
	return "https://www.google.com/search?q=" + queryEscape(q)
}

func youtubeSearchURL(q string) string {
	return "https://www.youtube.com/results?search_query=" + queryEscape(q)
}

// noteContent strips the trigger words from a save request.
func noteContent(input string) string {
	return strings.TrimSpace(saveWordsRe.ReplaceAllString(input, ""))
}
