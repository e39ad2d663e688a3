package services

import (
	"regexp"
	"strings"
)

const (
	ClassificationOfficial = "official"
	ClassificationAd       = "ad"
	ClassificationUnknown  = "unknown"
)

var financialKeywords = []string{"invoice", "contract", "payment", "due", "legal", "terms"}

var promoKeywords = []string{"sale", "limited time", "discount", "unsubscribe"}

var (
	unsubscribeEmailRe = regexp.MustCompile(`(?i)unsubscribe.*?([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})`)
	unsubscribeURLRe   = regexp.MustCompile(`(?i)unsubscribe.*?(https?://[^\s>]+)`)
)

func containsKeyword(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// ClassifyText is total and deterministic. Order is fixed and
// first-match-wins: financial keywords beat promotional ones.
func ClassifyText(text string) string {
	if containsKeyword(text, financialKeywords) {
		return ClassificationOfficial
	}
	if containsKeyword(text, promoKeywords) {
		return ClassificationAd
	}
	return ClassificationUnknown
}

type UnsubscribeInfo struct {
	Channel string
	Target  string
}

// ExtractUnsubscribe finds an opt-out contact after the word "unsubscribe":
// an email address first, then a URL. Nil when neither is present.
func ExtractUnsubscribe(text string) *UnsubscribeInfo {
	if m := unsubscribeEmailRe.FindStringSubmatch(text); m != nil {
		return &UnsubscribeInfo{Channel: "email", Target: m[1]}
	}
	if m := unsubscribeURLRe.FindStringSubmatch(text); m != nil {
		return &UnsubscribeInfo{Channel: "url", Target: m[1]}
	}
	return nil
}
