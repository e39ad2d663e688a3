package services

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/types"
)

const maxSampleLength = 300

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	vendorRe     = regexp.MustCompile(`(?i)vendor[:\-]\s*([A-Za-z0-9 &]+)`)
	totalRe      = regexp.MustCompile(`(?i)\b(total|amount|due)\s*[:\-]?\s*\$?([0-9]+(\.[0-9]{2})?)`)
)

// DocumentContext holds the per-document features extracted for synthesis.
// Extraction is heuristic; the contract is determinism, not correctness.
type DocumentContext struct {
	ID             uuid.UUID
	Filename       string
	Mime           string
	Sample         string
	DetectedVendor string
	DetectedTotal  string
	WordCount      int
}

func sanitizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func extractVendor(text string) string {
	m := vendorRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// extractTotal captures the numeric amount after a total/amount/due label.
// The cents group is optional and folded into the captured amount.
func extractTotal(text string) string {
	m := totalRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[2]
}

func BuildDocumentContext(documents []*types.Document) []DocumentContext {
	contexts := make([]DocumentContext, 0, len(documents))
	for _, doc := range documents {
		sample := sanitizeText(doc.TextContent)
		// Truncation counts runes, never bytes: a multi-byte character at
		// the boundary must survive intact or the sample is not valid UTF-8.
		if runes := []rune(sample); len(runes) > maxSampleLength {
			sample = string(runes[:maxSampleLength])
		}

		wordCount := 0
		if sample != "" {
			wordCount = len(strings.Fields(sample))
		}

		contexts = append(contexts, DocumentContext{
			ID:             doc.ID,
			Filename:       doc.Filename,
			Mime:           doc.Mime,
			Sample:         sample,
			DetectedVendor: extractVendor(sample),
			DetectedTotal:  extractTotal(sample),
			WordCount:      wordCount,
		})
	}
	return contexts
}
