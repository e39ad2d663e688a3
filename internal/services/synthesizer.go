package services

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// SynthesisResult carries the generated artifact bodies. An action that was
// not requested leaves its field empty.
type SynthesisResult struct {
	SummaryText string
	CSVText     string
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Synthesize is a pure function of the requested actions and the built
// context: no randomness, no clock, no external calls. Calling it twice with
// the same input yields byte-identical output.
func Synthesize(actions []string, contexts []DocumentContext) SynthesisResult {
	var result SynthesisResult

	if slices.Contains(actions, "make_document") {
		var b strings.Builder
		b.WriteString("Summary generated for scope\n\nDocuments:\n")
		for _, doc := range contexts {
			b.WriteString(fmt.Sprintf(
				"- %s: %s (Vendor: %s, Total: %s)\n",
				doc.Filename,
				firstLine(doc.Sample),
				orNA(doc.DetectedVendor),
				orNA(doc.DetectedTotal),
			))
		}
		result.SummaryText = b.String()
	}

	if slices.Contains(actions, "make_csv") {
		rows := make([]string, 0, len(contexts)+1)
		rows = append(rows, "filename,chars,words,first_line,detected_vendor,detected_total")
		for _, doc := range contexts {
			rows = append(rows, strings.Join([]string{
				csvQuote(doc.Filename),
				fmt.Sprintf("%d", utf8.RuneCountInString(doc.Sample)),
				fmt.Sprintf("%d", doc.WordCount),
				csvQuote(firstLine(doc.Sample)),
				csvQuote(doc.DetectedVendor),
				csvQuote(doc.DetectedTotal),
			}, ","))
		}
		result.CSVText = strings.Join(rows, "\n")
	}

	return result
}
