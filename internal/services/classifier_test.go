package services

import "testing"

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"invoice keyword", "Please see invoice total: $45.00", ClassificationOfficial},
		{"contract keyword uppercase", "CONTRACT attached for review", ClassificationOfficial},
		{"promo sale", "Big sale this weekend only", ClassificationAd},
		{"promo unsubscribe", "Click here to unsubscribe", ClassificationAd},
		{"financial beats promo", "Limited time discount on your payment plan", ClassificationOfficial},
		{"no keywords", "Meeting notes from Tuesday", ClassificationUnknown},
		{"empty", "", ClassificationUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyText(tt.text); got != tt.want {
				t.Fatalf("ClassifyText(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyTextDeterministic(t *testing.T) {
	text := "Limited time sale! unsubscribe at bye@x.com"
	first := ClassifyText(text)
	for i := 0; i < 10; i++ {
		if got := ClassifyText(text); got != first {
			t.Fatalf("classification changed between calls: %q vs %q", first, got)
		}
	}
}

func TestExtractUnsubscribe(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantChannel string
		wantTarget  string
	}{
		{"email after unsubscribe", "Limited time sale! unsubscribe at bye@x.com", "email", "bye@x.com"},
		{"url after unsubscribe", "sale! To unsubscribe visit https://x.com/opt-out now", "url", "https://x.com/opt-out"},
		{"email wins over url", "unsubscribe: mail me@y.org or https://y.org/u", "email", "me@y.org"},
		{"case insensitive", "UNSUBSCRIBE here: stop@z.io", "email", "stop@z.io"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractUnsubscribe(tt.text)
			if got == nil {
				t.Fatalf("ExtractUnsubscribe(%q) = nil", tt.text)
			}
			if got.Channel != tt.wantChannel || got.Target != tt.wantTarget {
				t.Fatalf("ExtractUnsubscribe(%q) = %+v, want channel=%q target=%q", tt.text, got, tt.wantChannel, tt.wantTarget)
			}
		})
	}

	if got := ExtractUnsubscribe("discount code inside, no contact"); got != nil {
		t.Fatalf("expected nil for text without unsubscribe contact, got %+v", got)
	}
	if got := ExtractUnsubscribe("write to someone@somewhere.com"); got != nil {
		t.Fatalf("expected nil when email is not preceded by unsubscribe, got %+v", got)
	}
}
