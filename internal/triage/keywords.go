package triage

import (
	"sort"
	"strings"

	"github.com/mikey/llm-email-triage/internal/core"
)

// KeywordClassifier is the non-LLM classification path, used when no model
// client is configured at all. It scans for fixed keyword lists and derives
// a category from the matched priority.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword-based classifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	urgentKeywords = []string{
		"urgent", "asap", "emergency", "critical", "immediately",
		"down", "outage", "broken", "crash", "data loss", "fix",
	}
	importantKeywords = []string{
		"important", "priority", "deadline", "blocker", "escalate",
	}
	spamKeywords = []string{
		"unsubscribe", "viagra", "lottery", "winner", "free money",
	}

	bugKeywords     = []string{"bug", "error", "crash", "broken", "down", "fail", "fix", "outage"}
	featureKeywords = []string{"feature", "request", "would be nice", "add support", "enhancement"}
	// complaint/praise keyword sets used for category derivation
	complaintKeywords = []string{"disappointed", "unacceptable", "terrible", "refund", "cancel my"}
	praiseKeywords    = []string{"thank you", "great job", "love the", "awesome", "fantastic"}
)

// Classify derives a classification from keyword matches alone
func (c *KeywordClassifier) Classify(email *core.EmailData) core.Classification {
	text := normalize(email.Metadata.Subject + " " + email.Body)

	priority := core.PriorityNormal
	switch {
	case containsAny(text, spamKeywords):
		priority = core.PriorityLow
	case containsAny(text, urgentKeywords):
		priority = core.PriorityUrgent
	case containsAny(text, importantKeywords):
		priority = core.PriorityHigh
	}

	return core.Classification{
		Priority:   priority,
		Category:   deriveCategory(text, priority),
		Confidence: 0.4,
		Reasoning:  "keyword-based classification",
	}
}

// deriveCategory maps matched keyword families to a category. Urgent mails
// with failure language are treated as bug reports.
func deriveCategory(text string, priority core.Priority) core.Category {
	switch {
	case containsAny(text, bugKeywords):
		return core.CategoryBugReport
	case containsAny(text, featureKeywords):
		return core.CategoryFeatureRequest
	case containsAny(text, complaintKeywords):
		return core.CategoryComplaint
	case containsAny(text, praiseKeywords):
		return core.CategoryPraise
	case strings.Contains(text, "?"):
		return core.CategoryQuestion
	case priority == core.PriorityUrgent:
		return core.CategoryBugReport
	default:
		return core.CategoryOther
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// stopwords excluded from keyword extraction
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "this": true, "that": true, "it": true, "as": true, "by": true,
	"from": true, "we": true, "you": true, "i": true, "my": true, "our": true,
	"your": true, "have": true, "has": true, "had": true, "not": true, "no": true,
	"can": true, "will": true, "would": true, "please": true, "hi": true,
	"hello": true, "thanks": true, "regards": true, "so": true, "if": true,
}

// maxExtractedKeywords caps the keywords attached to a stored pattern
const maxExtractedKeywords = 15

// ExtractKeywords returns the most frequent non-stopword terms of a text,
// most frequent first, capped at maxExtractedKeywords. Ties are broken
// alphabetically so the output is deterministic.
func ExtractKeywords(text string) []string {
	counts := make(map[string]int)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(word) < 3 || stopwords[word] {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxExtractedKeywords {
		words = words[:maxExtractedKeywords]
	}
	return words
}
