package triage

// Logical partitions within the vector index. Each purpose of retrieval gets
// its own namespace so stored patterns never bleed between concerns.
const (
	NamespaceEmailPatterns          = "email-patterns"
	NamespaceClassificationExamples = "classification-examples"
	NamespaceEmailSummaries         = "email-summaries"
	NamespaceReplyPatterns          = "reply-patterns"
	NamespaceToneProfiles           = "user-tone-profiles"
)
