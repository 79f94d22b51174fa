// Package triage implements the email triage pipeline: prefiltering, dedup,
// context enrichment, LLM-backed classification, summarization and reply
// drafting with deterministic fallbacks, pattern storage, and tone-profile
// learning.
package triage
