package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
)

func newTestLearner(llm core.LLMClient, vector core.VectorRepository, minSamples int) *ToneLearner {
	return NewToneLearner(llm, vector, zap.NewNop(), testTextProcessor(), 4096, minSamples)
}

func toneResponse(formality, warmth string) string {
	return fmt.Sprintf(`{"formality": %q, "warmth": %q, "urgency": "medium", "directness": "direct",
		"technical_level": "technical", "emotional_tone": "neutral", "response_length": "short",
		"greeting_style": "casual", "common_phrases": ["cheers"], "keywords": ["deploy"]}`, formality, warmth)
}

func sampleEmails(n int) []core.EmailData {
	emails := make([]core.EmailData, n)
	for i := range emails {
		emails[i] = *testEmail(fmt.Sprintf("e%d", i), "Update", "Shipping the fix today. Cheers.")
	}
	return emails
}

func TestLearnProfile_BelowMinSamplesReturnsDefault(t *testing.T) {
	llm := &stubLLM{}
	l := newTestLearner(llm, nil, 3)

	profile, err := l.LearnProfile(context.Background(), "alice@example.com", sampleEmails(2))

	require.NoError(t, err)
	assert.Equal(t, 0.3, profile.Confidence)
	assert.Equal(t, "formal", profile.Formality)
	assert.Equal(t, 0, llm.callCount(), "no model calls below the sample threshold")
}

func TestLearnProfile_MajorityVote(t *testing.T) {
	llm := &stubLLM{responses: []string{
		toneResponse("casual", "warm"),
		toneResponse("casual", "neutral"),
		toneResponse("formal", "warm"),
	}}
	l := newTestLearner(llm, nil, 3)

	profile, err := l.LearnProfile(context.Background(), "alice@example.com", sampleEmails(3))

	require.NoError(t, err)
	assert.Equal(t, "casual", profile.Formality)
	assert.Equal(t, "warm", profile.Warmth)
	assert.Equal(t, 3, profile.SampleCount)
}

func TestLearnProfile_TieBrokenByFirstSeen(t *testing.T) {
	llm := &stubLLM{responses: []string{
		toneResponse("formal", "warm"),
		toneResponse("casual", "cold"),
		toneResponse("formal", "cold"),
		toneResponse("casual", "warm"),
	}}
	l := newTestLearner(llm, nil, 3)

	profile, err := l.LearnProfile(context.Background(), "alice@example.com", sampleEmails(4))

	require.NoError(t, err)
	assert.Equal(t, "formal", profile.Formality, "2-2 tie goes to the first value seen")
	assert.Equal(t, "warm", profile.Warmth)
}

func TestLearnProfile_SkipsFailedExtractions(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"no json here",
		toneResponse("casual", "warm"),
		toneResponse("casual", "warm"),
		toneResponse("casual", "warm"),
	}}
	l := newTestLearner(llm, nil, 3)

	profile, err := l.LearnProfile(context.Background(), "alice@example.com", sampleEmails(4))

	require.NoError(t, err)
	assert.Equal(t, 3, profile.SampleCount, "unparseable extraction is skipped, not fatal")
}

func TestLearnProfile_DefaultWhenTooManyExtractionsFail(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"garbage", "garbage", "garbage",
	}}
	l := newTestLearner(llm, nil, 3)

	profile, err := l.LearnProfile(context.Background(), "alice@example.com", sampleEmails(3))

	require.NoError(t, err)
	assert.Equal(t, 0.3, profile.Confidence)
}

func TestLearnProfile_NoLLM(t *testing.T) {
	l := newTestLearner(nil, nil, 3)

	_, err := l.LearnProfile(context.Background(), "alice@example.com", sampleEmails(3))

	assert.Error(t, err)
}

func TestProfileConfidence(t *testing.T) {
	assert.InDelta(t, 0.05, profileConfidence(1), 1e-9)
	assert.InDelta(t, 0.16, profileConfidence(2), 1e-9)
	assert.InDelta(t, 0.40, profileConfidence(5), 1e-9)
	assert.InDelta(t, 0.80, profileConfidence(10), 1e-9)
	assert.InDelta(t, 0.80, profileConfidence(25), 1e-9, "confidence saturates at 10 samples")

	for n := 1; n < 20; n++ {
		assert.LessOrEqual(t, profileConfidence(n), profileConfidence(n+1), "confidence is monotonic in sample count")
	}
}

func TestUnionCapped(t *testing.T) {
	got := unionCapped([]string{"a", "b"}, []string{"b", "c", "", "d"}, 3)

	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestStoreProfile_WritesToToneNamespace(t *testing.T) {
	vector := newStubVector()
	l := newTestLearner(&stubLLM{}, vector, 3)
	profile := DefaultProfile("alice@example.com")

	err := l.StoreProfile(context.Background(), profile)

	require.NoError(t, err)
	docs := vector.upserted(NamespaceToneProfiles)
	require.Len(t, docs, 1)
	assert.Equal(t, "tone-profile-alice@example.com", docs[0].ID)
	assert.Equal(t, "alice@example.com", docs[0].Metadata["user_email"])

	var stored core.ToneProfile
	require.NoError(t, json.Unmarshal([]byte(docs[0].Metadata["profile"]), &stored))
	assert.Equal(t, profile.Formality, stored.Formality)
}
