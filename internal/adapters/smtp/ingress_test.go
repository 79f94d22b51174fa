package smtp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawEmail = "Message-ID: <abc-123@example.com>\r\n" +
	"From: Alice <alice@example.com>\r\n" +
	"To: support@example.com\r\n" +
	"Subject: Export broken\r\n" +
	"Date: Mon, 24 Aug 2026 10:30:00 +0000\r\n" +
	"\r\n" +
	"The CSV export times out since yesterday.\r\n"

func TestParseEmail(t *testing.T) {
	email, err := ParseEmail(strings.NewReader(rawEmail), "alice@example.com", []string{"support@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "<abc-123@example.com>", email.ID)
	assert.Equal(t, "Export broken", email.Metadata.Subject)
	assert.Equal(t, "Alice <alice@example.com>", email.Metadata.From)
	assert.Equal(t, []string{"support@example.com"}, email.Metadata.To)
	assert.Contains(t, email.Body, "CSV export times out")
	assert.Equal(t, 2026, email.Metadata.Timestamp.Year())
}

func TestParseEmail_GeneratesIDWithoutMessageID(t *testing.T) {
	raw := "From: bob@example.com\r\nSubject: Hi\r\n\r\nhello\r\n"

	email, err := ParseEmail(strings.NewReader(raw), "bob@example.com", nil)

	require.NoError(t, err)
	assert.NotEmpty(t, email.ID)
}

func TestParseEmail_EnvelopeSenderFallback(t *testing.T) {
	raw := "Subject: Hi\r\n\r\nhello\r\n"

	email, err := ParseEmail(strings.NewReader(raw), "carol@example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", email.Metadata.From)
	assert.Equal(t, "carol@example.com", email.Metadata.UserID)
}

func TestParseEmail_Malformed(t *testing.T) {
	_, err := ParseEmail(strings.NewReader("not an email"), "", nil)

	assert.Error(t, err)
}
