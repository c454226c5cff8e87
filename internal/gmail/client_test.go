package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
)

func encode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestExtractBody_PrefersTextPlain(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Parts: []*gmailapi.MessagePart{
			{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: encode("<b>html</b>")}},
			{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: encode("plain body")}},
		},
	}

	got, err := extractBody(payload)
	require.NoError(t, err)
	assert.Equal(t, "plain body", got)
}

func TestExtractBody_FallsBackToFirstPart(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Parts: []*gmailapi.MessagePart{
			{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: encode("<b>only html</b>")}},
		},
	}

	got, err := extractBody(payload)
	require.NoError(t, err)
	assert.Equal(t, "<b>only html</b>", got)
}

func TestExtractBody_TopLevelBody(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Body: &gmailapi.MessagePartBody{Data: encode("unparted body")},
	}

	got, err := extractBody(payload)
	require.NoError(t, err)
	assert.Equal(t, "unparted body", got)
}

func TestExtractBody_Empty(t *testing.T) {
	_, err := extractBody(&gmailapi.MessagePart{})
	require.Error(t, err)
}

func TestDecodeBody_PaddedAndUnpadded(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("with padding"))
	got, err := decodeBody(padded)
	require.NoError(t, err)
	assert.Equal(t, "with padding", got)

	got, err = decodeBody(encode("without padding"))
	require.NoError(t, err)
	assert.Equal(t, "without padding", got)

	_, err = decodeBody("!!not base64!!")
	require.Error(t, err)
}
