package rasa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxbridge/chatwoot-rasa-bridge/pkg/logging"
)

func newTestExtractor() *Extractor {
	return NewExtractor(24, 10, nil, logging.New("error"))
}

func TestExtractReplyJoinsTextInOrder(t *testing.T) {
	raw := []byte(`[
		{"text": "first"},
		{"buttons": [{"title": "A", "payload": "/a"}]},
		{"text": "second"},
		{"text": "third"}
	]`)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird", reply.Text)
}

func TestExtractReplyAccumulatesButtonsAcrossFragments(t *testing.T) {
	raw := []byte(`[
		{"buttons": [{"title": "One", "payload": "/one"}, {"title": "Two", "payload": "/two"}]},
		{"buttons": [{"title": "Three", "payload": "/three"}]}
	]`)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, reply.Buttons, 3)
	assert.Equal(t, []Button{
		{Title: "One", Value: "/one"},
		{Title: "Two", Value: "/two"},
		{Title: "Three", Value: "/three"},
	}, reply.Buttons)
}

func TestExtractReplyTruncatesLongButtonTitles(t *testing.T) {
	long := strings.Repeat("x", 40)
	raw := fmt.Appendf(nil, `[{"buttons": [{"title": %q, "payload": "/x"}]}]`, long)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, reply.Buttons, 1)
	assert.Len(t, reply.Buttons[0].Title, 24)
	assert.Equal(t, strings.Repeat("x", 21)+"...", reply.Buttons[0].Title)
}

func TestNewExtractorRejectsTitleLimitBelowEllipsisRoom(t *testing.T) {
	long := strings.Repeat("x", 40)
	raw := fmt.Appendf(nil, `[{"buttons": [{"title": %q, "payload": "/x"}]}]`, long)

	// limits 1-3 leave no room for "..." and fall back to the default
	for _, limit := range []int{-1, 0, 1, 2, 3} {
		e := NewExtractor(limit, 10, nil, logging.New("error"))
		reply, err := e.ExtractReply(context.Background(), raw)
		require.NoError(t, err)
		require.Len(t, reply.Buttons, 1)
		assert.Equal(t, strings.Repeat("x", 21)+"...", reply.Buttons[0].Title)
	}
}

func TestExtractReplyCountsTitleCharactersNotBytes(t *testing.T) {
	// 20 characters, 40 bytes: under the character limit, must stay intact
	short := strings.Repeat("é", 20)
	long := strings.Repeat("é", 30)
	raw := fmt.Appendf(nil,
		`[{"buttons": [{"title": %q, "payload": "/a"}, {"title": %q, "payload": "/b"}]}]`,
		short, long)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, reply.Buttons, 2)
	assert.Equal(t, short, reply.Buttons[0].Title)
	assert.Equal(t, strings.Repeat("é", 21)+"...", reply.Buttons[1].Title)
	assert.True(t, utf8.ValidString(reply.Buttons[1].Title))
}

func TestExtractReplyCapsButtonCount(t *testing.T) {
	var fragments []Fragment
	for i := 0; i < 15; i++ {
		fragments = append(fragments, Fragment{
			Buttons: []FragmentButton{{Title: fmt.Sprintf("B%d", i), Payload: fmt.Sprintf("/b%d", i)}},
		})
	}
	raw, err := json.Marshal(fragments)
	require.NoError(t, err)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	assert.Len(t, reply.Buttons, 10)
	assert.Equal(t, "B0", reply.Buttons[0].Title)
	assert.Equal(t, "B9", reply.Buttons[9].Title)
}

func TestExtractReplyLastCustomWins(t *testing.T) {
	raw := []byte(`[
		{"custom": {"type": "cards", "elements": [{"id": 1}]}},
		{"custom": {"type": "article", "elements": [{"id": 2}]}}
	]`)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, reply.Custom)
	assert.Equal(t, "article", reply.Custom.Type)
	assert.JSONEq(t, `[{"id": 2}]`, string(reply.Custom.Elements))
}

func TestExtractReplySingleObject(t *testing.T) {
	reply, err := newTestExtractor().ExtractReply(context.Background(), []byte(`{"message": "hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Text)
	assert.Empty(t, reply.Buttons)
	assert.Nil(t, reply.Custom)
	assert.Empty(t, reply.Image)
}

func TestExtractReplyInlineBase64Image(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	url := "data:image/jpg;base64," + base64.StdEncoding.EncodeToString(payload)
	raw := fmt.Appendf(nil, `[{"text": "pic", "image": %q}]`, url)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, payload, reply.Image)
}

func TestExtractReplyFetchesImageOverHTTP(t *testing.T) {
	payload := []byte("fake image bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	raw := fmt.Appendf(nil, `[{"image": %q}]`, server.URL+"/pic.jpg")

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, payload, reply.Image)
}

func TestExtractReplyLastImageWins(t *testing.T) {
	first := []byte{0x01}
	second := []byte{0x02}
	raw := fmt.Appendf(nil, `[{"image": %q}, {"image": %q}]`,
		"data:image/jpg;base64,"+base64.StdEncoding.EncodeToString(first),
		"data:image/jpg;base64,"+base64.StdEncoding.EncodeToString(second),
	)

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, second, reply.Image)
}

func TestExtractReplyImageFailureDoesNotAbort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	raw := fmt.Appendf(nil, `[{"text": "still here", "image": %q}]`, server.URL+"/pic.jpg")

	reply, err := newTestExtractor().ExtractReply(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "still here", reply.Text)
	assert.Empty(t, reply.Image)
}

func TestExtractReplyMalformed(t *testing.T) {
	_, err := newTestExtractor().ExtractReply(context.Background(), []byte(`[{"text":`))
	assert.Error(t, err)

	_, err = newTestExtractor().ExtractReply(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}

// IsEmpty must hold exactly when text, buttons, custom and image are all
// absent; every combination of the four is checked.
func TestReplyIsEmptyAllCombinations(t *testing.T) {
	for i := 0; i < 16; i++ {
		hasText := i&1 != 0
		hasButtons := i&2 != 0
		hasCustom := i&4 != 0
		hasImage := i&8 != 0

		var reply Reply
		if hasText {
			reply.Text = "t"
		}
		if hasButtons {
			reply.Buttons = []Button{{Title: "b", Value: "/b"}}
		}
		if hasCustom {
			reply.Custom = &CustomPayload{Type: "c"}
		}
		if hasImage {
			reply.Image = []byte{0x01}
		}

		want := !hasText && !hasButtons && !hasCustom && !hasImage
		assert.Equalf(t, want, reply.IsEmpty(),
			"text=%v buttons=%v custom=%v image=%v", hasText, hasButtons, hasCustom, hasImage)
	}
}
