package chatwoot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMessageJSON(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("api_access_token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 99}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bot_token")

	result, err := client.CreateMessage(context.Background(), 1, 5, CreateMessageRequest{
		Content: "hello",
		Private: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/accounts/1/conversations/5/messages", gotPath)
	assert.Equal(t, "bot_token", gotToken)
	assert.Equal(t, "hello", gotBody["content"])
	assert.Equal(t, true, gotBody["private"])
	assert.JSONEq(t, `{"id": 99}`, string(result))
}

func TestCreateMessageInteractive(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")

	_, err := client.CreateMessage(context.Background(), 1, 5, CreateMessageRequest{
		Content:           "pick one",
		ContentType:       "input_select",
		ContentAttributes: &MessageAttributes{Items: json.RawMessage(`[{"title":"A","value":"a"}]`)},
	})
	require.NoError(t, err)

	assert.Equal(t, "input_select", gotBody["content_type"])
	attrs, ok := gotBody["content_attributes"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, attrs["items"], 1)
}

func TestCreateMessageMultipart(t *testing.T) {
	var gotContentType string
	var fields map[string][]string
	var fileName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		files := r.MultipartForm.File["attachments[]"]
		require.Len(t, files, 1)
		fileName = files[0].Filename
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")

	_, err := client.CreateMessage(context.Background(), 2, 7, CreateMessageRequest{
		Content: "see attached",
		Image:   []byte{0xff, 0xd8, 0xff},
	})
	require.NoError(t, err)

	assert.Contains(t, gotContentType, "multipart/form-data")
	assert.Equal(t, []string{"see attached"}, fields["content"])
	// non-private uploads omit the private field entirely
	assert.NotContains(t, fields, "private")
	assert.True(t, strings.HasSuffix(fileName, ".jpg"))
	assert.Len(t, strings.TrimSuffix(fileName, ".jpg"), 32)
}

func TestCreateMessageMultipartPrivate(t *testing.T) {
	var fields map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")

	_, err := client.CreateMessage(context.Background(), 2, 7, CreateMessageRequest{
		Content: "internal note",
		Private: true,
		Image:   []byte{0x01},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, fields["private"])
}

func TestCreateMessageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")

	_, err := client.CreateMessage(context.Background(), 1, 5, CreateMessageRequest{Content: "x"})
	assert.Error(t, err)
}

func TestToggleTyping(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")

	require.NoError(t, client.ToggleTyping(context.Background(), 1, 5, true))
	assert.Equal(t, "/api/v1/accounts/1/conversations/5/toggle_typing_status", gotPath)
	assert.Equal(t, "on", gotBody["status"])

	require.NoError(t, client.ToggleTyping(context.Background(), 1, 5, false))
	assert.Equal(t, "off", gotBody["status"])
}
