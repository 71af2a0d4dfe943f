package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iapss/iapss-backend/internal/platform/httpx"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

func TestGenerateTextWithImages(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"ok\":true}"}]}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "m"}, logger.Nop())
	require.NoError(t, err)

	text, err := c.GenerateTextWithImages(context.Background(), "sys", "user", []ImageInput{{ImageURL: "https://img/1.png"}, {ImageURL: " "}})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	input := got["input"].([]any)
	user := input[1].(map[string]any)
	content := user["content"].([]any)
	assert.Len(t, content, 2)
	assert.Equal(t, "m", got["model"])
}

func TestNon2xxIsStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, logger.Nop())
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.True(t, httpx.IsRateLimited(err))
	assert.Equal(t, 1, calls)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, logger.Nop())
	assert.Error(t, err)
}
