package llm

import (
	"alcyxob/coach-app/internal/config"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	kinds []string
	errs  []error
}

func (o *recordingObserver) ObserveGeneration(kind string, _ time.Duration, err error) {
	o.kinds = append(o.kinds, kind)
	o.errs = append(o.errs, err)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, obs Observer) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.LLMConfig{BaseURL: srv.URL + "/v1/", APIKey: "test-key", Model: "test-model", Timeout: 2 * time.Second}
	return NewClient(cfg, nil, obs)
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var in chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "test-model", in.Model)
		require.Len(t, in.Messages, 2)
		assert.Equal(t, "system", in.Messages[0].Role)
		assert.Equal(t, "be brief", in.Messages[0].Content)
		assert.Equal(t, "json_object", in.ResponseFormat["type"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}, obs)

	out, err := c.Complete(context.Background(), Request{Kind: KindChat, System: "be brief", User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, []string{KindChat}, obs.kinds)
	assert.Nil(t, obs.errs[0])
}

func TestCompleteUpstreamError(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}, obs)

	_, err := c.Complete(context.Background(), Request{Kind: KindStrategy})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Contains(t, err.Error(), "slow down")
	assert.Error(t, obs.errs[0])
}

func TestCompleteEmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, nil)

	_, err := c.Complete(context.Background(), Request{Kind: KindDayPlan})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	c := NewClient(config.LLMConfig{BaseURL: "http://unused"}, nil, nil)
	_, err := c.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`  {"a":1} `))
}
