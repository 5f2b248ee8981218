package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// completionServer 返回固定 content 的 chat completions 服务
func completionServer(t *testing.T, status int, content string) (*httptest.Server, *chatCompletionRequest) {
	t.Helper()
	var received chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &received
}

func testClient(baseURL string) *OpenAIClient {
	return NewOpenAIClient(&config.Config{
		OpenAIAPIKey:     "test-key",
		OpenAIBaseURL:    baseURL,
		OpenAIModel:      "gpt-test",
		AssistantTimeout: 2 * time.Second,
	})
}

func TestAnalyzeMaintenance(t *testing.T) {
	srv, received := completionServer(t, http.StatusOK, `{"category":"Plumbing","priority":"high","estimatedCost":180}`)

	suggestion, err := testClient(srv.URL).AnalyzeMaintenance(context.Background(), "pipe burst")
	require.NoError(t, err)
	require.NotNil(t, suggestion.Category)
	assert.Equal(t, "Plumbing", *suggestion.Category)
	assert.Equal(t, "high", *suggestion.Priority)
	assert.Equal(t, 180.0, *suggestion.EstimatedCost)

	assert.Equal(t, "gpt-test", received.Model)
	require.NotNil(t, received.ResponseFormat)
	assert.Equal(t, "json_object", received.ResponseFormat.Type)
	require.Len(t, received.Messages, 2)
	assert.Contains(t, received.Messages[1].Content, "pipe burst")
}

func TestAnalyzeMaintenanceMalformed(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK, "Plumbing, probably high")

	_, err := testClient(srv.URL).AnalyzeMaintenance(context.Background(), "pipe burst")
	assert.True(t, apperr.Is(err, apperr.KindCollaborator))
}

func TestAskIncludesContext(t *testing.T) {
	srv, received := completionServer(t, http.StatusOK, "You have 3 vacant units.")

	answer, err := testClient(srv.URL).Ask(context.Background(), "How many vacancies?", "Company: Marina Heights")
	require.NoError(t, err)
	assert.Equal(t, "You have 3 vacant units.", answer)
	assert.Contains(t, received.Messages[0].Content, "Company: Marina Heights")
	assert.Equal(t, "How many vacancies?", received.Messages[1].Content)
}

func TestLanguageModelErrors(t *testing.T) {
	srv, _ := completionServer(t, http.StatusTooManyRequests, "")

	_, err := testClient(srv.URL).Ask(context.Background(), "hi", "")
	assert.True(t, apperr.Is(err, apperr.KindCollaborator))
	assert.Contains(t, err.Error(), "quota exceeded")

	disabled := NewOpenAIClient(&config.Config{OpenAIBaseURL: srv.URL})
	_, err = disabled.Ask(context.Background(), "hi", "")
	assert.True(t, errors.Is(err, ErrLanguageModelDisabled))
}
