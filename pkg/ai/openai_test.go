package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-intel/pkg/config"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:          "test-key",
		BaseURL:         ts.URL,
		CompletionModel: "gpt-4-turbo",
		EmbeddingModel:  "text-embedding-3-small",
		EmbeddingDims:   384,
		Temperature:     0.3,
		MaxTokens:       2000,
	})
}

func TestChatCompletion_Success(t *testing.T) {
	var gotReq ChatRequest
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the answer"}},
			},
		})
	})

	content, err := client.ChatCompletion(context.Background(), []Message{
		{Role: "user", Content: "question"},
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", content)
	assert.Equal(t, "gpt-4-turbo", gotReq.Model)
	assert.Equal(t, 0.3, gotReq.Temperature)
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	_, err := client.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "q"}})
	assert.Error(t, err)
}

func TestChatCompletion_ServerError(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "q"}})
	assert.Error(t, err)
}

func TestCreateEmbedding_Success(t *testing.T) {
	var gotReq EmbeddingRequest
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		vector := make([]float32, 384)
		vector[0] = 0.5
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": vector}},
		})
	})

	vector, err := client.CreateEmbedding(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vector, 384)
	assert.Equal(t, float32(0.5), vector[0])
	assert.Equal(t, 384, gotReq.Dimensions)
	assert.Equal(t, []string{"some text"}, gotReq.Input)
}

func TestCreateEmbedding_EmptyData(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	})

	_, err := client.CreateEmbedding(context.Background(), "some text")
	assert.Error(t, err)
}
