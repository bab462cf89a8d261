package mockservers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// OpenAIMockServer provides a mock OpenAI-compatible chat completions API.
type OpenAIMockServer struct {
	Server   *httptest.Server
	Handlers map[string]http.HandlerFunc
	t        *testing.T

	mu       sync.Mutex
	reply    string
	status   int
	requests []map[string]interface{}
}

// NewOpenAIMockServer creates a new mock OpenAI server answering reply.
func NewOpenAIMockServer(t *testing.T, reply string) *OpenAIMockServer {
	t.Helper()

	mock := &OpenAIMockServer{
		Handlers: make(map[string]http.HandlerFunc),
		t:        t,
		reply:    reply,
		status:   http.StatusOK,
	}

	mock.SetupDefaults()

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if handler, ok := mock.Handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "unknown endpoint", "type": "invalid_request_error"},
		})
	}))

	t.Cleanup(func() {
		mock.Server.Close()
	})

	return mock
}

// URL returns the base URL to configure as the OpenAI base URL.
func (m *OpenAIMockServer) URL() string {
	return m.Server.URL
}

// FailWith makes every following completion fail with status.
func (m *OpenAIMockServer) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// Requests returns the decoded request bodies received so far.
func (m *OpenAIMockServer) Requests() []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]interface{}(nil), m.requests...)
}

// SetupDefaults sets up default response handlers.
func (m *OpenAIMockServer) SetupDefaults() {
	m.Handlers["/chat/completions"] = func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)

		m.mu.Lock()
		m.requests = append(m.requests, body)
		status, reply := m.status, m.reply
		m.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": http.StatusText(status), "type": "api_error"},
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-mock",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   body["model"],
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]string{"role": "assistant", "content": reply},
				},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}
}
