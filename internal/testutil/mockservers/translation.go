package mockservers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// TranslationMockServer serves the MyMemory and LibreTranslate APIs from a
// phrase table keyed by "<code>|<text>".
type TranslationMockServer struct {
	Server   *httptest.Server
	Handlers map[string]http.HandlerFunc
	t        *testing.T

	mu      sync.Mutex
	phrases map[string]string
	hits    map[string]int
}

// NewTranslationMockServer creates a new mock translation server.
func NewTranslationMockServer(t *testing.T) *TranslationMockServer {
	t.Helper()

	mock := &TranslationMockServer{
		Handlers: make(map[string]http.HandlerFunc),
		t:        t,
		phrases:  make(map[string]string),
		hits:     make(map[string]int),
	}

	mock.SetupDefaults()

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		mock.mu.Lock()
		mock.hits[r.URL.Path]++
		mock.mu.Unlock()

		// Match by path
		if handler, ok := mock.Handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}))

	t.Cleanup(func() {
		mock.Server.Close()
	})

	return mock
}

// URL returns the base URL of the mock server.
func (m *TranslationMockServer) URL() string {
	return m.Server.URL
}

// AddPhrase registers a translation for text into code.
func (m *TranslationMockServer) AddPhrase(code, text, translated string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phrases[code+"|"+text] = translated
}

// Hits returns how many requests reached path.
func (m *TranslationMockServer) Hits(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

func (m *TranslationMockServer) lookup(code, text string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.phrases[code+"|"+text]
	return out, ok
}

// SetupDefaults sets up default response handlers. Unknown phrases are
// echoed back, the way the real services answer text they cannot translate.
func (m *TranslationMockServer) SetupDefaults() {
	// MyMemory
	m.Handlers["/get"] = func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pair := strings.SplitN(q.Get("langpair"), "|", 2)
		if len(pair) != 2 {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"responseStatus":  "403",
				"responseDetails": "INVALID LANGUAGE PAIR SPECIFIED",
			})
			return
		}

		text := q.Get("q")
		translated, ok := m.lookup(pair[1], text)
		if !ok {
			translated = text
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseStatus": 200,
			"responseData":   map[string]string{"translatedText": translated},
		})
	}

	// LibreTranslate
	m.Handlers["/translate"] = func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Q      string `json:"q"`
			Source string `json:"source"`
			Target string `json:"target"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
			return
		}

		translated, ok := m.lookup(req.Target, req.Q)
		if !ok {
			translated = req.Q
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": translated})
	}
}
