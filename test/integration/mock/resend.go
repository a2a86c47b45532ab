package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ResendApi imitates the Resend REST API and records every email it receives.
type ResendApi struct {
	mu       sync.Mutex
	server   *httptest.Server
	received []map[string]any
	headers  []http.Header
	status   int
}

// NewResendApi starts the mock on a random local port.
func NewResendApi() *ResendApi {
	a := &ResendApi{status: http.StatusOK}
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
	return a
}

func (a *ResendApi) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/emails" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, _ := io.ReadAll(r.Body)
	var request map[string]any
	_ = json.Unmarshal(body, &request)
	if request == nil {
		request = map[string]any{}
	}

	a.mu.Lock()
	a.received = append(a.received, request)
	a.headers = append(a.headers, r.Header.Clone())
	index := len(a.received)
	status := a.status
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= http.StatusBadRequest {
		_, _ = fmt.Fprintf(w, `{"statusCode":%d,"name":"mock_error","message":"mock failure"}`, status)
		return
	}
	_, _ = fmt.Fprintf(w, `{"id":"mock-email-%d"}`, index)
}

// GetUrl returns the base URL to configure the Resend client with.
func (a *ResendApi) GetUrl() string {
	return a.server.URL
}

// SetStatus changes the status returned for subsequent requests.
func (a *ResendApi) SetStatus(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
}

// Received returns a copy of the request bodies seen so far.
func (a *ResendApi) Received() []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]map[string]any, len(a.received))
	copy(out, a.received)
	return out
}

// ReceivedFor returns the bodies addressed to the given recipient.
func (a *ResendApi) ReceivedFor(recipient string) []map[string]any {
	var out []map[string]any
	for _, body := range a.Received() {
		to, _ := body["to"].([]any)
		for _, addr := range to {
			if addr == recipient {
				out = append(out, body)
				break
			}
		}
	}
	return out
}

// GetRequestHeaders returns the headers of the index-th request.
func (a *ResendApi) GetRequestHeaders(index int) http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.headers) {
		return nil
	}
	return a.headers[index]
}

// Clear forgets recorded requests and restores the default status.
func (a *ResendApi) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = nil
	a.headers = nil
	a.status = http.StatusOK
}

// Close shuts the server down.
func (a *ResendApi) Close() {
	a.server.Close()
}
