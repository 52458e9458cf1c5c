// Package proxy implements a recording HTTP proxy: POST requests of the
// form /{url-escaped upstream base}/{path} are forwarded to the upstream
// and the full exchange is persisted as interaction records. Pointing an
// SDK's base URL at the proxy records its traffic without touching the
// application.
package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/afero"

	"github.com/manishiitg/llm-recorder-go/interfaces"
	"github.com/manishiitg/llm-recorder-go/internal/store"
)

// Server forwards and records upstream LLM traffic.
type Server struct {
	store  *store.Store
	client *http.Client
	logger interfaces.Logger
}

type recordedRequest struct {
	Method string          `json:"method"`
	URL    string          `json:"url"`
	Header http.Header     `json:"headers,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

type recordedResponse struct {
	StatusCode int             `json:"status_code"`
	Header     http.Header     `json:"headers,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// New creates a recording proxy persisting to dir.
func New(dir string, logger interfaces.Logger) *Server {
	return &Server{
		store:  store.New(afero.NewOsFs(), dir, logger),
		client: &http.Client{},
		logger: logger,
	}
}

// Reset clears previously recorded traffic, preparing the directory for a
// fresh run.
func (s *Server) Reset() error {
	return s.store.Clear()
}

// Handler returns the proxy's HTTP handler.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

// ListenAndServe runs the proxy on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Infof("recording proxy listening on %s, saving to %s", addr, s.store.Dir())
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST is supported", http.StatusMethodNotAllowed)
		return
	}

	// EscapedPath keeps the %2F escapes inside the upstream segment intact;
	// URL.Path would have decoded them away.
	upstream, err := upstreamURL(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, upstream, strings.NewReader(string(body)))
	if err != nil {
		http.Error(w, "failed to build upstream request", http.StatusBadRequest)
		return
	}
	// Host never appears in r.Header (net/http keeps it in r.Host);
	// Content-Length is recomputed for the rebuilt body.
	for k, v := range r.Header {
		if k == "Content-Length" {
			continue
		}
		req.Header[k] = v
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Errorf("failed to forward request to %s: %v", upstream, err)
		writeError(w, http.StatusBadGateway, "failed to forward request")
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Errorf("failed to read upstream response: %v", err)
		writeError(w, http.StatusBadGateway, "failed to read upstream response")
		return
	}

	s.record(r, upstream, body, resp, respBody)

	for k, v := range resp.Header {
		if k == "Content-Length" || k == "Content-Encoding" {
			continue
		}
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(respBody); err != nil {
		s.logger.Errorf("failed to write response to client: %v", err)
	}
}

// record persists the exchange. Recording failures do not fail the proxied
// call; the client still gets its response.
func (s *Server) record(r *http.Request, upstream string, body []byte, resp *http.Response, respBody []byte) {
	request, err := json.Marshal(recordedRequest{
		Method: r.Method,
		URL:    upstream,
		Header: r.Header,
		Body:   jsonBody(body),
	})
	if err != nil {
		s.logger.Errorf("failed to marshal proxied request: %v", err)
		return
	}
	response, err := json.Marshal(recordedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       jsonBody(respBody),
	})
	if err != nil {
		s.logger.Errorf("failed to marshal proxied response: %v", err)
		return
	}
	index, err := s.store.Append(store.Interaction{Request: request, Response: response})
	if err != nil {
		s.logger.Errorf("failed to record proxied exchange: %v", err)
		return
	}
	s.logger.Infof("recorded exchange %d: %s", index, upstream)
}

// upstreamURL decodes /{escaped-base}/{rest} into the real target URL.
func upstreamURL(path string) (string, error) {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid URL format, want /{escaped-upstream}/{path}")
	}
	base, err := url.PathUnescape(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid upstream encoding: %w", err)
	}
	return base + "/" + parts[1], nil
}

// jsonBody keeps JSON payloads readable on disk; anything else is stored as
// a JSON string.
func jsonBody(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": detail})
}
