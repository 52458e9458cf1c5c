// Package httpreplay provides an http.RoundTripper that records and replays
// HTTP exchanges. Installing it as an SDK's HTTP client makes any provider
// replayable without a per-provider adapter.
package httpreplay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	llmrecorder "github.com/manishiitg/llm-recorder-go"
)

// Transport wraps a base RoundTripper with record/replay. Requests and
// responses are stored with their bodies as readable JSON when the body is
// JSON, base64 otherwise.
type Transport struct {
	base http.RoundTripper
	rec  *llmrecorder.Recorder
}

type recordedRequest struct {
	Method     string          `json:"method"`
	URL        string          `json:"url"`
	Header     http.Header     `json:"headers,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	BodyBase64 string          `json:"body_base64,omitempty"`
}

type recordedResponse struct {
	StatusCode int             `json:"status_code"`
	Header     http.Header     `json:"headers,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	BodyBase64 string          `json:"body_base64,omitempty"`
}

// NewTransport builds a recording transport over replayDir. A nil base
// defaults to http.DefaultTransport.
func NewTransport(base http.RoundTripper, replayDir string, opts ...llmrecorder.Option) (*Transport, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{base: base}
	rec, err := llmrecorder.New(t.liveCall, replayDir, opts...)
	if err != nil {
		return nil, err
	}
	t.rec = rec
	return t, nil
}

// Recorder exposes the underlying recorder, e.g. to check replay progress.
func (t *Transport) Recorder() *llmrecorder.Recorder {
	return t.rec
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		// The live path rebuilds the request from its recorded form, but the
		// original must stay usable for redirects and error reporting.
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	recorded := recordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header,
	}
	recorded.Body, recorded.BodyBase64 = encodeBody(body)

	request, err := json.Marshal(&recorded)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := t.rec.Completion(req.Context(), request)
	if err != nil {
		return nil, err
	}

	var stored recordedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recorded response: %w", err)
	}
	respBody, err := decodeBody(stored.Body, stored.BodyBase64)
	if err != nil {
		return nil, err
	}

	header := make(http.Header, len(stored.Header))
	for k, v := range stored.Header {
		header[k] = v
	}
	// Bodies are stored decoded; stale framing headers would corrupt reads.
	header.Del("Content-Encoding")
	header.Del("Content-Length")

	return &http.Response{
		StatusCode:    stored.StatusCode,
		Status:        http.StatusText(stored.StatusCode),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(respBody)),
		ContentLength: int64(len(respBody)),
		Request:       req,
	}, nil
}

func (t *Transport) liveCall(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	var recorded recordedRequest
	if err := json.Unmarshal(request, &recorded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	body, err := decodeBody(recorded.Body, recorded.BodyBase64)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, recorded.Method, recorded.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range recorded.Header {
		req.Header[k] = v
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	stored := recordedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}
	stored.Body, stored.BodyBase64 = encodeBody(respBody)

	raw, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return raw, nil
}

// encodeBody stores JSON bodies as-is for hand-editability and anything
// else as base64.
func encodeBody(body []byte) (json.RawMessage, string) {
	if len(body) == 0 {
		return nil, ""
	}
	if json.Valid(body) {
		return json.RawMessage(body), ""
	}
	return nil, base64.StdEncoding.EncodeToString(body)
}

func decodeBody(body json.RawMessage, bodyBase64 string) ([]byte, error) {
	if bodyBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(bodyBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode body: %w", err)
		}
		return decoded, nil
	}
	return []byte(body), nil
}
