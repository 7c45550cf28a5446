package outbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
)

// ErrOffline signals that the backend was unreachable. It is the one
// transport failure that does not count against an event's retry budget:
// the batch stays pending and will be picked up by a later drain.
var ErrOffline = errors.New("backend unreachable")

// Rejection is a per-event refusal from the backend.
type Rejection struct {
	EventID string `json:"event_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// Terminal marks rejections that can never succeed (schema violations,
	// permanent conflicts); the event is dead-lettered immediately.
	Terminal bool `json:"terminal"`
}

// PushResult is the backend's per-event verdict on a pushed batch.
type PushResult struct {
	Accepted []string    `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
	// Clock is the backend's merged vector clock at the time of the push.
	// The drainer folds it back into the device clock so later events
	// carry what this device has seen of its peers.
	Clock model.VectorClock `json:"clock,omitempty"`
}

// Transport delivers event batches to the backend.
type Transport interface {
	// Push sends a batch and returns the backend's verdict. An ErrOffline
	// return means nothing was delivered; any other error means the
	// attempt counts as a failure for every event in the batch.
	Push(ctx context.Context, events []*model.Event) (*PushResult, error)
}

// HTTPTransport pushes batches to the backend sync endpoint as JSON.
type HTTPTransport struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPTransport builds a transport for the given push endpoint.
// An empty token disables the Authorization header.
func NewHTTPTransport(url, token string) *HTTPTransport {
	return &HTTPTransport{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type pushRequest struct {
	Events []*model.Event `json:"events"`
}

func (t *HTTPTransport) Push(ctx context.Context, events []*model.Event) (*PushResult, error) {
	body, err := json.Marshal(pushRequest{Events: events})
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		// A network-level failure means the device is offline; the batch
		// was never delivered and must not burn retry budget.
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrOffline, err)
		}
		return nil, fmt.Errorf("push batch: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var result PushResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &result, nil
	case resp.StatusCode >= 500:
		// Server trouble is indistinguishable from offline for our
		// purposes: retry later without burning budget.
		return nil, fmt.Errorf("%w: backend returned %s", ErrOffline, resp.Status)
	default:
		return nil, fmt.Errorf("push batch: backend returned %s", resp.Status)
	}
}
