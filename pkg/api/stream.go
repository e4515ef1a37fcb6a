package api

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"sync"
)

// Event is a named change notification from the push channel. Events
// carry no payload; the reaction is always a re-fetch.
type Event struct {
	Name string
	Data string
}

// EventStream is the one long-lived resource of this layer. Whoever
// opens it owns it and must Close it on teardown; Close is idempotent
// and safe to call while the read loop is running.
type EventStream struct {
	events chan Event
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Stream opens the persistent server-push channel. The returned stream's
// Events channel is closed once the connection ends for any reason.
func (c *Client) Stream(ctx context.Context) (*EventStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/events", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.setHeaders(req, false)

	resp, err := c.stream.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		defer resp.Body.Close()
		cancel()
		return nil, c.unauthorized("/api/events", resp.Body)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		cancel()
		return nil, apiErrorFrom(resp.StatusCode, resp.Body)
	}

	es := &EventStream{
		events: make(chan Event, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go es.read(resp)
	return es, nil
}

func (es *EventStream) Events() <-chan Event {
	return es.events
}

// Close tears the channel down. Errors from the underlying transport are
// tolerated; the owner is going away anyway.
func (es *EventStream) Close() {
	es.once.Do(es.cancel)
	<-es.done
}

func (es *EventStream) read(resp *http.Response) {
	defer close(es.done)
	defer close(es.events)
	defer resp.Body.Close()

	var name string
	var data strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" {
				// Drop on a slow consumer rather than block the read
				// loop; a dropped signal coalesces into the next one.
				select {
				case es.events <- Event{Name: name, Data: data.String()}:
				default:
				}
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
}
