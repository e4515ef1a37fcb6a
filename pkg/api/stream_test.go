package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func sseHandler(t *testing.T, events []Event, hold <-chan struct{}) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer is not a flusher")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		fmt.Fprint(w, ": ping\n\n")
		for _, ev := range events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
		}
		flusher.Flush()
		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
			}
		}
	})
}

func TestStreamDeliversNamedEvents(t *testing.T) {
	want := []Event{
		{Name: "created", Data: "{}"},
		{Name: "status", Data: "{}"},
	}
	client, _ := testClient(t, sseHandler(t, want, nil))

	es, err := client.Stream(context.Background())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer es.Close()

	var got []Event
	timeout := time.After(3 * time.Second)
	for len(got) < len(want) {
		select {
		case ev, ok := <-es.Events():
			if !ok {
				t.Fatalf("stream ended after %d events, want %d", len(got), len(want))
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out after %d events", len(got))
		}
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	client, _ := testClient(t, sseHandler(t, nil, hold))

	es, err := client.Stream(context.Background())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	es.Close()
	es.Close()

	// After Close the events channel must drain and close.
	select {
	case _, ok := <-es.Events():
		if ok {
			t.Fatal("expected closed events channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel never closed")
	}
}

func TestStreamUnauthorized(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"missing token"}`))
	}))
	fired := false
	client.OnUnauthorized = func(path string) { fired = true }

	if _, err := client.Stream(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !fired {
		t.Fatal("OnUnauthorized must fire for a rejected stream open")
	}
}
