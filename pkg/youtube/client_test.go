package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"
)

type scriptedResponse struct {
	status int
	body   string
}

// scriptedServer replays per-path response sequences and counts calls.
type scriptedServer struct {
	t         *testing.T
	responses map[string][]scriptedResponse
	calls     map[string]int
}

func newScriptedServer(t *testing.T, responses map[string][]scriptedResponse) (*scriptedServer, *httptest.Server) {
	s := &scriptedServer{t: t, responses: responses, calls: make(map[string]int)}
	return s, httptest.NewServer(s)
}

func (s *scriptedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	endpoint := path.Base(r.URL.Path)
	queue, ok := s.responses[endpoint]
	if !ok {
		s.t.Errorf("unexpected request to %s", endpoint)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	idx := s.calls[endpoint]
	s.calls[endpoint]++
	if idx >= len(queue) {
		s.t.Errorf("too many requests to %s", endpoint)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp := queue[idx]
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func newTestClient(baseURL string, maxRetries int) *Client {
	return New(Options{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		MaxRetries: maxRetries,
	})
}

func TestListVideosFetchesThroughUploadsPlaylist(t *testing.T) {
	_, server := newScriptedServer(t, map[string][]scriptedResponse{
		"channels": {
			{200, `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UPLOADS123"}}}]}`},
		},
		"playlistItems": {
			{200, `{"items":[{"contentDetails":{"videoId":"vid1"}},{"contentDetails":{"videoId":"vid2"}}],"nextPageToken":"TOKEN"}`},
		},
		"videos": {
			{200, `{"items":[{"id":"vid1","snippet":{"title":"Video 1"}},{"id":"vid2","snippet":{"title":"Video 2"}}]}`},
		},
	})
	defer server.Close()

	client := newTestClient(server.URL, 2)
	page, err := client.ListVideos(context.Background(), "UC123", "")
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}

	if len(page.Items) != 2 || page.Items[0].ID != "vid1" || page.Items[1].ID != "vid2" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if page.NextPageToken != "TOKEN" {
		t.Fatalf("expected next page token TOKEN, got %q", page.NextPageToken)
	}
	if len(page.PlaylistItems) != 2 {
		t.Fatalf("expected playlist page echo, got %d items", len(page.PlaylistItems))
	}
	if page.Items[0].Snippet.Title != "Video 1" {
		t.Fatalf("unexpected snippet: %+v", page.Items[0].Snippet)
	}
	if len(page.Items[0].Raw) == 0 {
		t.Fatal("expected raw payload to be retained")
	}
}

func TestListVideosCachesUploadsPlaylist(t *testing.T) {
	script, server := newScriptedServer(t, map[string][]scriptedResponse{
		"channels": {
			{200, `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UPLOADS123"}}}]}`},
		},
		"playlistItems": {
			{200, `{"items":[]}`},
			{200, `{"items":[]}`},
		},
	})
	defer server.Close()

	client := newTestClient(server.URL, 2)
	for i := 0; i < 2; i++ {
		if _, err := client.ListVideos(context.Background(), "UC123", ""); err != nil {
			t.Fatalf("ListVideos call %d failed: %v", i, err)
		}
	}

	if script.calls["channels"] != 1 {
		t.Fatalf("expected a single channel resolution, got %d", script.calls["channels"])
	}
}

func TestListVideosChannelNotFound(t *testing.T) {
	_, server := newScriptedServer(t, map[string][]scriptedResponse{
		"channels": {{200, `{"items":[]}`}},
	})
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.ListVideos(context.Background(), "UCmissing", "")
	if !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}
}

func TestListCommentThreadsRetriesOnServerError(t *testing.T) {
	script, server := newScriptedServer(t, map[string][]scriptedResponse{
		"commentThreads": {
			{500, `{"error":"server"}`},
			{200, `{"items":[{"id":"c1"}]}`},
		},
	})
	defer server.Close()

	client := newTestClient(server.URL, 2)
	page, err := client.ListCommentThreads(context.Background(), "vid1", "")
	if err != nil {
		t.Fatalf("ListCommentThreads failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected one comment item, got %d", len(page.Items))
	}
	if script.calls["commentThreads"] != 2 {
		t.Fatalf("expected 2 attempts, got %d", script.calls["commentThreads"])
	}
	if len(page.Raw) == 0 {
		t.Fatal("expected raw page body to be retained")
	}
}

func TestRequestRetryBudgetIsTotalAttempts(t *testing.T) {
	// With MaxRetries=2, two consecutive 5xx exhaust the budget even
	// though a third attempt would have succeeded.
	script, server := newScriptedServer(t, map[string][]scriptedResponse{
		"commentThreads": {
			{500, `{"error":"server"}`},
			{500, `{"error":"server"}`},
			{200, `{"items":[{"id":"c1"}]}`},
		},
	})
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.ListCommentThreads(context.Background(), "vid1", "")

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Attempts != 2 {
		t.Fatalf("expected 2 attempts recorded, got %d", upstreamErr.Attempts)
	}
	if script.calls["commentThreads"] != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", script.calls["commentThreads"])
	}
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	script, server := newScriptedServer(t, map[string][]scriptedResponse{
		"commentThreads": {{403, `{"error":"forbidden"}`}},
	})
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.ListCommentThreads(context.Background(), "vid1", "")

	var invalidErr *InvalidRequestError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidRequestError, got %v", err)
	}
	if invalidErr.StatusCode != 403 {
		t.Fatalf("expected status 403, got %d", invalidErr.StatusCode)
	}
	if script.calls["commentThreads"] != 1 {
		t.Fatalf("expected zero retries, got %d requests", script.calls["commentThreads"])
	}
}

func TestRequestNotFound(t *testing.T) {
	_, server := newScriptedServer(t, map[string][]scriptedResponse{
		"commentThreads": {{404, `{"error":"missing"}`}},
	})
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.ListCommentThreads(context.Background(), "vidgone", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMalformedResponseIsProtocolError(t *testing.T) {
	_, server := newScriptedServer(t, map[string][]scriptedResponse{
		"commentThreads": {{200, `{"items": [broken`}},
	})
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.ListCommentThreads(context.Background(), "vid1", "")

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}
