package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/tubeharvest/platform/pkg/common/logger"
	"github.com/tubeharvest/platform/pkg/index"
	"github.com/tubeharvest/platform/pkg/report"
	"github.com/tubeharvest/platform/pkg/youtube"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type publishedEvent struct {
	eventType string
	data      map[string]interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{eventType: eventType, data: data})
	return nil
}

func newTestRouter(fetch, process *fakePublisher, idx index.Index) *mux.Router {
	handler := NewHandler(fetch, process, report.NewService(idx), 1<<20)
	router := mux.NewRouter()
	handler.Register(router)
	return router
}

func TestHandleFetchQueuesJob(t *testing.T) {
	fetch := &fakePublisher{}
	router := newTestRouter(fetch, &fakePublisher{}, index.NewMemoryIndex())

	req := httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(`{"channel_id":"UC123","force":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(fetch.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(fetch.events))
	}
	if fetch.events[0].data["channel_id"] != "UC123" {
		t.Fatalf("unexpected event payload: %v", fetch.events[0].data)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["queued"] != true || body["channel_id"] != "UC123" {
		t.Fatalf("unexpected response: %v", body)
	}
}

func TestHandleFetchRequiresChannelID(t *testing.T) {
	fetch := &fakePublisher{}
	router := newTestRouter(fetch, &fakePublisher{}, index.NewMemoryIndex())

	req := httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(`{"force":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(fetch.events) != 0 {
		t.Fatal("nothing must be enqueued for an invalid request")
	}
}

func TestHandleProcessRequiresVideoID(t *testing.T) {
	router := newTestRouter(&fakePublisher{}, &fakePublisher{}, index.NewMemoryIndex())

	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleReportReturnsIndexedVideos(t *testing.T) {
	idx := index.NewMemoryIndex()
	storedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"v1", "v2", "v3"} {
		video := youtube.Video{
			ID:      id,
			Snippet: youtube.Snippet{Title: "T" + id, PublishedAt: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)},
		}
		if err := idx.UpsertVideo(context.Background(), "UC123", video, "run1", storedAt); err != nil {
			t.Fatalf("seeding index: %v", err)
		}
	}

	router := newTestRouter(&fakePublisher{}, &fakePublisher{}, idx)

	req := httptest.NewRequest(http.MethodGet, "/report?channel_id=UC123&limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Items []index.VideoRecord `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(body.Items))
	}
	if body.Items[0].VideoID != "v3" || body.Items[1].VideoID != "v2" {
		t.Fatalf("unexpected order: %s, %s", body.Items[0].VideoID, body.Items[1].VideoID)
	}
}

func TestHandleReportRejectsBadLimit(t *testing.T) {
	router := newTestRouter(&fakePublisher{}, &fakePublisher{}, index.NewMemoryIndex())

	req := httptest.NewRequest(http.MethodGet, "/report?limit=zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
