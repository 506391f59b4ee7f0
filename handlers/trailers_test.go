package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marquee/models"
	"marquee/services/trailers"
)

func TestTrailersHandler_Get(t *testing.T) {
	fake := &fakeGateway{videoResp: models.VideoRef{VideoID: "n9xhJrPXop4"}}
	handler := NewTrailersHandler(trailers.NewService(fake, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/trailers?title=Dune&releaseDate=2021-09-15&id=438631", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if fake.lastVideoQuery != "Dune trailer 2021" {
		t.Fatalf("unexpected video query %q", fake.lastVideoQuery)
	}

	var state models.TrailerState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if state.Status != models.TrailerResolved || state.URL != "https://www.youtube.com/embed/n9xhJrPXop4" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.TitleID != 438631 {
		t.Fatalf("expected title id 438631, got %d", state.TitleID)
	}
}

func TestTrailersHandler_GetNotFoundIsStillOK(t *testing.T) {
	handler := NewTrailersHandler(trailers.NewService(&fakeGateway{}, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/trailers?title=Obscure", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var state models.TrailerState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if state.Status != models.TrailerFailed || state.Reason != "No trailer found" {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestTrailersHandler_GetValidation(t *testing.T) {
	handler := NewTrailersHandler(trailers.NewService(&fakeGateway{}, 1))

	for _, target := range []string{"/api/trailers", "/api/trailers?title=Dune&id=abc"} {
		rec := httptest.NewRecorder()
		handler.Get(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", target, rec.Code)
		}
	}
}

type fakeResolver struct {
	batches [][]models.Title
}

func (f *fakeResolver) Resolve(_ context.Context, title models.Title) models.TrailerState {
	return models.PendingTrailer(title.ID)
}

func (f *fakeResolver) ResolveMany(_ context.Context, titles []models.Title) []models.TrailerState {
	f.batches = append(f.batches, titles)
	states := make([]models.TrailerState, len(titles))
	for i, title := range titles {
		states[i] = models.FailedTrailer(title.ID, models.TrailerNotFound, models.TrailerNotFoundReason)
	}
	return states
}

func TestTrailersHandler_Batch(t *testing.T) {
	fake := &fakeResolver{}
	handler := NewTrailersHandler(fake)

	body := `[{"id":1,"title":"Alien"},{"id":2,"title":"Heat"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/trailers/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Batch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(fake.batches) != 1 || len(fake.batches[0]) != 2 {
		t.Fatalf("expected one batch of two titles, got %+v", fake.batches)
	}

	var states []models.TrailerState
	if err := json.NewDecoder(rec.Body).Decode(&states); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(states) != 2 || states[1].TitleID != 2 {
		t.Fatalf("unexpected states: %+v", states)
	}
}

func TestTrailersHandler_BatchEmptyAndInvalid(t *testing.T) {
	fake := &fakeResolver{}
	handler := NewTrailersHandler(fake)

	rec := httptest.NewRecorder()
	handler.Batch(rec, httptest.NewRequest(http.MethodPost, "/api/trailers/batch", strings.NewReader(`[]`)))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %d %s", rec.Code, rec.Body.String())
	}
	if len(fake.batches) != 0 {
		t.Fatalf("expected no resolver calls for empty batch")
	}

	rec = httptest.NewRecorder()
	handler.Batch(rec, httptest.NewRequest(http.MethodPost, "/api/trailers/batch", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
