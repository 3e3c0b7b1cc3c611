package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mutgate-hq/mutgate/internal/db"
	"github.com/mutgate-hq/mutgate/pkg/model"
)

func seedRun(t *testing.T, store db.Store, started time.Time, score float64, passed bool) string {
	t.Helper()

	runID := uuid.New().String()
	summary := &model.RunSummary{
		RunID:            runID,
		StartedAt:        started,
		Profile:          "stable",
		CommitSHA:        "4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d0e1f2a3b",
		Branch:           "main",
		TotalMutants:     10,
		KilledMutants:    8,
		SurvivedMutants:  2,
		MutationScorePct: score,
		HighRiskScorePct: 100,
		RuntimeSeconds:   9.5,
		Passed:           passed,
		Survivors: []model.SurvivingMutant{
			{File: "src/clamp.py", Line: 2, Kind: "equality", Original: "==", Replacement: "!="},
		},
	}
	if err := store.SaveRun(context.Background(), summary); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	return runID
}

func TestListRuns(t *testing.T) {
	server, store := newTestServer(t)

	base := time.Now().UTC().Truncate(time.Second)
	seedRun(t, store, base.Add(-time.Hour), 60, false)
	newest := seedRun(t, store, base, 90, true)

	req := httptest.NewRequest("GET", "/api/v1/runs", nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("listRuns returned status %d, want %d", rr.Code, http.StatusOK)
	}

	var items []RunListItem
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("listRuns returned %d items, want 2", len(items))
	}
	if items[0].RunID != newest {
		t.Errorf("first item = %s, want newest run %s", items[0].RunID, newest)
	}
	if items[0].Quality != "good" {
		t.Errorf("Quality = %s, want good", items[0].Quality)
	}
	if items[1].Passed {
		t.Error("older run Passed = true, want false")
	}
}

func TestListRuns_Limit(t *testing.T) {
	server, store := newTestServer(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		seedRun(t, store, base.Add(time.Duration(i)*time.Minute), 80, true)
	}

	req := httptest.NewRequest("GET", "/api/v1/runs?limit=1", nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	var items []RunListItem
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("listRuns with limit=1 returned %d items, want 1", len(items))
	}
}

func TestGetRun(t *testing.T) {
	server, store := newTestServer(t)

	runID := seedRun(t, store, time.Now().UTC().Truncate(time.Second), 80, true)

	req := httptest.NewRequest("GET", "/api/v1/runs/"+runID, nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("getRun returned status %d, want %d", rr.Code, http.StatusOK)
	}

	var rec model.RunRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if rec.RunID != runID {
		t.Errorf("RunID = %s, want %s", rec.RunID, runID)
	}
	if len(rec.Survivors) != 1 || rec.Survivors[0].File != "src/clamp.py" {
		t.Errorf("Survivors = %+v, want full survivor detail", rec.Survivors)
	}
}

func TestGetRun_InvalidID(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/runs/not-a-uuid", nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("getRun returned status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/runs/"+uuid.New().String(), nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("getRun returned status %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestLatestRun(t *testing.T) {
	server, store := newTestServer(t)

	base := time.Now().UTC().Truncate(time.Second)
	seedRun(t, store, base.Add(-time.Hour), 70, true)
	newest := seedRun(t, store, base, 85, true)

	req := httptest.NewRequest("GET", "/api/v1/runs/latest", nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("latestRun returned status %d, want %d", rr.Code, http.StatusOK)
	}

	var rec model.RunRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if rec.RunID != newest {
		t.Errorf("RunID = %s, want %s", rec.RunID, newest)
	}
}

func TestLatestRun_EmptyHistory(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/runs/latest", nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("latestRun returned status %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetStats(t *testing.T) {
	server, store := newTestServer(t)

	base := time.Now().UTC().Truncate(time.Second)
	seedRun(t, store, base.Add(-time.Hour), 60, false)
	seedRun(t, store, base, 100, true)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("getStats returned status %d, want %d", rr.Code, http.StatusOK)
	}

	var stats db.RunStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if stats.TotalRuns != 2 {
		t.Errorf("TotalRuns = %d, want 2", stats.TotalRuns)
	}
	if stats.PassedRuns != 1 {
		t.Errorf("PassedRuns = %d, want 1", stats.PassedRuns)
	}
	if stats.AvgScore != 80 {
		t.Errorf("AvgScore = %v, want 80", stats.AvgScore)
	}
}
