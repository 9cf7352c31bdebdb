package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadscore/internal/jurisdiction"
	"leadscore/internal/leadscoring"
	"leadscore/internal/vectorsearch"
)

type fakeScorer struct {
	lastLead    leadscoring.Lead
	lastContext string
	result      leadscoring.ScoreResult
}

func (f *fakeScorer) Score(_ context.Context, lead leadscoring.Lead, historicalContext string) leadscoring.ScoreResult {
	f.lastLead = lead
	f.lastContext = historicalContext
	out := f.result
	out.LeadID = lead.ID
	return out
}

type fakeSearcher struct {
	matches []vectorsearch.CaseMatch
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]vectorsearch.CaseMatch, error) {
	return f.matches, f.err
}

type fakeRecalibrator struct {
	results []jurisdiction.ShrinkageResult
	err     error
}

func (f *fakeRecalibrator) Run(_ context.Context) ([]jurisdiction.ShrinkageResult, error) {
	return f.results, f.err
}

type fakeModifierReader []jurisdiction.ShrinkageResult

func (f fakeModifierReader) Results() []jurisdiction.ShrinkageResult { return f }

type fakeCaseWriter struct {
	inserted []jurisdiction.CaseRecord
	err      error
}

func (f *fakeCaseWriter) InsertCase(rec jurisdiction.CaseRecord) error {
	f.inserted = append(f.inserted, rec)
	return f.err
}

type serverFixture struct {
	scorer       *fakeScorer
	searcher     *fakeSearcher
	recalibrator *fakeRecalibrator
	cases        *fakeCaseWriter
	handler      http.Handler
}

func newFixture() *serverFixture {
	f := &serverFixture{
		scorer: &fakeScorer{result: leadscoring.ScoreResult{
			RawScore:   70,
			FinalScore: 81,
			StopReason: leadscoring.StopConfidence,
		}},
		searcher: &fakeSearcher{matches: []vectorsearch.CaseMatch{
			{CaseID: "case-1", Jurisdiction: "Suffolk County", Summary: "fracture settlement"},
		}},
		recalibrator: &fakeRecalibrator{results: []jurisdiction.ShrinkageResult{
			{Jurisdiction: "Suffolk County", Modifier: 1.15},
		}},
		cases: &fakeCaseWriter{},
	}
	f.handler = NewServer(f.scorer, f.searcher, f.recalibrator,
		fakeModifierReader{{Jurisdiction: "Suffolk County", Modifier: 1.15}}, f.cases)
	return f
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestScoreLead(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodPost, "/v1/leads/score",
		`{"lead_id":"lead-9","description":"rear-end collision with fracture"}`)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result leadscoring.ScoreResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.LeadID != "lead-9" || result.FinalScore != 81 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.Contains(f.scorer.lastContext, "fracture settlement") {
		t.Fatalf("search results not handed to the scorer: %q", f.scorer.lastContext)
	}
}

func TestScoreLeadGeneratesID(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodPost, "/v1/leads/score", `{"description":"dog bite"}`)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.scorer.lastLead.ID == "" {
		t.Fatal("missing lead_id should be generated, not left blank")
	}
}

func TestScoreLeadRequiresDescription(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodPost, "/v1/leads/score", `{"lead_id":"x"}`)
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScoreLeadSearchFailureDegrades(t *testing.T) {
	f := newFixture()
	f.searcher.err = errors.New("weaviate down")
	rec := doJSON(t, f.handler, http.MethodPost, "/v1/leads/score", `{"description":"anything"}`)
	if rec.Code != 200 {
		t.Fatalf("search failure must not fail scoring, status = %d", rec.Code)
	}
	if !strings.Contains(f.scorer.lastContext, "No similar historical cases") {
		t.Fatalf("expected empty-context fallback, got %q", f.scorer.lastContext)
	}
}

func TestScoreLeadModelErrorIs502(t *testing.T) {
	f := newFixture()
	f.scorer.result = leadscoring.ScoreResult{StopReason: leadscoring.StopModelError}
	rec := doJSON(t, f.handler, http.MethodPost, "/v1/leads/score", `{"description":"anything"}`)
	if rec.Code != 502 {
		t.Fatalf("status = %d, want 502 for model failure", rec.Code)
	}
}

func TestModifiersEndpoint(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodGet, "/v1/jurisdictions/modifiers", "")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Modifiers []jurisdiction.ShrinkageResult `json:"modifiers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Modifiers) != 1 || payload.Modifiers[0].Jurisdiction != "Suffolk County" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRecalibrateEndpoint(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodPost, "/v1/jurisdictions/recalibrate", "")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"jurisdictions":1`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	f.recalibrator.err = errors.New("store locked")
	rec = doJSON(t, f.handler, http.MethodPost, "/v1/jurisdictions/recalibrate", "")
	if rec.Code != 500 {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestCasesEndpoint(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodPost, "/v1/cases",
		`{"case_id":"case-5","jurisdiction":"Nassau County","settlement_value":"$50,000","incident_date":"2024-02-01"}`)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(f.cases.inserted) != 1 || f.cases.inserted[0].Jurisdiction != "Nassau County" {
		t.Fatalf("case not stored: %+v", f.cases.inserted)
	}

	rec = doJSON(t, f.handler, http.MethodPost, "/v1/cases", `{"jurisdiction":"Queens County"}`)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.cases.inserted[1].CaseID == "" {
		t.Fatal("missing case_id should be generated")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture()
	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/v1/leads/score"},
		{http.MethodPost, "/v1/jurisdictions/modifiers"},
		{http.MethodGet, "/v1/jurisdictions/recalibrate"},
		{http.MethodGet, "/v1/cases"},
		{http.MethodPost, "/v1/health"},
	}
	for _, tc := range cases {
		rec := doJSON(t, f.handler, tc.method, tc.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: status = %d, want 405", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodGet, "/v1/health", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}
