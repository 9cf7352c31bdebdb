package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"leadscore/internal/jurisdiction"
	"leadscore/internal/leadscoring"
	"leadscore/internal/vectorsearch"
)

const defaultContextTopK = 5

// LeadScorer runs one scoring session per request.
type LeadScorer interface {
	Score(ctx context.Context, lead leadscoring.Lead, historicalContext string) leadscoring.ScoreResult
}

// Recalibrator recomputes jurisdiction modifiers from the case corpus.
type Recalibrator interface {
	Run(ctx context.Context) ([]jurisdiction.ShrinkageResult, error)
}

// ModifierReader exposes the current calibration for inspection.
type ModifierReader interface {
	Results() []jurisdiction.ShrinkageResult
}

// CaseWriter accepts new historical cases into the corpus.
type CaseWriter interface {
	InsertCase(rec jurisdiction.CaseRecord) error
}

type Server struct {
	scorer       LeadScorer
	searcher     vectorsearch.Searcher
	recalibrator Recalibrator
	modifiers    ModifierReader
	cases        CaseWriter
	contextTopK  int
}

func NewServer(scorer LeadScorer, searcher vectorsearch.Searcher, recalibrator Recalibrator, modifiers ModifierReader, cases CaseWriter) http.Handler {
	s := &Server{
		scorer:       scorer,
		searcher:     searcher,
		recalibrator: recalibrator,
		modifiers:    modifiers,
		cases:        cases,
		contextTopK:  defaultContextTopK,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/leads/score", s.handleScoreLead)
	mux.HandleFunc("/v1/jurisdictions/modifiers", s.handleModifiers)
	mux.HandleFunc("/v1/jurisdictions/recalibrate", s.handleRecalibrate)
	mux.HandleFunc("/v1/cases", s.handleCases)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleScoreLead(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, 400, "unreadable body")
		return
	}
	var req struct {
		LeadID      string `json:"lead_id"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, 400, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, 400, "description is required")
		return
	}
	if strings.TrimSpace(req.LeadID) == "" {
		req.LeadID = uuid.NewString()
	}

	historicalContext := s.historicalContext(r.Context(), req.Description)

	lead := leadscoring.Lead{ID: req.LeadID, Description: req.Description}
	result := s.scorer.Score(r.Context(), lead, historicalContext)

	status := 200
	if result.StopReason == leadscoring.StopModelError {
		status = 502
	}
	writeJSON(w, status, result)
}

// historicalContext is best effort: a search failure degrades to an
// empty context block rather than failing the scoring request.
func (s *Server) historicalContext(ctx context.Context, description string) string {
	if s.searcher == nil {
		return vectorsearch.FormatContext(nil)
	}
	matches, err := s.searcher.Search(ctx, description, s.contextTopK)
	if err != nil {
		log.Printf("httpapi: historical context search failed: %v", err)
		return vectorsearch.FormatContext(nil)
	}
	return vectorsearch.FormatContext(matches)
}

func (s *Server) handleModifiers(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{"modifiers": s.modifiers.Results()})
}

func (s *Server) handleRecalibrate(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	results, err := s.recalibrator.Run(r.Context())
	if err != nil {
		writeError(w, 500, "recalibration failed: "+err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "jurisdictions": len(results), "modifiers": results})
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, 400, "unreadable body")
		return
	}
	var rec jurisdiction.CaseRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		writeError(w, 400, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(rec.CaseID) == "" {
		rec.CaseID = uuid.NewString()
	}
	if err := s.cases.InsertCase(rec); err != nil {
		writeError(w, 500, "insert failed: "+err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "case_id": rec.CaseID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}
