// Package server provides the JSON HTTP handlers for the quiz service.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/julienduc-econ/finquiz/internal/attempt"
	"github.com/julienduc-econ/finquiz/internal/leaderboard"
	"github.com/julienduc-econ/finquiz/internal/question"
	"github.com/julienduc-econ/finquiz/internal/quiz"
)

// serverSession pairs a quiz run with the identity it will be recorded
// under.
type serverSession struct {
	session  *quiz.Session
	identity string
}

// QuizHandler serves quiz sessions and the leaderboard over HTTP.
type QuizHandler struct {
	generator     quiz.Generator
	store         attempt.Store
	tolerance     quiz.TolerancePolicy
	questionCount int

	mu       sync.Mutex
	sessions map[int64]*serverSession
	nextID   int64
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(generator quiz.Generator, store attempt.Store, tolerance quiz.TolerancePolicy, questionCount int) *QuizHandler {
	return &QuizHandler{
		generator:     generator,
		store:         store,
		tolerance:     tolerance,
		questionCount: questionCount,
		sessions:      make(map[int64]*serverSession),
		nextID:        1,
	}
}

// Register mounts the handler routes on mux.
func (h *QuizHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/categories", h.handleCategories)
	mux.HandleFunc("POST /api/v1/sessions", h.handleStartSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/answers", h.handleSubmitAnswer)
	mux.HandleFunc("POST /api/v1/sessions/{id}/save", h.handleSaveSession)
	mux.HandleFunc("GET /api/v1/leaderboard", h.handleLeaderboard)
}

type questionPayload struct {
	Index     int    `json:"index"`
	Count     int    `json:"count"`
	Category  string `json:"category"`
	Statement string `json:"statement"`
	Unit      string `json:"unit"`
}

type startSessionRequest struct {
	Category  string `json:"category"`
	Challenge bool   `json:"challenge"`
	Identity  string `json:"identity"`
}

type startSessionResponse struct {
	SessionID int64           `json:"session_id"`
	Question  questionPayload `json:"question"`
}

func (h *QuizHandler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	category := question.Category(req.Category)
	if req.Category == "" {
		category = question.CategoryAll
	}
	if !isKnownCategory(category) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", req.Category))
		return
	}
	if req.Challenge && req.Identity == "" {
		writeError(w, http.StatusBadRequest, "identity is required for a challenge session")
		return
	}

	session := quiz.NewSession(h.tolerance)
	if err := session.Start(h.generator, category, req.Challenge, h.questionCount); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("start session: %v", err))
		return
	}

	h.mu.Lock()
	sessionID := h.nextID
	h.nextID++
	h.sessions[sessionID] = &serverSession{session: session, identity: req.Identity}
	h.mu.Unlock()

	current, err := session.Current()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("current question: %v", err))
		return
	}
	writeJSON(w, http.StatusCreated, startSessionResponse{
		SessionID: sessionID,
		Question:  payloadFor(session, current),
	})
}

type submitAnswerRequest struct {
	Answer float64 `json:"answer"`
}

type finalPayload struct {
	Score          int     `json:"score"`
	Count          int     `json:"count"`
	ElapsedMinutes float64 `json:"elapsed_minutes"`
	Saved          bool    `json:"saved"`
	SaveError      string  `json:"save_error,omitempty"`
}

type submitAnswerResponse struct {
	Correct  *bool            `json:"correct,omitempty"`
	Solution *string          `json:"solution,omitempty"`
	Done     bool             `json:"done"`
	Next     *questionPayload `json:"next,omitempty"`
	Final    *finalPayload    `json:"final,omitempty"`
}

func (h *QuizHandler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.sessions[sessionID]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %d not found", sessionID))
		return
	}
	session := entry.session

	current, err := session.Current()
	if err != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("submit answer: %v", err))
		return
	}
	correct, err := session.Submit(req.Answer)
	if err != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("submit answer: %v", err))
		return
	}
	if err := session.Advance(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("advance session: %v", err))
		return
	}

	var resp submitAnswerResponse
	if !session.Challenge() {
		solution := question.FormatAmount(current.Solution, current.Unit)
		resp.Correct = &correct
		resp.Solution = &solution
	}

	if session.Phase() != quiz.PhaseCompleted {
		next, err := session.Current()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("current question: %v", err))
			return
		}
		payload := payloadFor(session, next)
		resp.Next = &payload
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Done = true
	final := finalPayload{
		Score:          session.Score(),
		Count:          session.Count(),
		ElapsedMinutes: session.ElapsedMinutes(),
	}
	if session.Challenge() {
		saved, err := session.Finalize(r.Context(), h.store, entry.identity)
		if err != nil {
			// The session stays registered so the save can be retried.
			slog.Warn("failed to save attempt", "session_id", sessionID, "error", err)
			final.SaveError = err.Error()
		}
		final.Saved = saved
	}
	if !session.Challenge() || final.Saved {
		delete(h.sessions, sessionID)
	}
	resp.Final = &final
	writeJSON(w, http.StatusOK, resp)
}

type saveSessionResponse struct {
	Saved bool `json:"saved"`
}

// handleSaveSession retries persisting a completed challenge session whose
// first save failed. The session's save-once guard makes this idempotent.
func (h *QuizHandler) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.sessions[sessionID]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %d not found", sessionID))
		return
	}

	saved, err := entry.session.Finalize(r.Context(), h.store, entry.identity)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("save attempt: %v", err))
		return
	}
	if entry.session.Saved() {
		delete(h.sessions, sessionID)
	}
	writeJSON(w, http.StatusOK, saveSessionResponse{Saved: saved})
}

type leaderboardEntryPayload struct {
	Rank           int     `json:"rank"`
	Identity       string  `json:"identity"`
	MeanScore      float64 `json:"mean_score"`
	PlayCount      int     `json:"play_count"`
	BestElapsedMin float64 `json:"best_elapsed_min"`
}

type leaderboardResponse struct {
	Category string                    `json:"category"`
	Entries  []leaderboardEntryPayload `json:"entries"`
}

func (h *QuizHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	category := question.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = question.CategoryAll
	}
	if !isKnownCategory(category) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", category))
		return
	}

	records, err := h.store.Query(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("query attempts: %v", err))
		return
	}

	entries := leaderboard.Aggregate(records)
	payload := make([]leaderboardEntryPayload, 0, len(entries))
	for i, entry := range entries {
		payload = append(payload, leaderboardEntryPayload{
			Rank:           i + 1,
			Identity:       entry.Identity,
			MeanScore:      entry.MeanScore,
			PlayCount:      entry.PlayCount,
			BestElapsedMin: entry.BestElapsedMin,
		})
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Category: string(category),
		Entries:  payload,
	})
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

func (h *QuizHandler) handleCategories(w http.ResponseWriter, _ *http.Request) {
	categories := question.Categories()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: names})
}

func payloadFor(session *quiz.Session, q question.Question) questionPayload {
	return questionPayload{
		Index:     session.Index(),
		Count:     session.Count(),
		Category:  string(q.Category),
		Statement: q.Statement,
		Unit:      string(q.Unit),
	}
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid session id %q", r.PathValue("id")))
		return 0, false
	}
	return id, true
}

func isKnownCategory(category question.Category) bool {
	for _, c := range question.Categories() {
		if c == category {
			return true
		}
	}
	return false
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
