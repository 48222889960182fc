package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"ai_email_copywriter/generator"
	"ai_email_copywriter/logger"
	"ai_email_copywriter/render"
	"ai_email_copywriter/store"
)

const llmTimeout = 60 * time.Second

// LLMFactory builds a model client. An empty apiKey means the configured
// default key.
type LLMFactory func(apiKey string) (generator.LLMClient, error)

type Server struct {
	newLLM LLMFactory
	store  store.Store
	userID string
	log    *logger.Logger
	// Sessions are process-local and lost on restart.
	sessions *sessionStore
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func New(newLLM LLMFactory, st store.Store, userID string, log *logger.Logger) (*Server, error) {
	if newLLM == nil {
		return nil, errors.New("llm factory required")
	}
	if st == nil {
		return nil, errors.New("store required")
	}
	if userID == "" {
		return nil, errors.New("user id required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		newLLM:   newLLM,
		store:    st,
		userID:   userID,
		log:      log.With("system", "server"),
		sessions: newSessionStore(),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)

	r.Post("/api/generate-email", s.handleGenerateEmail)
	r.Post("/api/generate-suggestion", s.handleGenerateSuggestion)
	r.Get("/api/user-data", s.handleUserDataGet)
	r.Post("/api/user-data", s.handleUserDataSave)
	r.Post("/api/render", s.handleRender)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleSessionCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionGet)
			r.Put("/config", s.handleSessionConfig)
			r.Post("/example", s.handleSessionExample)
			r.Post("/generate", s.handleSessionGenerate)
			r.Post("/feedback", s.handleSessionFeedback)
			r.Post("/suggest", s.handleSessionSuggest)
			r.Post("/save", s.handleSessionSave)
		})
	})
	return r
}

func (s *Server) agentFor(apiKey string) (*generator.Agent, error) {
	llm, err := s.newLLM(apiKey)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm)
}

// --- Stateless endpoints ---

type generateEmailReq struct {
	PromptData      *generator.Configuration `json:"promptData"`
	EmailCount      int                      `json:"emailCount"`
	FeedbackHistory []generator.Feedback     `json:"feedbackHistory"`
	APIKey          string                   `json:"apiKey"`
}

func (s *Server) handleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req generateEmailReq
	if !decode(w, r, &req) {
		return
	}
	if req.PromptData == nil {
		writeMessage(w, http.StatusBadRequest, "Missing required parameters")
		return
	}
	if err := req.PromptData.Validate(); err != nil {
		s.writeErr(w, err)
		return
	}
	history, err := generator.NewFeedbackLog(req.FeedbackHistory...)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	agent, err := s.agentFor(req.APIKey)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	count := min(max(req.EmailCount, generator.MinEmailCount), generator.MaxEmailCount)
	ctx, cancel := context.WithTimeout(r.Context(), llmTimeout)
	defer cancel()
	emails, err := agent.Generate(ctx, generator.BuildGenerationRequest(*req.PromptData, count, history.Entries()))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.log.Info("emails generated", "requested", count, "received", len(emails))
	writeJSON(w, emails)
}

type suggestionReq struct {
	Instruction string                   `json:"instruction"`
	Field       string                   `json:"field"`
	PromptData  *generator.Configuration `json:"promptData"`
	APIKey      string                   `json:"apiKey"`
}

type suggestionResp struct {
	Suggestion string `json:"suggestion"`
}

func (s *Server) handleGenerateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req suggestionReq
	if !decode(w, r, &req) {
		return
	}
	instruction := req.Instruction
	if instruction == "" && req.Field != "" && req.PromptData != nil {
		var err error
		if instruction, err = generator.SuggestionPromptFor(req.Field, *req.PromptData); err != nil {
			s.writeErr(w, err)
			return
		}
	}
	if instruction == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required parameters")
		return
	}
	if strings.TrimSpace(instruction) == generator.InsufficientContextInstruction {
		writeJSON(w, suggestionResp{Suggestion: generator.InsufficientContextMessage})
		return
	}

	agent, err := s.agentFor(req.APIKey)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), llmTimeout)
	defer cancel()
	suggestion, err := agent.Suggest(ctx, instruction)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, suggestionResp{Suggestion: suggestion})
}

type userDataReq struct {
	PromptData      *generator.Configuration `json:"promptData"`
	FeedbackHistory []generator.Feedback     `json:"feedbackHistory"`
}

func (s *Server) handleUserDataGet(w http.ResponseWriter, r *http.Request) {
	snap, ok, err := s.store.Load(r.Context(), s.userID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if !ok {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleUserDataSave(w http.ResponseWriter, r *http.Request) {
	var req userDataReq
	if !decode(w, r, &req) {
		return
	}
	if req.PromptData == nil || req.FeedbackHistory == nil {
		writeMessage(w, http.StatusBadRequest, "Missing required parameters")
		return
	}
	snap := store.Snapshot{PromptData: *req.PromptData, FeedbackHistory: req.FeedbackHistory}
	if err := s.store.Save(r.Context(), s.userID, snap); err != nil {
		s.writeErr(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Data saved successfully")
}

type renderReq struct {
	Email     generator.GeneratedEmail `json:"email"`
	ImageData *generator.ImageData     `json:"imageData"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderReq
	if !decode(w, r, &req) {
		return
	}
	preview, err := render.Email(req.Email, req.ImageData)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, preview)
}

// --- Session endpoints ---

type sessionCreateReq struct {
	PromptData *generator.Configuration `json:"promptData"`
	EmailCount int                      `json:"emailCount"`
	Restore    bool                     `json:"restore"`
	APIKey     string                   `json:"apiKey"`
}

type sessionResp struct {
	SessionID       string                     `json:"session_id"`
	PromptData      generator.Configuration    `json:"promptData"`
	EmailCount      int                        `json:"emailCount"`
	FeedbackHistory []generator.Feedback       `json:"feedbackHistory"`
	Emails          []generator.GeneratedEmail `json:"emails"`
	Busy            bool                       `json:"busy"`
}

func toSessionResp(sess *generator.Session) sessionResp {
	return sessionResp{
		SessionID:       sess.ID,
		PromptData:      sess.Config(),
		EmailCount:      sess.Count(),
		FeedbackHistory: sess.FeedbackHistory(),
		Emails:          sess.Emails(),
		Busy:            sess.Busy(),
	}
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	agent, err := s.agentFor(req.APIKey)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	cfg := generator.DefaultConfiguration()
	if req.PromptData != nil {
		if err := req.PromptData.Validate(); err != nil {
			s.writeErr(w, err)
			return
		}
		cfg = *req.PromptData
	}
	sess := generator.NewSession(uuid.NewString(), cfg, agent)
	if req.Restore {
		snap, ok, err := s.store.Load(r.Context(), s.userID)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		if ok {
			if err := sess.Restore(snap.PromptData, snap.FeedbackHistory); err != nil {
				s.writeErr(w, err)
				return
			}
		}
	}
	if req.EmailCount > 0 {
		sess.SetCount(req.EmailCount)
	}

	s.sessions.set(sess.ID, sess)
	s.log.Info("session created", "session_id", sess.ID, "restored", req.Restore)
	writeJSONStatus(w, http.StatusCreated, toSessionResp(sess))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*generator.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		writeMessage(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, toSessionResp(sess))
}

type sessionConfigReq struct {
	PromptData *generator.Configuration `json:"promptData"`
	EmailCount int                      `json:"emailCount"`
}

func (s *Server) handleSessionConfig(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req sessionConfigReq
	if !decode(w, r, &req) {
		return
	}
	if req.PromptData != nil {
		if err := sess.SetConfig(*req.PromptData); err != nil {
			s.writeErr(w, err)
			return
		}
	}
	if req.EmailCount > 0 {
		sess.SetCount(req.EmailCount)
	}
	writeJSON(w, toSessionResp(sess))
}

type exampleReq struct {
	Locked map[string]bool `json:"locked"`
}

func (s *Server) handleSessionExample(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req exampleReq
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	cfg := sess.Config()
	if err := cfg.ApplyExample(req.Locked); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := sess.SetConfig(cfg); err != nil {
		s.writeErr(w, err)
		return
	}
	if !req.Locked["emailCount"] {
		sess.SetCount(generator.MinEmailCount)
	}
	writeJSON(w, toSessionResp(sess))
}

func (s *Server) handleSessionGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), llmTimeout)
	defer cancel()
	emails, err := sess.Generate(ctx)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.log.Info("session generated", "session_id", sess.ID, "emails", len(emails))
	writeJSON(w, emails)
}

type feedbackResp struct {
	Count int `json:"count"`
}

func (s *Server) handleSessionFeedback(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req generator.Feedback
	if !decode(w, r, &req) {
		return
	}
	n, err := sess.AddFeedback(req)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, feedbackResp{Count: n})
}

type sessionSuggestReq struct {
	Field string `json:"field"`
}

func (s *Server) handleSessionSuggest(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req sessionSuggestReq
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), llmTimeout)
	defer cancel()
	suggestion, err := sess.Suggest(ctx, req.Field)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, suggestionResp{Suggestion: suggestion})
}

func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := store.Snapshot{PromptData: sess.Config(), FeedbackHistory: sess.FeedbackHistory()}
	if err := s.store.Save(r.Context(), s.userID, snap); err != nil {
		s.writeErr(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Data saved successfully")
}

// --- Helpers ---

type messageResp struct {
	Message string `json:"message"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeErr reports input errors verbatim and every call failure as the
// single user-facing message.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := generator.MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		status = store.MapHTTPStatus(err)
	}
	msg := err.Error()
	if status != http.StatusBadRequest {
		msg = generator.UserMessage(err)
		s.log.Error("request failed", "status", status, "error", err)
	}
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, messageResp{Message: msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		s.log.Info("http request",
			"method", r.Method,
			"path", path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
