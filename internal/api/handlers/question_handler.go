package handlers

import (
	"net/http"

	"github.com/zatekoja/placesreview/internal/application/services"
)

// QuestionHandler handles question and answer HTTP requests
type QuestionHandler struct {
	questions *services.QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

type textRequest struct {
	Text string `json:"text"`
}

// AskQuestion handles POST /api/places/{id}/questions
func (h *QuestionHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	q, err := h.questions.Ask(r.Context(), actor, r.PathValue("id"), req.Text)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, q)
}

// ListQuestions handles GET /api/places/{id}/questions
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	list, err := h.questions.ListByPlace(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"questions": list,
		"count":     len(list),
	})
}

// AnswerQuestion handles POST /api/questions/{id}/answers
func (h *QuestionHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	q, answer, err := h.questions.Answer(r.Context(), actor, r.PathValue("id"), req.Text)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"question": q,
		"answer":   answer,
	})
}
