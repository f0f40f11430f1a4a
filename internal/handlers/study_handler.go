package handlers

import (
	"net/http"
	"strconv"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/service"
)

const defaultRoundsLimit = 20

// StudyHandler serves the practice and starred collections and the round archive
type StudyHandler struct {
	trainer *service.TrainerService
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(trainer *service.TrainerService) *StudyHandler {
	return &StudyHandler{trainer: trainer}
}

// ListWords returns a handler listing one collection
func (h *StudyHandler) ListWords(collection models.StudyCollection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		words, err := h.trainer.Words(learnerID(r), collection)
		if err != nil {
			respondServiceError(w, "Error listing words", err)
			return
		}
		respondJSON(w, http.StatusOK, StudyWordsView{Collection: collection, Words: words})
	}
}

// RemoveWord returns a handler deleting {word} from one collection
func (h *StudyHandler) RemoveWord(collection models.StudyCollection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		word := r.PathValue("word")
		removed, err := h.trainer.RemoveWord(learnerID(r), collection, word)
		if err != nil {
			respondServiceError(w, "Error removing word", err)
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Word not found", "", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearWords returns a handler emptying one collection
func (h *StudyHandler) ClearWords(collection models.StudyCollection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.trainer.ClearWords(learnerID(r), collection); err != nil {
			respondServiceError(w, "Error clearing words", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// EmailPractice mails the practice list to the learner
func (h *StudyHandler) EmailPractice(w http.ResponseWriter, r *http.Request) {
	learner := GetLearnerFromContext(r.Context())
	sent, err := h.trainer.EmailPracticeList(r.Context(), learner)
	if err != nil {
		respondServiceError(w, "Error emailing practice list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

// Rounds lists archived rounds, newest first. ?limit=0 returns all of them.
func (h *StudyHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	limit := defaultRoundsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	records, err := h.trainer.Rounds(learnerID(r), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing rounds", err)
		return
	}
	respondJSON(w, http.StatusOK, newRoundRecordViews(records))
}
