package handlers

import (
	"net/http"

	"vocabtrainer/internal/service"
)

// TrainerHandler serves calibration and round interactions
type TrainerHandler struct {
	trainer *service.TrainerService
}

// NewTrainerHandler creates a new trainer handler
func NewTrainerHandler(trainer *service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainer: trainer}
}

type startSessionRequest struct {
	UseGeneral       bool   `json:"useGeneral"`
	UseAcademic      bool   `json:"useAcademic"`
	CustomWords      string `json:"customWords"`
	Difficulty       *int   `json:"difficulty"`
	ManualDifficulty *bool  `json:"manualDifficulty"`
	DoAssessment     *bool  `json:"doAssessment"`
}

type rateRequest struct {
	Score int `json:"score"`
}

type difficultyRequest struct {
	Difficulty *int `json:"difficulty"`
}

func learnerID(r *http.Request) int64 {
	return GetLearnerFromContext(r.Context()).ID
}

func respondSnapshot(w http.ResponseWriter, snap *service.Snapshot, err error, logMsg string) {
	if err != nil {
		respondServiceError(w, logMsg, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(snap))
}

// GetSettings returns the learner's trainer settings
func (h *TrainerHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.trainer.Settings(learnerID(r)))
}

// UpdateSettings stores new settings; out-of-range values are clamped
func (h *TrainerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := h.trainer.Settings(learnerID(r))
	// Fields missing from the body keep their current value
	if !decodeJSON(w, r, &settings) {
		return
	}
	respondJSON(w, http.StatusOK, h.trainer.UpdateSettings(learnerID(r), settings))
}

// StartSession begins calibration or a round
func (h *TrainerHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.trainer.StartSession(learnerID(r), service.StartRequest{
		UseGeneral:       req.UseGeneral,
		UseAcademic:      req.UseAcademic,
		CustomWords:      req.CustomWords,
		Difficulty:       req.Difficulty,
		ManualDifficulty: req.ManualDifficulty,
		DoAssessment:     req.DoAssessment,
	})
	respondSnapshot(w, snap, err, "Error starting session")
}

func (h *TrainerHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.trainer.Rate(learnerID(r), req.Score)
	respondSnapshot(w, snap, err, "Error rating word")
}

func (h *TrainerHandler) SkipCalibration(w http.ResponseWriter, r *http.Request) {
	snap, err := h.trainer.SkipCalibration(learnerID(r))
	respondSnapshot(w, snap, err, "Error skipping calibration")
}

// Current returns the learner's current view
func (h *TrainerHandler) Current(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newSessionView(h.trainer.Current(learnerID(r))))
}

func (h *TrainerHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	snap, err := h.trainer.Reveal(learnerID(r))
	respondSnapshot(w, snap, err, "Error revealing word")
}

func (h *TrainerHandler) Advance(w http.ResponseWriter, r *http.Request) {
	snap, err := h.trainer.Advance(learnerID(r))
	respondSnapshot(w, snap, err, "Error advancing round")
}

func (h *TrainerHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	snap, err := h.trainer.Retreat(learnerID(r))
	respondSnapshot(w, snap, err, "Error moving back")
}

func (h *TrainerHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	snap, err := h.trainer.ToggleStar(learnerID(r))
	respondSnapshot(w, snap, err, "Error starring word")
}

// SetDifficulty queues a debounced resample; the response reports it as pending
func (h *TrainerHandler) SetDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Difficulty == nil {
		respondWithError(w, http.StatusBadRequest, "difficulty is required", "", nil)
		return
	}
	snap, err := h.trainer.SetDifficulty(learnerID(r), *req.Difficulty)
	respondSnapshot(w, snap, err, "Error setting difficulty")
}

// Finish ends the round and returns the results report
func (h *TrainerHandler) Finish(w http.ResponseWriter, r *http.Request) {
	summary, err := h.trainer.Finish(learnerID(r))
	if err != nil {
		respondServiceError(w, "Error finishing round", err)
		return
	}
	respondJSON(w, http.StatusOK, SessionView{Phase: service.PhaseResults, Results: ptr(newResultsView(*summary))})
}

func ptr[T any](v T) *T { return &v }

