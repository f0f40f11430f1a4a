package handlers

import (
	"net/http"

	"vocabtrainer/internal/models"
)

// Routes registers the JSON API on mux
func Routes(mux *http.ServeMux, mw *Middleware, auth *AuthHandler, trainer *TrainerHandler, study *StudyHandler, health http.HandlerFunc) {
	mux.HandleFunc("GET /healthz", health)

	// Public routes
	mux.HandleFunc("POST /api/register", mw.RateLimit(auth.Register))
	mux.HandleFunc("POST /api/login", mw.RateLimit(auth.Login))
	mux.HandleFunc("GET /auth/{provider}/start", auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", mw.RateLimit(auth.OAuthCallback))

	mux.HandleFunc("POST /api/logout", mw.RequireAuth(auth.Logout))
	mux.HandleFunc("GET /api/me", mw.RequireAuth(auth.Me))

	// Settings
	mux.HandleFunc("GET /api/settings", mw.RequireAuth(trainer.GetSettings))
	mux.HandleFunc("PUT /api/settings", mw.RequireAuth(trainer.UpdateSettings))

	// Session and calibration
	mux.HandleFunc("POST /api/session/start", mw.RequireAuth(trainer.StartSession))
	mux.HandleFunc("POST /api/calibration/rate", mw.RequireAuth(trainer.Rate))
	mux.HandleFunc("POST /api/calibration/skip", mw.RequireAuth(trainer.SkipCalibration))

	// Round
	mux.HandleFunc("GET /api/round", mw.RequireAuth(trainer.Current))
	mux.HandleFunc("POST /api/round/reveal", mw.RequireAuth(trainer.Reveal))
	mux.HandleFunc("POST /api/round/advance", mw.RequireAuth(trainer.Advance))
	mux.HandleFunc("POST /api/round/retreat", mw.RequireAuth(trainer.Retreat))
	mux.HandleFunc("POST /api/round/star", mw.RequireAuth(trainer.ToggleStar))
	mux.HandleFunc("POST /api/round/difficulty", mw.RequireAuth(trainer.SetDifficulty))
	mux.HandleFunc("POST /api/round/finish", mw.RequireAuth(trainer.Finish))

	// Practice and starred collections
	mux.HandleFunc("GET /api/practice", mw.RequireAuth(study.ListWords(models.CollectionPractice)))
	mux.HandleFunc("DELETE /api/practice", mw.RequireAuth(study.ClearWords(models.CollectionPractice)))
	mux.HandleFunc("DELETE /api/practice/{word}", mw.RequireAuth(study.RemoveWord(models.CollectionPractice)))
	mux.HandleFunc("POST /api/practice/email", mw.RequireAuth(study.EmailPractice))
	mux.HandleFunc("GET /api/starred", mw.RequireAuth(study.ListWords(models.CollectionStarred)))
	mux.HandleFunc("DELETE /api/starred", mw.RequireAuth(study.ClearWords(models.CollectionStarred)))
	mux.HandleFunc("DELETE /api/starred/{word}", mw.RequireAuth(study.RemoveWord(models.CollectionStarred)))
	mux.HandleFunc("GET /api/rounds", mw.RequireAuth(study.Rounds))
}
