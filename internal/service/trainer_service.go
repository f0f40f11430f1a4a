package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"vocabtrainer/internal/calibration"
	"vocabtrainer/internal/config"
	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/sampler"
	"vocabtrainer/internal/session"
	"vocabtrainer/internal/validation"
)

var (
	ErrNoActiveRound      = errors.New("no active round")
	ErrNoCalibration      = errors.New("no calibration in progress")
	ErrCalibrationActive  = errors.New("calibration in progress")
	ErrUnknownCollection  = errors.New("unknown word collection")
	ErrNothingToPractice  = errors.New("practice list is empty")
	ErrEmailNotConfigured = errors.New("email is not configured")
)

// StartRequest configures a new session. Nil fields keep the saved setting.
type StartRequest struct {
	UseGeneral       bool
	UseAcademic      bool
	CustomWords      string
	Difficulty       *int
	ManualDifficulty *bool
	DoAssessment     *bool
}

// TrainerService runs calibration and training rounds for each learner and
// persists their progress in the background
type TrainerService struct {
	sources  lexicon.Sources
	offset   int
	defaults config.TrainerDefaults

	settingsRepo *repository.SettingsRepository
	studyRepo    *repository.StudySetRepository
	progressRepo *repository.ProgressRepository
	roundRepo    *repository.RoundRepository
	email        *EmailService

	newRand func() sampler.Rand
	writer  *persister

	mu       sync.Mutex
	learners map[int64]*learnerState
}

// learnerState is one learner's in-memory trainer state. At most one of calib
// and round is active at a time.
type learnerState struct {
	mu sync.Mutex
	// lastUsed is guarded by TrainerService.mu
	lastUsed time.Time

	settings models.Settings
	counts   map[string]int
	starred  map[string]struct{}

	lex      *lexicon.Lexicon
	calib    *calibration.Engine
	round    *session.Controller
	started  time.Time
	resample *session.Debouncer
	summary  *models.RoundSummary
}

// TrainerRepositories groups the stores the trainer writes to
type TrainerRepositories struct {
	Settings *repository.SettingsRepository
	Study    *repository.StudySetRepository
	Progress *repository.ProgressRepository
	Rounds   *repository.RoundRepository
}

// NewTrainerService creates a trainer over loaded lexicon sources. email may be nil.
func NewTrainerService(sources lexicon.Sources, academicOffset int, defaults config.TrainerDefaults, repos TrainerRepositories, email *EmailService) *TrainerService {
	return &TrainerService{
		sources:      sources,
		offset:       academicOffset,
		defaults:     defaults,
		settingsRepo: repos.Settings,
		studyRepo:    repos.Study,
		progressRepo: repos.Progress,
		roundRepo:    repos.Rounds,
		email:        email,
		newRand: func() sampler.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		writer:   newPersister(),
		learners: make(map[int64]*learnerState),
	}
}

// SetRandSource replaces the random source used for new sessions
func (s *TrainerService) SetRandSource(fn func() sampler.Rand) {
	s.newRand = fn
}

// Wait blocks until queued background writes have finished
func (s *TrainerService) Wait() {
	s.writer.wait()
}

// Close cancels pending resamples and flushes background writes
func (s *TrainerService) Close() {
	s.mu.Lock()
	for _, st := range s.learners {
		if st.resample != nil {
			st.resample.Cancel()
		}
	}
	s.mu.Unlock()
	s.writer.close()
}

func (s *TrainerService) defaultSettings() models.Settings {
	return models.Settings{
		Difficulty:       s.defaults.Difficulty,
		AutoRemoveCount:  s.defaults.AutoRemoveCount,
		RoundLength:      s.defaults.RoundLength,
		ManualDifficulty: s.defaults.ManualDifficulty,
		DoAssessment:     s.defaults.DoAssessment,
		Grading:          s.defaults.Grading,
	}.Normalize()
}

// state returns the learner's state locked, restoring saved data on first use.
// Read failures fall back to defaults.
func (s *TrainerService) state(learnerID int64) *learnerState {
	s.mu.Lock()
	st, ok := s.learners[learnerID]
	if !ok {
		st = &learnerState{resample: session.NewDebouncer(s.defaults.ResampleDebounce)}
		st.mu.Lock()
		st.lastUsed = time.Now()
		s.learners[learnerID] = st
		s.mu.Unlock()
		s.restore(learnerID, st)
		return st
	}
	st.lastUsed = time.Now()
	s.mu.Unlock()

	st.mu.Lock()
	return st
}

// EvictIdle drops the in-memory state of learners not seen for maxIdle, including
// any unfinished round. Their saved data is restored on next use. It returns the
// number of learners evicted.
func (s *TrainerService) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, st := range s.learners {
		if st.lastUsed.After(cutoff) {
			continue
		}
		st.resample.Cancel()
		delete(s.learners, id)
		s.writer.forget(id)
		evicted++
	}
	return evicted
}

func (s *TrainerService) restore(learnerID int64, st *learnerState) {
	// writes queued before an eviction must land first
	s.writer.waitFor(learnerID)

	defaults := s.defaultSettings()
	settings, err := s.settingsRepo.GetSettings(learnerID, defaults)
	if err != nil {
		log.Printf("Warning: failed to load settings for learner %d: %v", learnerID, err)
		settings = defaults
	}
	st.settings = settings

	st.counts, err = s.progressRepo.GetCorrectCounts(learnerID)
	if err != nil {
		log.Printf("Warning: failed to load progress for learner %d: %v", learnerID, err)
		st.counts = make(map[string]int)
	}

	st.starred = make(map[string]struct{})
	starred, err := s.studyRepo.ListWords(learnerID, models.CollectionStarred)
	if err != nil {
		log.Printf("Warning: failed to load starred words for learner %d: %v", learnerID, err)
	}
	for _, w := range starred {
		st.starred[w.Word] = struct{}{}
	}
}

// Settings returns the learner's effective settings
func (s *TrainerService) Settings(learnerID int64) models.Settings {
	st := s.state(learnerID)
	defer st.mu.Unlock()
	return st.settings
}

// UpdateSettings clamps and stores new settings. They apply from the next session.
func (s *TrainerService) UpdateSettings(learnerID int64, settings models.Settings) models.Settings {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	st.settings = settings.Normalize()
	s.saveSettings(learnerID, st.settings)
	return st.settings
}

func (s *TrainerService) saveSettings(learnerID int64, settings models.Settings) {
	s.writer.submit(learnerID, fmt.Sprintf("save settings for learner %d", learnerID), func() error {
		return s.settingsRepo.SaveSettings(learnerID, settings)
	})
}

// StartSession builds the learner's lexicon and begins calibration or a round
func (s *TrainerService) StartSession(learnerID int64, req StartRequest) (*Snapshot, error) {
	if err := validation.ValidateCustomWords(req.CustomWords); err != nil {
		return nil, err
	}

	st := s.state(learnerID)
	defer st.mu.Unlock()

	st.resample.Cancel()
	st.calib, st.round, st.summary = nil, nil, nil

	changed := false
	if req.Difficulty != nil {
		st.settings.Difficulty = *req.Difficulty
		changed = true
	}
	if req.ManualDifficulty != nil {
		st.settings.ManualDifficulty = *req.ManualDifficulty
		changed = true
	}
	if req.DoAssessment != nil {
		st.settings.DoAssessment = *req.DoAssessment
		changed = true
	}
	st.settings = st.settings.Normalize()
	if changed {
		s.saveSettings(learnerID, st.settings)
	}

	st.lex = lexicon.Combine(s.sources.General, s.sources.Academic, lexicon.Selection{
		UseGeneral:     req.UseGeneral,
		UseAcademic:    req.UseAcademic,
		AcademicOffset: s.offset,
	}).FilterCustom(req.CustomWords)

	if st.settings.DoAssessment {
		st.calib = calibration.Start(st.lex, st.settings, calibration.Options{
			Band: sampler.Band{Base: s.defaults.CalibrationBandBase, Range: s.defaults.CalibrationBandRange},
			Rand: s.newRand(),
		})
		if st.calib.State() == calibration.Running {
			return st.snapshot(), nil
		}
		// Nothing to calibrate on; fall through to an empty round
		s.finishCalibration(learnerID, st)
		return st.snapshot(), nil
	}

	s.startRound(st, nil)
	return st.snapshot(), nil
}

func (s *TrainerService) startRound(st *learnerState, seed []models.WordEntry) {
	st.round = session.New(st.lex, session.Options{
		Difficulty:      st.settings.Difficulty,
		RoundLength:     st.settings.RoundLength,
		AutoRemoveCount: st.settings.AutoRemoveCount,
		CorrectCounts:   st.counts,
		Seed:            seed,
		AutoAdjust:      s.defaults.AutoAdjust,
		Grader:          session.GraderFor(st.settings.Grading),
		Rand:            s.newRand(),
	})
	st.started = time.Now()

	// An empty round is finished before it starts
	if st.round.State() == session.Complete {
		summary := st.round.Complete()
		st.round = nil
		st.summary = &summary
	}
}

// finishCalibration hands the calibrated level and rated words to a new round
func (s *TrainerService) finishCalibration(learnerID int64, st *learnerState) {
	result := st.calib.Result()
	st.calib = nil
	st.settings.Difficulty = result.Difficulty
	s.saveSettings(learnerID, st.settings)
	s.startRound(st, result.Seed)
}

// Rate records a calibration confidence score
func (s *TrainerService) Rate(learnerID int64, score int) (*Snapshot, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	if st.calib == nil {
		return nil, ErrNoCalibration
	}
	state, err := st.calib.Rate(score)
	if err != nil {
		return nil, err
	}
	if state == calibration.Finished {
		s.finishCalibration(learnerID, st)
	}
	return st.snapshot(), nil
}

// SkipCalibration ends calibration early and starts the round
func (s *TrainerService) SkipCalibration(learnerID int64) (*Snapshot, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	if st.calib == nil {
		return nil, ErrNoCalibration
	}
	st.calib.Skip()
	s.finishCalibration(learnerID, st)
	return st.snapshot(), nil
}

// Current returns what the learner is looking at right now
func (s *TrainerService) Current(learnerID int64) *Snapshot {
	st := s.state(learnerID)
	defer st.mu.Unlock()
	return st.snapshot()
}

// activeRound returns the round, or an error naming why there is none
func (st *learnerState) activeRound() (*session.Controller, error) {
	if st.calib != nil {
		return nil, ErrCalibrationActive
	}
	if st.round == nil {
		return nil, ErrNoActiveRound
	}
	return st.round, nil
}

// Reveal shows the current definition
func (s *TrainerService) Reveal(learnerID int64) (*Snapshot, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	round, err := st.activeRound()
	if err != nil {
		return nil, err
	}
	round.Reveal()
	return st.snapshot(), nil
}

// Advance moves to the next word. At the last word the snapshot reports
// AtLastWord and the caller should finish the round.
func (s *TrainerService) Advance(learnerID int64) (*Snapshot, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	round, err := st.activeRound()
	if err != nil {
		return nil, err
	}
	before := round.Difficulty()
	round.Advance()
	if round.Difficulty() != before {
		st.settings.Difficulty = round.Difficulty()
	}
	return st.snapshot(), nil
}

// Retreat moves back one word
func (s *TrainerService) Retreat(learnerID int64) (*Snapshot, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	round, err := st.activeRound()
	if err != nil {
		return nil, err
	}
	round.Retreat()
	return st.snapshot(), nil
}

// ToggleStar stars or unstars the current word
func (s *TrainerService) ToggleStar(learnerID int64) (*Snapshot, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	round, err := st.activeRound()
	if err != nil {
		return nil, err
	}
	word, ok := round.Current()
	if !ok {
		return nil, ErrNoActiveRound
	}

	if _, starred := st.starred[word.Word]; starred {
		delete(st.starred, word.Word)
		s.writer.submit(learnerID, fmt.Sprintf("unstar %q", word.Word), func() error {
			_, err := s.studyRepo.RemoveWord(learnerID, models.CollectionStarred, word.Word)
			return err
		})
	} else {
		st.starred[word.Word] = struct{}{}
		s.writer.submit(learnerID, fmt.Sprintf("star %q", word.Word), func() error {
			return s.studyRepo.AddWords(learnerID, models.CollectionStarred, []models.WordEntry{word})
		})
	}
	return st.snapshot(), nil
}

// SetDifficulty schedules a mid-round resample. Rapid calls collapse into the
// last one once input has been quiet for the debounce delay.
func (s *TrainerService) SetDifficulty(learnerID int64, difficulty int) (*Snapshot, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	round, err := st.activeRound()
	if err != nil {
		return nil, err
	}

	st.resample.Submit(func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		// A newer session replaced the round while the task waited
		if st.round != round {
			return
		}
		round.SetDifficulty(difficulty)
		st.settings.Difficulty = round.Difficulty()
	})
	return st.snapshot(), nil
}

// FlushDifficulty applies a pending resample immediately
func (s *TrainerService) FlushDifficulty(learnerID int64) bool {
	s.mu.Lock()
	st, ok := s.learners[learnerID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return st.resample.Flush()
}

// Finish completes the round, stores its results and returns the report. A
// pending difficulty change is dropped.
func (s *TrainerService) Finish(learnerID int64) (*models.RoundSummary, error) {
	st := s.state(learnerID)
	defer st.mu.Unlock()

	round, err := st.activeRound()
	if err != nil {
		return nil, err
	}
	st.resample.Cancel()

	summary := round.Complete()
	st.round = nil
	st.summary = &summary
	st.settings.Difficulty = summary.EndDifficulty

	updated := make(map[string]int)
	var missed []models.WordEntry
	for _, item := range summary.Items {
		switch {
		case item.Correct:
			st.counts[item.Word]++
			updated[item.Word] = st.counts[item.Word]
		case item.Reviewed:
			missed = append(missed, models.WordEntry{Word: item.Word, Definition: item.Definition})
		}
	}

	record := models.RoundRecord{
		LearnerID:       learnerID,
		StartDifficulty: summary.StartDifficulty,
		EndDifficulty:   summary.EndDifficulty,
		TotalWords:      summary.Total,
		CorrectWords:    summary.Correct,
		StartedAt:       st.started,
		CompletedAt:     time.Now(),
	}
	settings := st.settings

	s.writer.submit(learnerID, fmt.Sprintf("save progress for learner %d", learnerID), func() error {
		return s.progressRepo.SetCorrectCounts(learnerID, updated)
	})
	s.writer.submit(learnerID, fmt.Sprintf("save practice words for learner %d", learnerID), func() error {
		return s.studyRepo.AddWords(learnerID, models.CollectionPractice, missed)
	})
	s.writer.submit(learnerID, fmt.Sprintf("archive round for learner %d", learnerID), func() error {
		_, err := s.roundRepo.CreateRound(record)
		return err
	})
	s.saveSettings(learnerID, settings)

	return &summary, nil
}

// Words lists a practice or starred collection
func (s *TrainerService) Words(learnerID int64, collection models.StudyCollection) ([]models.StudyWord, error) {
	if !collection.Valid() {
		return nil, ErrUnknownCollection
	}
	s.writer.waitFor(learnerID)
	return s.studyRepo.ListWords(learnerID, collection)
}

// RemoveWord deletes a word from a collection and reports whether it was there
func (s *TrainerService) RemoveWord(learnerID int64, collection models.StudyCollection, word string) (bool, error) {
	if !collection.Valid() {
		return false, ErrUnknownCollection
	}
	st := s.state(learnerID)
	if collection == models.CollectionStarred {
		delete(st.starred, word)
	}
	st.mu.Unlock()

	s.writer.waitFor(learnerID)
	return s.studyRepo.RemoveWord(learnerID, collection, word)
}

// ClearWords empties a collection
func (s *TrainerService) ClearWords(learnerID int64, collection models.StudyCollection) error {
	if !collection.Valid() {
		return ErrUnknownCollection
	}
	st := s.state(learnerID)
	if collection == models.CollectionStarred {
		st.starred = make(map[string]struct{})
	}
	st.mu.Unlock()

	s.writer.waitFor(learnerID)
	return s.studyRepo.ClearCollection(learnerID, collection)
}

// EmailPracticeList sends the learner's practice words to their address
func (s *TrainerService) EmailPracticeList(ctx context.Context, learner *models.Learner) (int, error) {
	if s.email == nil || !s.email.IsEnabled() {
		return 0, ErrEmailNotConfigured
	}
	s.writer.waitFor(learner.ID)
	words, err := s.studyRepo.ListWords(learner.ID, models.CollectionPractice)
	if err != nil {
		return 0, err
	}
	if len(words) == 0 {
		return 0, ErrNothingToPractice
	}
	if err := s.email.SendPracticeList(ctx, learner.Email, learner.Name, words); err != nil {
		return 0, err
	}
	return len(words), nil
}

// Rounds lists the learner's archived rounds, newest first
func (s *TrainerService) Rounds(learnerID int64, limit int) ([]models.RoundRecord, error) {
	s.writer.waitFor(learnerID)
	return s.roundRepo.GetRecentRounds(learnerID, limit)
}
