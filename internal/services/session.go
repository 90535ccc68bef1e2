package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/yungbote/sproutlingo-backend/internal/clients/redis"
	"github.com/yungbote/sproutlingo-backend/internal/engine"
	"github.com/yungbote/sproutlingo-backend/internal/logger"
	pkgerrors "github.com/yungbote/sproutlingo-backend/internal/pkg/errors"
	"github.com/yungbote/sproutlingo-backend/internal/repos"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

type StartSessionResult struct {
	Context      engine.SessionContext `json:"context"`
	CurrentLevel float64               `json:"current_level"`
	TargetLevel  float64               `json:"target_level"`
}

type ActivityInput struct {
	ActivityType   string
	ChunkIDs       []uuid.UUID
	Correct        bool
	ResponseTimeMs float64
	UsedHelp       bool
	Attempts       int
	Abandoned      bool
	PlannedMinutes float64
}

type ReportResult struct {
	Context    engine.SessionContext `json:"context"`
	Adaptation engine.Adaptation     `json:"adaptation"`
	Message    string                `json:"message,omitempty"`
	ShouldEnd  bool                  `json:"should_end"`
	EndReason  string                `json:"end_reason,omitempty"`
}

type EndSessionResult struct {
	Context            engine.SessionContext `json:"context"`
	SessionFilterScore float64               `json:"session_filter_score"`
	SuggestedNextLevel float64               `json:"suggested_next_level"`
}

// SessionService runs the session life cycle: the decision engine does the
// thinking, this service threads the context through redis and fans the
// side-effect writes out to the profile and chunk collaborators.
type SessionService interface {
	Start(ctx context.Context, userID uuid.UUID, topic string) (*StartSessionResult, error)
	ReportActivity(ctx context.Context, userID, sessionID uuid.UUID, input ActivityInput) (*ReportResult, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*engine.SessionContext, error)
	End(ctx context.Context, userID, sessionID uuid.UUID, reason string) (*EndSessionResult, error)
}

type sessionService struct {
	log         *logger.Logger
	thresholds  engine.Thresholds
	store       redisclient.SessionStore
	sessionRepo repos.SessionRecordRepo
	profileSvc  ProfileService
	chunkSvc    ChunkService

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSessionService(
	log *logger.Logger,
	thresholds engine.Thresholds,
	store redisclient.SessionStore,
	sessionRepo repos.SessionRecordRepo,
	profileSvc ProfileService,
	chunkSvc ChunkService,
	rng *rand.Rand,
) SessionService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &sessionService{
		log:         log.With("service", "SessionService"),
		thresholds:  thresholds,
		store:       store,
		sessionRepo: sessionRepo,
		profileSvc:  profileSvc,
		chunkSvc:    chunkSvc,
		rng:         rng,
	}
}

func (s *sessionService) Start(ctx context.Context, userID uuid.UUID, topic string) (*StartSessionResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrInvalidArgument
	}

	profile, err := s.profileSvc.EngineProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	// Inactivity decays the stored risk before it shapes today's levels.
	days := 10.0
	if profile.LastActivityAt != nil {
		days = time.Since(*profile.LastActivityAt).Hours() / 24
	}
	decayed := engine.DecayFilterRisk(profile.FilterRiskScore, days)
	if decayed != profile.FilterRiskScore {
		profile.FilterRiskScore = decayed
		s.forget("persist decayed risk", userID, func(bg context.Context) error {
			return s.profileSvc.PersistDecayedRisk(bg, userID, decayed)
		})
	}

	currentLevel := engine.CalculateCurrentLevel(profile, s.thresholds)
	targetLevel := engine.CalculateIPlusOne(profile, currentLevel, s.thresholds)

	sessionID := uuid.New()
	sc := engine.NewSessionContext(sessionID, userID, topic, targetLevel)

	record := &types.SessionRecord{
		ID:              sessionID,
		UserID:          userID,
		Topic:           topic,
		BaseTargetLevel: sc.BaseTargetLevel,
		StartedAt:       time.Now().UTC(),
	}
	if err := s.sessionRepo.Create(ctx, nil, record); err != nil {
		// The session can still run from the live store; only the
		// summary row is at risk.
		s.log.Warn("session record create failed", "session_id", sessionID, "error", err)
	}

	if err := s.store.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("save session context: %w", err)
	}

	return &StartSessionResult{
		Context:      sc,
		CurrentLevel: currentLevel,
		TargetLevel:  targetLevel,
	}, nil
}

func (s *sessionService) ReportActivity(ctx context.Context, userID, sessionID uuid.UUID, input ActivityInput) (*ReportResult, error) {
	sc, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sc.IsComplete {
		return nil, pkgerrors.ErrSessionComplete
	}

	result := engine.ActivityResult{
		ID:             uuid.New(),
		ActivityType:   input.ActivityType,
		ChunkIDs:       input.ChunkIDs,
		Correct:        input.Correct,
		ResponseTimeMs: input.ResponseTimeMs,
		UsedHelp:       input.UsedHelp,
		Attempts:       input.Attempts,
		Abandoned:      input.Abandoned,
		Timestamp:      time.Now().UTC(),
	}

	profile, err := s.profileSvc.EngineProfile(ctx, userID)
	if err != nil {
		// Degraded but valid: score against a neutral profile.
		s.log.Warn("profile load failed, using neutral profile", "user_id", userID, "error", err)
		profile = engine.LearnerProfile{AvgConfidence: 0.5}
	}

	s.mu.Lock()
	next, adaptation := engine.RecordActivity(*sc, result, profile, s.thresholds, s.rng)
	s.mu.Unlock()

	// Collaborator writes are accept-and-forget: their failure must not
	// invalidate the returned context.
	s.forget("record outcome", userID, func(bg context.Context) error {
		return s.profileSvc.RecordOutcome(bg, userID, input.Correct, input.UsedHelp)
	})
	for _, chunkID := range input.ChunkIDs {
		id := chunkID
		s.forget("record chunk encounter", userID, func(bg context.Context) error {
			return s.chunkSvc.RecordEncounter(bg, userID, id, input.Correct)
		})
	}
	s.forget("append activity event", userID, func(bg context.Context) error {
		return s.sessionRepo.AppendActivityEvent(bg, nil, &types.ActivityEvent{
			ID:             result.ID,
			SessionID:      sessionID,
			UserID:         userID,
			ActivityType:   result.ActivityType,
			Correct:        result.Correct,
			UsedHelp:       result.UsedHelp,
			Abandoned:      result.Abandoned,
			ResponseTimeMs: result.ResponseTimeMs,
			Attempts:       result.Attempts,
		})
	})

	planned := time.Duration(input.PlannedMinutes * float64(time.Minute))
	if planned <= 0 {
		planned = 15 * time.Minute
	}
	shouldEnd, endReason := engine.ShouldEndSession(next, planned, s.thresholds)

	if err := s.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save session context: %w", err)
	}

	return &ReportResult{
		Context:    next,
		Adaptation: adaptation,
		Message:    engine.ResolveMessage(adaptation.MessageCategory, adaptation.MessageIndex),
		ShouldEnd:  shouldEnd,
		EndReason:  endReason,
	}, nil
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*engine.SessionContext, error) {
	return s.loadOwned(ctx, userID, sessionID)
}

func (s *sessionService) End(ctx context.Context, userID, sessionID uuid.UUID, reason string) (*EndSessionResult, error) {
	sc, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileSvc.EngineProfile(ctx, userID)
	if err != nil {
		s.log.Warn("profile load failed at session end", "user_id", userID, "error", err)
		profile = engine.LearnerProfile{AvgConfidence: 0.5}
	}

	sessionScore := engine.CalculateFilterScore(profile, sc.FilterSignals, s.thresholds)
	perf := engine.SessionPerformance(*sc)
	nextLevel := engine.AdaptDifficulty(sc.CurrentTargetLevel, perf, s.thresholds)
	ended := engine.EndSession(*sc)

	s.forget("blend session risk", userID, func(bg context.Context) error {
		return s.profileSvc.BlendSessionRisk(bg, userID, sessionScore)
	})

	now := time.Now().UTC()
	record := &types.SessionRecord{
		ID:                 sessionID,
		FinalTargetLevel:   ended.CurrentTargetLevel,
		ActivityCount:      perf.Total,
		CorrectCount:       perf.Correct,
		AdaptationCount:    len(ended.Adaptations),
		SessionFilterScore: sessionScore,
		EndedReason:        reason,
		EndedAt:            &now,
	}
	if err := s.sessionRepo.Finalize(ctx, nil, record); err != nil {
		s.log.Warn("session record finalize failed", "session_id", sessionID, "error", err)
	}

	// Session signals live only as long as the session.
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Warn("session context delete failed", "session_id", sessionID, "error", err)
	}

	return &EndSessionResult{
		Context:            ended,
		SessionFilterScore: sessionScore,
		SuggestedNextLevel: nextLevel,
	}, nil
}

func (s *sessionService) loadOwned(ctx context.Context, userID, sessionID uuid.UUID) (*engine.SessionContext, error) {
	if userID == uuid.Nil || sessionID == uuid.Nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	sc, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session context: %w", err)
	}
	if sc == nil || sc.UserID != userID {
		return nil, pkgerrors.ErrNotFound
	}
	return sc, nil
}

func (s *sessionService) forget(op string, userID uuid.UUID, fn func(context.Context) error) {
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(bg); err != nil {
			s.log.Warn("background write failed", "op", op, "user_id", userID, "error", err)
		}
	}()
}
