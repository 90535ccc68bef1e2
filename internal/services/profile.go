package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sproutlingo-backend/internal/engine"
	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/repos"
)

// ProfileService owns the stored learner stats. The session flow calls the
// write methods accept-and-forget: failures degrade freshness, never the
// running session.
type ProfileService interface {
	EngineProfile(ctx context.Context, userID uuid.UUID) (engine.LearnerProfile, error)
	RecordOutcome(ctx context.Context, userID uuid.UUID, correct, usedHelp bool) error
	BlendSessionRisk(ctx context.Context, userID uuid.UUID, sessionScore float64) error
	PersistDecayedRisk(ctx context.Context, userID uuid.UUID, risk float64) error
}

type profileService struct {
	log         *logger.Logger
	profileRepo repos.LearnerProfileRepo
}

func NewProfileService(log *logger.Logger, profileRepo repos.LearnerProfileRepo) ProfileService {
	return &profileService{
		log:         log.With("service", "ProfileService"),
		profileRepo: profileRepo,
	}
}

// confidence outcome weights for the running EWMA
const (
	outcomeSolo     = 1.0
	outcomeAssisted = 0.5
	outcomeMiss     = 0.0
	ewmaAlpha       = 0.1
)

func (s *profileService) EngineProfile(ctx context.Context, userID uuid.UUID) (engine.LearnerProfile, error) {
	row, err := s.profileRepo.EnsureForUser(ctx, nil, userID)
	if err != nil {
		return engine.LearnerProfile{}, err
	}
	if row == nil {
		// Missing fields map to safe defaults; nil LastActivityAt reads
		// as indefinitely inactive.
		return engine.LearnerProfile{AvgConfidence: 0.5}, nil
	}
	return engine.LearnerProfile{
		AvgConfidence:   row.AvgConfidence,
		WrongAnswerRate: row.WrongAnswerRate,
		HelpRequestRate: row.HelpRequestRate,
		FilterRiskScore: row.FilterRiskScore,
		LastActivityAt:  row.LastActivityAt,
		ChunksAcquired:  row.ChunksAcquired,
		ChunksLearning:  row.ChunksLearning,
		ChunksFragile:   row.ChunksFragile,
	}, nil
}

func (s *profileService) RecordOutcome(ctx context.Context, userID uuid.UUID, correct, usedHelp bool) error {
	row, err := s.profileRepo.EnsureForUser(ctx, nil, userID)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}

	outcome := outcomeMiss
	if correct && !usedHelp {
		outcome = outcomeSolo
	} else if correct {
		outcome = outcomeAssisted
	}
	wrong := 0.0
	if !correct {
		wrong = 1.0
	}
	help := 0.0
	if usedHelp {
		help = 1.0
	}

	avgConfidence := row.AvgConfidence*(1-ewmaAlpha) + outcome*ewmaAlpha
	wrongRate := row.WrongAnswerRate*(1-ewmaAlpha) + wrong*ewmaAlpha
	helpRate := row.HelpRequestRate*(1-ewmaAlpha) + help*ewmaAlpha

	return s.profileRepo.UpdateStats(ctx, nil, userID, avgConfidence, wrongRate, helpRate, time.Now().UTC())
}

func (s *profileService) BlendSessionRisk(ctx context.Context, userID uuid.UUID, sessionScore float64) error {
	row, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	updated := engine.UpdatedFilterRisk(row.FilterRiskScore, sessionScore)
	return s.profileRepo.UpdateFilterRisk(ctx, nil, userID, updated)
}

func (s *profileService) PersistDecayedRisk(ctx context.Context, userID uuid.UUID, risk float64) error {
	return s.profileRepo.UpdateFilterRisk(ctx, nil, userID, risk)
}
