package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/repos"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

// acquisition transition tuning
const (
	acquireAfterCorrect = 3
	fragileAfterMisses  = 2
)

// ChunkService tracks per-chunk acquisition and keeps the profile's chunk
// counters in step. Encounters are recorded fire-and-forget from the
// session flow.
type ChunkService interface {
	RecordEncounter(ctx context.Context, userID, chunkID uuid.UUID, correct bool) error
	AcquiredCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type chunkService struct {
	log         *logger.Logger
	chunkRepo   repos.ChunkStateRepo
	profileRepo repos.LearnerProfileRepo
}

func NewChunkService(log *logger.Logger, chunkRepo repos.ChunkStateRepo, profileRepo repos.LearnerProfileRepo) ChunkService {
	return &chunkService{
		log:         log.With("service", "ChunkService"),
		chunkRepo:   chunkRepo,
		profileRepo: profileRepo,
	}
}

func (s *chunkService) RecordEncounter(ctx context.Context, userID, chunkID uuid.UUID, correct bool) error {
	row, err := s.chunkRepo.Get(ctx, nil, userID, chunkID)
	if err != nil {
		return err
	}
	if row == nil {
		row = &types.ChunkState{
			ID:      uuid.New(),
			UserID:  userID,
			ChunkID: chunkID,
			Status:  types.ChunkStatusLearning,
		}
	}

	now := time.Now().UTC()
	row.LastSeenAt = &now
	if correct {
		row.CorrectCount++
		row.MissStreak = 0
		switch row.Status {
		case types.ChunkStatusLearning:
			if row.CorrectCount >= acquireAfterCorrect {
				row.Status = types.ChunkStatusAcquired
			}
		case types.ChunkStatusFragile:
			// One solid recall recovers a fragile chunk.
			row.Status = types.ChunkStatusAcquired
		}
	} else {
		row.IncorrectCount++
		row.MissStreak++
		if row.Status == types.ChunkStatusAcquired && row.MissStreak >= fragileAfterMisses {
			row.Status = types.ChunkStatusFragile
		}
	}

	if err := s.chunkRepo.Save(ctx, nil, row); err != nil {
		return err
	}
	return s.refreshProfileCounts(ctx, userID)
}

func (s *chunkService) AcquiredCount(ctx context.Context, userID uuid.UUID) (int, error) {
	counts, err := s.chunkRepo.CountByStatus(ctx, nil, userID)
	if err != nil {
		return 0, err
	}
	return counts[types.ChunkStatusAcquired], nil
}

func (s *chunkService) refreshProfileCounts(ctx context.Context, userID uuid.UUID) error {
	counts, err := s.chunkRepo.CountByStatus(ctx, nil, userID)
	if err != nil {
		return err
	}
	return s.profileRepo.UpdateChunkCounts(ctx, nil, userID,
		counts[types.ChunkStatusAcquired],
		counts[types.ChunkStatusLearning],
		counts[types.ChunkStatusFragile])
}
