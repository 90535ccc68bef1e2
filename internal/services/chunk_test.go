package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

type fakeChunkRepo struct {
	rows map[uuid.UUID]*types.ChunkState
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{rows: map[uuid.UUID]*types.ChunkState{}}
}

func (f *fakeChunkRepo) Get(ctx context.Context, tx *gorm.DB, userID, chunkID uuid.UUID) (*types.ChunkState, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.ChunkID == chunkID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeChunkRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ChunkState) error {
	copied := *row
	f.rows[row.ID] = &copied
	return nil
}

func (f *fakeChunkRepo) CountByStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[string]int, error) {
	counts := map[string]int{}
	for _, row := range f.rows {
		if row.UserID == userID {
			counts[row.Status]++
		}
	}
	return counts, nil
}

type fakeProfileRepo struct {
	row *types.LearnerProfile
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error) {
	if f.row == nil || f.row.UserID != userID {
		return nil, nil
	}
	copied := *f.row
	return &copied, nil
}

func (f *fakeProfileRepo) EnsureForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error) {
	if f.row == nil || f.row.UserID != userID {
		f.row = &types.LearnerProfile{ID: uuid.New(), UserID: userID, AvgConfidence: 0.5}
	}
	copied := *f.row
	return &copied, nil
}

func (f *fakeProfileRepo) UpdateStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID, avgConfidence, wrongRate, helpRate float64, lastActivity time.Time) error {
	if f.row != nil && f.row.UserID == userID {
		f.row.AvgConfidence = avgConfidence
		f.row.WrongAnswerRate = wrongRate
		f.row.HelpRequestRate = helpRate
		f.row.LastActivityAt = &lastActivity
	}
	return nil
}

func (f *fakeProfileRepo) UpdateFilterRisk(ctx context.Context, tx *gorm.DB, userID uuid.UUID, risk float64) error {
	if f.row != nil && f.row.UserID == userID {
		f.row.FilterRiskScore = risk
	}
	return nil
}

func (f *fakeProfileRepo) UpdateChunkCounts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, acquired, learning, fragile int) error {
	if f.row != nil && f.row.UserID == userID {
		f.row.ChunksAcquired = acquired
		f.row.ChunksLearning = learning
		f.row.ChunksFragile = fragile
	}
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func chunkStatus(t *testing.T, repo *fakeChunkRepo, userID, chunkID uuid.UUID) *types.ChunkState {
	t.Helper()
	row, err := repo.Get(context.Background(), nil, userID, chunkID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row == nil {
		t.Fatalf("expected chunk row for %s", chunkID)
	}
	return row
}

func TestRecordEncounter_LearningToAcquiredAfterThreeCorrect(t *testing.T) {
	chunkRepo := newFakeChunkRepo()
	profileRepo := &fakeProfileRepo{}
	svc := NewChunkService(testLogger(t), chunkRepo, profileRepo)

	userID := uuid.New()
	chunkID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.RecordEncounter(ctx, userID, chunkID, true); err != nil {
			t.Fatalf("RecordEncounter: %v", err)
		}
	}
	if got := chunkStatus(t, chunkRepo, userID, chunkID).Status; got != types.ChunkStatusLearning {
		t.Fatalf("after 2 correct: status = %q, want learning", got)
	}

	if err := svc.RecordEncounter(ctx, userID, chunkID, true); err != nil {
		t.Fatalf("RecordEncounter: %v", err)
	}
	row := chunkStatus(t, chunkRepo, userID, chunkID)
	if row.Status != types.ChunkStatusAcquired {
		t.Fatalf("after 3 correct: status = %q, want acquired", row.Status)
	}
	if row.CorrectCount != 3 {
		t.Fatalf("CorrectCount = %d, want 3", row.CorrectCount)
	}
}

func TestRecordEncounter_AcquiredToFragileAndBack(t *testing.T) {
	chunkRepo := newFakeChunkRepo()
	profileRepo := &fakeProfileRepo{}
	svc := NewChunkService(testLogger(t), chunkRepo, profileRepo)

	userID := uuid.New()
	chunkID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.RecordEncounter(ctx, userID, chunkID, true); err != nil {
			t.Fatalf("RecordEncounter: %v", err)
		}
	}

	// One miss keeps the chunk acquired, the streak is what demotes.
	if err := svc.RecordEncounter(ctx, userID, chunkID, false); err != nil {
		t.Fatalf("RecordEncounter: %v", err)
	}
	if got := chunkStatus(t, chunkRepo, userID, chunkID).Status; got != types.ChunkStatusAcquired {
		t.Fatalf("after 1 miss: status = %q, want acquired", got)
	}

	if err := svc.RecordEncounter(ctx, userID, chunkID, false); err != nil {
		t.Fatalf("RecordEncounter: %v", err)
	}
	if got := chunkStatus(t, chunkRepo, userID, chunkID).Status; got != types.ChunkStatusFragile {
		t.Fatalf("after 2 misses: status = %q, want fragile", got)
	}

	// A single correct recall recovers the chunk.
	if err := svc.RecordEncounter(ctx, userID, chunkID, true); err != nil {
		t.Fatalf("RecordEncounter: %v", err)
	}
	row := chunkStatus(t, chunkRepo, userID, chunkID)
	if row.Status != types.ChunkStatusAcquired {
		t.Fatalf("after recovery: status = %q, want acquired", row.Status)
	}
	if row.MissStreak != 0 {
		t.Fatalf("MissStreak = %d, want 0 after recovery", row.MissStreak)
	}
}

func TestRecordEncounter_SyncsProfileCounts(t *testing.T) {
	chunkRepo := newFakeChunkRepo()
	profileRepo := &fakeProfileRepo{}
	svc := NewChunkService(testLogger(t), chunkRepo, profileRepo)

	userID := uuid.New()
	ctx := context.Background()
	if _, err := profileRepo.EnsureForUser(ctx, nil, userID); err != nil {
		t.Fatalf("EnsureForUser: %v", err)
	}

	acquiredChunk := uuid.New()
	for i := 0; i < 3; i++ {
		if err := svc.RecordEncounter(ctx, userID, acquiredChunk, true); err != nil {
			t.Fatalf("RecordEncounter: %v", err)
		}
	}
	if err := svc.RecordEncounter(ctx, userID, uuid.New(), false); err != nil {
		t.Fatalf("RecordEncounter: %v", err)
	}

	if profileRepo.row.ChunksAcquired != 1 {
		t.Fatalf("ChunksAcquired = %d, want 1", profileRepo.row.ChunksAcquired)
	}
	if profileRepo.row.ChunksLearning != 1 {
		t.Fatalf("ChunksLearning = %d, want 1", profileRepo.row.ChunksLearning)
	}

	count, err := svc.AcquiredCount(ctx, userID)
	if err != nil {
		t.Fatalf("AcquiredCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("AcquiredCount = %d, want 1", count)
	}
}
