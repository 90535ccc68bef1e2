package services

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sproutlingo-backend/internal/engine"
	pkgerrors "github.com/yungbote/sproutlingo-backend/internal/pkg/errors"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

type fakeSessionStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]engine.SessionContext
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{rows: map[uuid.UUID]engine.SessionContext{}}
}

func (f *fakeSessionStore) Save(ctx context.Context, sc engine.SessionContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[sc.SessionID] = sc
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*engine.SessionContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sc, ok := f.rows[sessionID]
	if !ok {
		return nil, nil
	}
	copied := sc
	return &copied, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, sessionID)
	return nil
}

func (f *fakeSessionStore) Close() error { return nil }

type fakeProfileSvc struct {
	profile    engine.LearnerProfile
	profileErr error
	outcomeErr error
	decayed    chan float64
	blended    chan float64
}

func (f *fakeProfileSvc) EngineProfile(ctx context.Context, userID uuid.UUID) (engine.LearnerProfile, error) {
	if f.profileErr != nil {
		return engine.LearnerProfile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeProfileSvc) RecordOutcome(ctx context.Context, userID uuid.UUID, correct, usedHelp bool) error {
	return f.outcomeErr
}

func (f *fakeProfileSvc) BlendSessionRisk(ctx context.Context, userID uuid.UUID, sessionScore float64) error {
	if f.blended != nil {
		f.blended <- sessionScore
	}
	return nil
}

func (f *fakeProfileSvc) PersistDecayedRisk(ctx context.Context, userID uuid.UUID, risk float64) error {
	if f.decayed != nil {
		f.decayed <- risk
	}
	return nil
}

type fakeChunkSvc struct {
	encounterErr error
}

func (f *fakeChunkSvc) RecordEncounter(ctx context.Context, userID, chunkID uuid.UUID, correct bool) error {
	return f.encounterErr
}

func (f *fakeChunkSvc) AcquiredCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

type fakeSessionRecordRepo struct {
	mu        sync.Mutex
	created   *types.SessionRecord
	finalized *types.SessionRecord
	createErr error
	appendErr error
}

func (f *fakeSessionRecordRepo) Create(ctx context.Context, tx *gorm.DB, row *types.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copied := *row
	f.created = &copied
	return nil
}

func (f *fakeSessionRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SessionRecord, error) {
	return nil, nil
}

func (f *fakeSessionRecordRepo) Finalize(ctx context.Context, tx *gorm.DB, row *types.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *row
	f.finalized = &copied
	return nil
}

func (f *fakeSessionRecordRepo) AppendActivityEvent(ctx context.Context, tx *gorm.DB, event *types.ActivityEvent) error {
	return f.appendErr
}

func awaitFloat(t *testing.T, ch chan float64, what string) float64 {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return 0
	}
}

func newSessionServiceForTest(t *testing.T, store *fakeSessionStore, repo *fakeSessionRecordRepo, profileSvc *fakeProfileSvc, chunkSvc *fakeChunkSvc) SessionService {
	t.Helper()
	return NewSessionService(
		testLogger(t),
		engine.DefaultThresholds(),
		store,
		repo,
		profileSvc,
		chunkSvc,
		rand.New(rand.NewSource(1)),
	)
}

func TestStart_DecaysStoredRiskBeforeLevels(t *testing.T) {
	lastActivity := time.Now().UTC().Add(-10 * 24 * time.Hour)
	profileSvc := &fakeProfileSvc{
		profile: engine.LearnerProfile{
			AvgConfidence:   0.5,
			FilterRiskScore: 0.9,
			LastActivityAt:  &lastActivity,
			ChunksAcquired:  100,
		},
		decayed: make(chan float64, 1),
	}
	store := newFakeSessionStore()
	repo := &fakeSessionRecordRepo{}
	svc := newSessionServiceForTest(t, store, repo, profileSvc, &fakeChunkSvc{})

	result, err := svc.Start(context.Background(), uuid.New(), "animals")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// 0.9 decayed over 10 idle days lands well under the high-risk bar, so
	// neither the level pulldown nor the stretch suppression applies.
	if result.CurrentLevel != 2.0 {
		t.Fatalf("CurrentLevel = %v, want 2.0 (undecayed risk would give 1.5)", result.CurrentLevel)
	}
	if result.TargetLevel != 3.0 {
		t.Fatalf("TargetLevel = %v, want 3.0", result.TargetLevel)
	}

	persisted := awaitFloat(t, profileSvc.decayed, "decayed risk persist")
	want := 0.9 * math.Pow(0.9, 10)
	if math.Abs(persisted-want) > 1e-6 {
		t.Fatalf("persisted decayed risk = %v, want %v", persisted, want)
	}

	stored, err := store.Get(context.Background(), result.Context.SessionID)
	if err != nil || stored == nil {
		t.Fatalf("live context not stored: %v", err)
	}
	if stored.BaseTargetLevel != 3.0 {
		t.Fatalf("stored BaseTargetLevel = %v, want 3.0", stored.BaseTargetLevel)
	}
}

func TestReportActivity_SurvivesFailingCollaborators(t *testing.T) {
	userID := uuid.New()
	sc := engine.NewSessionContext(uuid.New(), userID, "animals", 3)
	store := newFakeSessionStore()
	if err := store.Save(context.Background(), sc); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	// Every collaborator fails: profile load degrades to the neutral
	// profile, the accept-and-forget writes only log.
	profileSvc := &fakeProfileSvc{
		profileErr: errors.New("profile store down"),
		outcomeErr: errors.New("outcome write failed"),
	}
	chunkSvc := &fakeChunkSvc{encounterErr: errors.New("chunk write failed")}
	repo := &fakeSessionRecordRepo{appendErr: errors.New("event log down")}
	svc := newSessionServiceForTest(t, store, repo, profileSvc, chunkSvc)

	result, err := svc.ReportActivity(context.Background(), userID, sc.SessionID, ActivityInput{
		ActivityType:   "listen_and_tap",
		ChunkIDs:       []uuid.UUID{uuid.New()},
		Correct:        true,
		ResponseTimeMs: 4000,
		Attempts:       1,
	})
	if err != nil {
		t.Fatalf("ReportActivity: %v", err)
	}
	if len(result.Context.Activities) != 1 {
		t.Fatalf("Activities = %d, want 1", len(result.Context.Activities))
	}
	if result.Adaptation.Type != engine.AdaptNone {
		t.Fatalf("Adaptation = %q, want none for a clean first activity", result.Adaptation.Type)
	}
	if result.ShouldEnd {
		t.Fatalf("ShouldEnd = true for a single correct activity")
	}

	stored, err := store.Get(context.Background(), sc.SessionID)
	if err != nil || stored == nil {
		t.Fatalf("updated context not stored: %v", err)
	}
	if len(stored.Activities) != 1 {
		t.Fatalf("stored Activities = %d, want 1", len(stored.Activities))
	}
}

func TestReportActivity_RejectsCompletedSession(t *testing.T) {
	userID := uuid.New()
	sc := engine.EndSession(engine.NewSessionContext(uuid.New(), userID, "animals", 3))
	store := newFakeSessionStore()
	if err := store.Save(context.Background(), sc); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	svc := newSessionServiceForTest(t, store, &fakeSessionRecordRepo{}, &fakeProfileSvc{}, &fakeChunkSvc{})

	_, err := svc.ReportActivity(context.Background(), userID, sc.SessionID, ActivityInput{
		ActivityType: "listen_and_tap",
		Correct:      true,
	})
	if !errors.Is(err, pkgerrors.ErrSessionComplete) {
		t.Fatalf("err = %v, want ErrSessionComplete", err)
	}
}

func TestGet_RejectsForeignSession(t *testing.T) {
	owner := uuid.New()
	sc := engine.NewSessionContext(uuid.New(), owner, "animals", 3)
	store := newFakeSessionStore()
	if err := store.Save(context.Background(), sc); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	svc := newSessionServiceForTest(t, store, &fakeSessionRecordRepo{}, &fakeProfileSvc{}, &fakeChunkSvc{})

	if _, err := svc.Get(context.Background(), uuid.New(), sc.SessionID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("foreign user err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), owner, sc.SessionID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
}

func TestEnd_BlendsRiskAndDeletesContext(t *testing.T) {
	userID := uuid.New()
	sc := engine.NewSessionContext(uuid.New(), userID, "animals", 3)
	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		sc.Activities = append(sc.Activities, engine.ActivityResult{
			ID:             uuid.New(),
			ActivityType:   "listen_and_tap",
			Correct:        true,
			ResponseTimeMs: 3000,
			Attempts:       1,
			Timestamp:      now,
		})
	}
	store := newFakeSessionStore()
	if err := store.Save(context.Background(), sc); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	lastActivity := now
	profileSvc := &fakeProfileSvc{
		profile: engine.LearnerProfile{AvgConfidence: 0.5, LastActivityAt: &lastActivity},
		blended: make(chan float64, 1),
	}
	repo := &fakeSessionRecordRepo{}
	svc := newSessionServiceForTest(t, store, repo, profileSvc, &fakeChunkSvc{})

	result, err := svc.End(context.Background(), userID, sc.SessionID, "completed")
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !result.Context.IsComplete {
		t.Fatalf("returned context not complete")
	}
	// Flawless quick session: the suggested next target steps up.
	if result.SuggestedNextLevel != 3.5 {
		t.Fatalf("SuggestedNextLevel = %v, want 3.5", result.SuggestedNextLevel)
	}

	blendedScore := awaitFloat(t, profileSvc.blended, "session risk blend")
	if blendedScore != result.SessionFilterScore {
		t.Fatalf("blended score = %v, want session score %v", blendedScore, result.SessionFilterScore)
	}

	if stored, _ := store.Get(context.Background(), sc.SessionID); stored != nil {
		t.Fatalf("live context still stored after End")
	}

	repo.mu.Lock()
	finalized := repo.finalized
	repo.mu.Unlock()
	if finalized == nil {
		t.Fatalf("session record not finalized")
	}
	if finalized.ActivityCount != 4 || finalized.CorrectCount != 4 {
		t.Fatalf("finalized counts = %d/%d, want 4/4", finalized.CorrectCount, finalized.ActivityCount)
	}
	if finalized.EndedReason != "completed" {
		t.Fatalf("EndedReason = %q, want completed", finalized.EndedReason)
	}
}
