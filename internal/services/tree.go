package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sproutlingo-backend/internal/engine"
	"github.com/yungbote/sproutlingo-backend/internal/logger"
	pkgerrors "github.com/yungbote/sproutlingo-backend/internal/pkg/errors"
	"github.com/yungbote/sproutlingo-backend/internal/repos"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

type TreeStatus struct {
	TreeID           uuid.UUID         `json:"tree_id"`
	Health           int               `json:"health"`
	LastRefreshAt    time.Time         `json:"last_refresh_at"`
	ElapsedDays      float64           `json:"elapsed_days"`
	ActiveBufferDays float64           `json:"active_buffer_days"`
	Grants           []types.TreeGrant `json:"grants"`
}

// TreeService evaluates sprout-tree health on demand. Health is always
// derived from the stored refresh timestamp and unconsumed grants, never
// persisted. The grant kind→days table is collaborator data handed to the
// constructor.
type TreeService interface {
	Evaluate(ctx context.Context, userID uuid.UUID) (*TreeStatus, error)
	Refresh(ctx context.Context, userID uuid.UUID) (*TreeStatus, error)
	AddGrant(ctx context.Context, userID uuid.UUID, kind string) (*TreeStatus, error)
	ConsumeGrant(ctx context.Context, userID, grantID uuid.UUID) (*TreeStatus, error)
}

type treeService struct {
	log        *logger.Logger
	treeRepo   repos.SproutTreeRepo
	grantTable map[string]float64
}

func NewTreeService(log *logger.Logger, treeRepo repos.SproutTreeRepo, grantTable map[string]float64) TreeService {
	return &treeService{
		log:        log.With("service", "TreeService"),
		treeRepo:   treeRepo,
		grantTable: grantTable,
	}
}

func (s *treeService) Evaluate(ctx context.Context, userID uuid.UUID) (*TreeStatus, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	tree, err := s.treeRepo.EnsureForUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return s.statusFor(ctx, tree)
}

func (s *treeService) Refresh(ctx context.Context, userID uuid.UUID) (*TreeStatus, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	tree, err := s.treeRepo.EnsureForUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, pkgerrors.ErrNotFound
	}
	now := time.Now().UTC()
	if err := s.treeRepo.SetLastRefresh(ctx, nil, tree.ID, now); err != nil {
		return nil, err
	}
	tree.LastRefreshAt = now
	return s.statusFor(ctx, tree)
}

func (s *treeService) AddGrant(ctx context.Context, userID uuid.UUID, kind string) (*TreeStatus, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	days, ok := s.grantTable[kind]
	if !ok {
		return nil, pkgerrors.ErrInvalidArgument
	}
	tree, err := s.treeRepo.EnsureForUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, pkgerrors.ErrNotFound
	}
	grant := &types.TreeGrant{
		ID:         uuid.New(),
		TreeID:     tree.ID,
		Kind:       kind,
		BufferDays: days,
	}
	if err := s.treeRepo.AddGrant(ctx, nil, grant); err != nil {
		return nil, err
	}
	return s.statusFor(ctx, tree)
}

func (s *treeService) ConsumeGrant(ctx context.Context, userID, grantID uuid.UUID) (*TreeStatus, error) {
	if userID == uuid.Nil || grantID == uuid.Nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	tree, err := s.treeRepo.EnsureForUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, pkgerrors.ErrNotFound
	}
	if err := s.treeRepo.ConsumeGrant(ctx, nil, grantID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.statusFor(ctx, tree)
}

func (s *treeService) statusFor(ctx context.Context, tree *types.SproutTree) (*TreeStatus, error) {
	grants, err := s.treeRepo.ListGrants(ctx, nil, tree.ID)
	if err != nil {
		return nil, err
	}
	buffers := make([]engine.GrantBuffer, 0, len(grants))
	for _, g := range grants {
		buffers = append(buffers, engine.GrantBuffer{
			Kind:       g.Kind,
			BufferDays: g.BufferDays,
			Consumed:   g.Consumed,
		})
	}
	elapsed := engine.ElapsedDaysSince(tree.LastRefreshAt, time.Now().UTC())
	bufferDays := engine.ActiveBufferDays(buffers)
	return &TreeStatus{
		TreeID:           tree.ID,
		Health:           engine.CalculateTreeHealth(elapsed, bufferDays),
		LastRefreshAt:    tree.LastRefreshAt,
		ElapsedDays:      elapsed,
		ActiveBufferDays: bufferDays,
		Grants:           grants,
	}, nil
}
