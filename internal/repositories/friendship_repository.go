package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/campus-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	// CreateFriendRequest inserts a pending request. A pending request
	// already existing for the pair, in either direction, yields ErrDuplicate.
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error
	GetFriendRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	GetPendingFriendRequestBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error)
	// GetPendingFriendRequests returns pending requests sent or received by actorID.
	GetPendingFriendRequests(ctx context.Context, actorID uint) ([]models.FriendRequest, error)
	// AcceptFriendRequest marks a pending request accepted and creates the
	// friendship edge in one transaction. ErrNotFound if it is not pending.
	AcceptFriendRequest(ctx context.Context, id uint) (*models.FriendRequest, error)
	// CloseFriendRequest moves a pending request to a terminal status
	// without creating an edge. ErrNotFound if it is not pending.
	CloseFriendRequest(ctx context.Context, id uint, status models.FriendRequestStatus) error
	AreFriends(ctx context.Context, a, b uint) (bool, error)
	CountFriends(ctx context.Context, actorID uint) (int64, error)
	GetFriendIDs(ctx context.Context, actorID uint) ([]uint, error)
	// DeleteFriendship removes the edge; a missing edge is not an error.
	DeleteFriendship(ctx context.Context, a, b uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// CreateFriendRequest creates a new friend request
func (r *PostgresFriendshipRepository) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	req.Status = models.FriendRequestPending
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create friend request: %w", translate(err))
	}
	return nil
}

// GetFriendRequestByID retrieves a friend request by ID
func (r *PostgresFriendshipRepository) GetFriendRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) GetPendingFriendRequestBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).Where("pending_key = ?", models.PairKey(a, b)).First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// GetPendingFriendRequests retrieves all pending friend requests sent or received by an actor
func (r *PostgresFriendshipRepository) GetPendingFriendRequests(ctx context.Context, actorID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(from_actor_id = ? OR to_actor_id = ?) AND status = ?", actorID, actorID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PostgresFriendshipRepository) AcceptFriendRequest(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", id, models.FriendRequestPending).
			Updates(map[string]any{"status": models.FriendRequestAccepted, "pending_key": nil})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.First(&req, id).Error; err != nil {
			return err
		}
		edge := models.NewFriendship(req.FromActorID, req.ToActorID)
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) CloseFriendRequest(ctx context.Context, id uint, status models.FriendRequestStatus) error {
	res := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, models.FriendRequestPending).
		Updates(map[string]any{"status": status, "pending_key": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFriendshipRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	edge := models.NewFriendship(a, b)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("actor_low_id = ? AND actor_high_id = ?", edge.ActorLowID, edge.ActorHighID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresFriendshipRepository) CountFriends(ctx context.Context, actorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("actor_low_id = ? OR actor_high_id = ?", actorID, actorID).
		Count(&count).Error
	return count, err
}

// GetFriendIDs retrieves the actor ids on the other end of every edge
func (r *PostgresFriendshipRepository) GetFriendIDs(ctx context.Context, actorID uint) ([]uint, error) {
	var edges []models.Friendship
	err := r.db.WithContext(ctx).
		Where("actor_low_id = ? OR actor_high_id = ?", actorID, actorID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(edges))
	for i := range edges {
		ids = append(ids, edges[i].Other(actorID))
	}
	return ids, nil
}

func (r *PostgresFriendshipRepository) DeleteFriendship(ctx context.Context, a, b uint) error {
	edge := models.NewFriendship(a, b)
	return r.db.WithContext(ctx).
		Where("actor_low_id = ? AND actor_high_id = ?", edge.ActorLowID, edge.ActorHighID).
		Delete(&models.Friendship{}).Error
}
