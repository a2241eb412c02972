package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/campus-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository stores likes, reposts and saves. Every method takes
// the relation kind; the three relations never share rows.
type EngagementRepository interface {
	// CreateEngagement inserts the pair, ErrDuplicate if it already exists.
	CreateEngagement(ctx context.Context, kind models.EngagementKind, actorID uint, postID string) error
	// DeleteEngagement removes the pair; a missing pair is not an error.
	DeleteEngagement(ctx context.Context, kind models.EngagementKind, actorID uint, postID string) error
	HasEngagement(ctx context.Context, kind models.EngagementKind, actorID uint, postID string) (bool, error)
	CountEngagements(ctx context.Context, kind models.EngagementKind, postID string) (int64, error)
	CountEngagementsByPosts(ctx context.Context, kind models.EngagementKind, postIDs []string) (map[string]int64, error)
	// EngagedPostIDs returns which of postIDs the actor engaged with.
	EngagedPostIDs(ctx context.Context, kind models.EngagementKind, actorID uint, postIDs []string) (map[string]bool, error)
	ListEngagedActorIDs(ctx context.Context, kind models.EngagementKind, postID string) ([]uint, error)
	ListEngagedPostIDs(ctx context.Context, kind models.EngagementKind, actorID uint) ([]string, error)
	DeleteEngagementsByPost(ctx context.Context, postID string) error
}

type PostgresEngagementRepository struct {
	db *gorm.DB
}

func NewPostgresEngagementRepository(db *gorm.DB) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{db: db}
}

func (r *PostgresEngagementRepository) table(ctx context.Context, kind models.EngagementKind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.Table())
}

func (r *PostgresEngagementRepository) CreateEngagement(ctx context.Context, kind models.EngagementKind, actorID uint, postID string) error {
	rec := &models.EngagementRecord{ActorID: actorID, PostID: postID}
	res := r.table(ctx, kind).Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return fmt.Errorf("create %s: %w", kind, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *PostgresEngagementRepository) DeleteEngagement(ctx context.Context, kind models.EngagementKind, actorID uint, postID string) error {
	return r.table(ctx, kind).
		Where("actor_id = ? AND post_id = ?", actorID, postID).
		Delete(&models.EngagementRecord{}).Error
}

func (r *PostgresEngagementRepository) HasEngagement(ctx context.Context, kind models.EngagementKind, actorID uint, postID string) (bool, error) {
	var count int64
	err := r.table(ctx, kind).Where("actor_id = ? AND post_id = ?", actorID, postID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresEngagementRepository) CountEngagements(ctx context.Context, kind models.EngagementKind, postID string) (int64, error) {
	var count int64
	err := r.table(ctx, kind).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *PostgresEngagementRepository) CountEngagementsByPosts(ctx context.Context, kind models.EngagementKind, postIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PostID string
		Total  int64
	}
	err := r.table(ctx, kind).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = row.Total
	}
	return result, nil
}

func (r *PostgresEngagementRepository) EngagedPostIDs(ctx context.Context, kind models.EngagementKind, actorID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var ids []string
	err := r.table(ctx, kind).
		Where("actor_id = ? AND post_id IN ?", actorID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *PostgresEngagementRepository) ListEngagedActorIDs(ctx context.Context, kind models.EngagementKind, postID string) ([]uint, error) {
	var ids []uint
	err := r.table(ctx, kind).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Pluck("actor_id", &ids).Error
	return ids, err
}

func (r *PostgresEngagementRepository) ListEngagedPostIDs(ctx context.Context, kind models.EngagementKind, actorID uint) ([]string, error) {
	var ids []string
	err := r.table(ctx, kind).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *PostgresEngagementRepository) DeleteEngagementsByPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range models.EngagementKinds {
			if err := tx.Table(kind.Table()).Where("post_id = ?", postID).Delete(&models.EngagementRecord{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
