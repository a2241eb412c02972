package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/campus-social/backend/internal/models"
	"gorm.io/gorm"
)

// PersonaRepository defines the interface for persona data operations
type PersonaRepository interface {
	// CreatePersona stores the persona and its persona-backed actor
	// atomically. A second persona for the same user, or a taken display
	// name, yields ErrDuplicate.
	CreatePersona(ctx context.Context, persona *models.Persona) (*models.Actor, error)
	GetPersonaByID(ctx context.Context, id uint) (*models.Persona, error)
	GetPersonaByUserID(ctx context.Context, userID uint) (*models.Persona, error)
	UpdatePersona(ctx context.Context, persona *models.Persona) error
	SetPersonaBanned(ctx context.Context, id uint, banned bool) error
}

type PostgresPersonaRepository struct {
	db *gorm.DB
}

func NewPostgresPersonaRepository(db *gorm.DB) *PostgresPersonaRepository {
	return &PostgresPersonaRepository{db: db}
}

func (r *PostgresPersonaRepository) CreatePersona(ctx context.Context, persona *models.Persona) (*models.Actor, error) {
	var actor *models.Actor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(persona).Error; err != nil {
			return err
		}
		actor = models.NewPersonaActor(persona.ID)
		return tx.Create(actor).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create persona: %w", translate(err))
	}
	return actor, nil
}

func (r *PostgresPersonaRepository) GetPersonaByID(ctx context.Context, id uint) (*models.Persona, error) {
	var persona models.Persona
	if err := r.db.WithContext(ctx).First(&persona, id).Error; err != nil {
		return nil, translate(err)
	}
	return &persona, nil
}

func (r *PostgresPersonaRepository) GetPersonaByUserID(ctx context.Context, userID uint) (*models.Persona, error) {
	var persona models.Persona
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&persona).Error; err != nil {
		return nil, translate(err)
	}
	return &persona, nil
}

func (r *PostgresPersonaRepository) UpdatePersona(ctx context.Context, persona *models.Persona) error {
	return translate(r.db.WithContext(ctx).Save(persona).Error)
}

func (r *PostgresPersonaRepository) SetPersonaBanned(ctx context.Context, id uint, banned bool) error {
	res := r.db.WithContext(ctx).Model(&models.Persona{}).Where("id = ?", id).Update("is_banned", banned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
