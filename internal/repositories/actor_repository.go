package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/campus-social/backend/internal/models"
	"gorm.io/gorm"
)

// ActorRepository looks up actors and their backing records.
type ActorRepository interface {
	GetActorByID(ctx context.Context, id uint) (*models.Actor, error)
	GetActorByUserID(ctx context.Context, userID uint) (*models.Actor, error)
	GetActorByPersonaID(ctx context.Context, personaID uint) (*models.Actor, error)
	// GetIdentities loads the given actors with their users and personas.
	// Unknown ids are absent from the result.
	GetIdentities(ctx context.Context, ids []uint) (map[uint]models.ActorIdentity, error)
	// FindActorIDsByName matches real names against user-backed actors and
	// display names against persona-backed actors, never across the two.
	FindActorIDsByName(ctx context.Context, name string) ([]uint, error)
}

type PostgresActorRepository struct {
	db *gorm.DB
}

func NewPostgresActorRepository(db *gorm.DB) *PostgresActorRepository {
	return &PostgresActorRepository{db: db}
}

func (r *PostgresActorRepository) GetActorByID(ctx context.Context, id uint) (*models.Actor, error) {
	var actor models.Actor
	if err := r.db.WithContext(ctx).First(&actor, id).Error; err != nil {
		return nil, translate(err)
	}
	return &actor, nil
}

func (r *PostgresActorRepository) GetActorByUserID(ctx context.Context, userID uint) (*models.Actor, error) {
	var actor models.Actor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&actor).Error; err != nil {
		return nil, translate(err)
	}
	return &actor, nil
}

func (r *PostgresActorRepository) GetActorByPersonaID(ctx context.Context, personaID uint) (*models.Actor, error) {
	var actor models.Actor
	if err := r.db.WithContext(ctx).Where("persona_id = ?", personaID).First(&actor).Error; err != nil {
		return nil, translate(err)
	}
	return &actor, nil
}

func (r *PostgresActorRepository) GetIdentities(ctx context.Context, ids []uint) (map[uint]models.ActorIdentity, error) {
	result := make(map[uint]models.ActorIdentity, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	db := r.db.WithContext(ctx)

	var actors []models.Actor
	if err := db.Where("id IN ?", ids).Find(&actors).Error; err != nil {
		return nil, err
	}

	var userIDs, personaIDs []uint
	for _, a := range actors {
		if id, ok := a.BackingUserID(); ok {
			userIDs = append(userIDs, id)
		}
		if id, ok := a.BackingPersonaID(); ok {
			personaIDs = append(personaIDs, id)
		}
	}

	users := make(map[uint]*models.User)
	if len(userIDs) > 0 {
		var rows []models.User
		if err := db.Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			users[rows[i].ID] = &rows[i]
		}
	}
	personas := make(map[uint]*models.Persona)
	if len(personaIDs) > 0 {
		var rows []models.Persona
		if err := db.Where("id IN ?", personaIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			personas[rows[i].ID] = &rows[i]
		}
	}

	for _, a := range actors {
		identity := models.ActorIdentity{Actor: a}
		if id, ok := a.BackingUserID(); ok {
			identity.User = users[id]
		}
		if id, ok := a.BackingPersonaID(); ok {
			identity.Persona = personas[id]
		}
		result[a.ID] = identity
	}
	return result, nil
}

func (r *PostgresActorRepository) FindActorIDsByName(ctx context.Context, name string) ([]uint, error) {
	pattern := likePattern(name)
	db := r.db.WithContext(ctx)

	var userActorIDs []uint
	err := db.Model(&models.Actor{}).
		Where("kind = ? AND user_id IN (?)", models.ActorKindUser,
			db.Model(&models.User{}).Select("id").Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern)).
		Pluck("id", &userActorIDs).Error
	if err != nil {
		return nil, err
	}

	var personaActorIDs []uint
	err = db.Model(&models.Actor{}).
		Where("kind = ? AND persona_id IN (?)", models.ActorKindPersona,
			db.Model(&models.Persona{}).Select("id").Where(`LOWER(display_name) LIKE LOWER(?) ESCAPE '\'`, pattern)).
		Pluck("id", &personaActorIDs).Error
	if err != nil {
		return nil, err
	}
	return append(userActorIDs, personaActorIDs...), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches name as a literal substring.
func likePattern(name string) string {
	return "%" + likeEscaper.Replace(name) + "%"
}
