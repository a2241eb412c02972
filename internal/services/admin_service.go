package services

import (
	"context"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

// AdminService backs the moderation endpoints. Callers must already have
// checked the admin flag.
type AdminService struct {
	users    repositories.UserRepository
	personas repositories.PersonaRepository
	actors   repositories.ActorRepository
	posts    repositories.PostRepository
	postSvc  *PostService
}

func NewAdminService(repos repositories.Set, postSvc *PostService) *AdminService {
	return &AdminService{users: repos.Users, personas: repos.Personas, actors: repos.Actors, posts: repos.Posts, postSvc: postSvc}
}

func (s *AdminService) SetUserBanned(ctx context.Context, userID uint, banned bool) error {
	return storeErr(s.users.SetUserBanned(ctx, userID, banned), apperr.NotFound("user"))
}

func (s *AdminService) SetPersonaBanned(ctx context.Context, personaID uint, banned bool) error {
	return storeErr(s.personas.SetPersonaBanned(ctx, personaID, banned), apperr.NotFound("persona"))
}

// TakeDown deletes any post with its engagements and comments.
func (s *AdminService) TakeDown(ctx context.Context, admin *models.Actor, postID string) error {
	return s.postSvc.DeletePost(ctx, postID, Viewer{Actor: admin, IsAdmin: true})
}

// PostAuthor describes who is really behind a post.
type PostAuthor struct {
	PostID  string             `json:"post_id"`
	Author  models.AuthorView  `json:"author"`
	User    models.UserProfile `json:"user"`
	Persona *models.Persona    `json:"persona,omitempty"`
}

// RealAuthor resolves a post to the user behind it, persona or not.
func (s *AdminService) RealAuthor(ctx context.Context, postID string) (*PostAuthor, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("post"))
	}
	identities, err := s.actors.GetIdentities(ctx, []uint{post.AuthorActorID})
	if err != nil {
		return nil, storeErr(err, nil)
	}
	identity, ok := identities[post.AuthorActorID]
	if !ok {
		return nil, apperr.NotFound("author")
	}

	out := &PostAuthor{PostID: postID, Author: renderAuthor(identity, Viewer{IsAdmin: true})}
	user := identity.User
	if identity.Persona != nil {
		out.Persona = identity.Persona
		if user, err = s.users.GetUserByID(ctx, identity.Persona.UserID); err != nil {
			return nil, storeErr(err, apperr.NotFound("user"))
		}
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	realActor, err := s.actors.GetActorByUserID(ctx, user.ID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("user"))
	}
	out.User = models.UserProfile{ID: user.ID, ActorID: realActor.ID, Name: user.Name, ProfileImage: user.ProfileImage}
	return out, nil
}
