package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

const MaxPostLength = 500

type PostService struct {
	posts       repositories.PostRepository
	engagements repositories.EngagementRepository
	comments    repositories.CommentRepository
	resolver    *ActorResolver
	gate        *AnonymityGate
	visibility  *VisibilityEngine
}

func NewPostService(repos repositories.Set, resolver *ActorResolver, gate *AnonymityGate, visibility *VisibilityEngine) *PostService {
	return &PostService{
		posts:       repos.Posts,
		engagements: repos.Engagements,
		comments:    repos.Comments,
		resolver:    resolver,
		gate:        gate,
		visibility:  visibility,
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	if n == 0 {
		return "", apperr.Validation("content is required")
	}
	if n > MaxPostLength {
		return "", apperr.Validation("content must be at most 500 characters")
	}
	return content, nil
}

func parseVisibility(v string) (models.Visibility, error) {
	switch models.Visibility(v) {
	case "", models.VisibilityPublic:
		return models.VisibilityPublic, nil
	case models.VisibilityFriends:
		return models.VisibilityFriends, nil
	}
	return "", apperr.Validation("visibility must be public or friends")
}

// CreatePost publishes a post as actor. Persona posts pass the anonymity
// gate for the persona's owner first.
func (s *PostService) CreatePost(ctx context.Context, actor *models.Actor, req models.CreatePostRequest) (*models.Post, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}
	visibility, err := parseVisibility(req.Visibility)
	if err != nil {
		return nil, err
	}
	if actor.IsPersona() {
		owner, err := s.resolver.OwnerUserID(ctx, actor)
		if err != nil {
			return nil, err
		}
		if _, err := s.gate.AuthorizeAnonymousPost(ctx, owner); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		AuthorActorID: actor.ID,
		Content:       content,
		ImageURL:      req.ImageURL,
		Location:      req.Location,
		Visibility:    visibility,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storeErr(err, nil)
	}
	return post, nil
}

// GetPost returns the post when the viewer may see it. Hidden posts are
// reported as missing.
func (s *PostService) GetPost(ctx context.Context, id string, viewer Viewer) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("post"))
	}
	ok, err := s.visibility.IsVisible(ctx, post, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("post")
	}
	return post, nil
}

// UpdatePost edits a post. Only the authoring actor may edit; admins
// cannot.
func (s *PostService) UpdatePost(ctx context.Context, id string, actor *models.Actor, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.GetPost(ctx, id, AsViewer(actor))
	if err != nil {
		return nil, err
	}
	if post.AuthorActorID != actor.ID {
		return nil, apperr.ErrNotAuthorized.WithMessage("only the author can edit this post")
	}

	if req.Content != "" {
		if post.Content, err = validateContent(req.Content); err != nil {
			return nil, err
		}
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if req.Location != nil {
		post.Location = *req.Location
	}
	if req.Visibility != "" {
		if post.Visibility, err = parseVisibility(req.Visibility); err != nil {
			return nil, err
		}
	}
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, storeErr(err, apperr.NotFound("post"))
	}
	return post, nil
}

// DeletePost removes a post with its engagements and comments. The author
// actor or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, id string, viewer Viewer) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return storeErr(err, apperr.NotFound("post"))
	}
	if !viewer.IsAdmin {
		if viewer.Actor == nil {
			return apperr.ErrNotAuthorized
		}
		if post.AuthorActorID != viewer.Actor.ID {
			// Hidden posts stay hidden even to a would-be deleter.
			if ok, err := s.visibility.IsVisible(ctx, post, viewer); err != nil {
				return err
			} else if !ok {
				return apperr.NotFound("post")
			}
			return apperr.ErrNotAuthorized.WithMessage("only the author can delete this post")
		}
	}

	// Relations go first so a failure never leaves rows pointing at a
	// deleted post.
	if err := s.engagements.DeleteEngagementsByPost(ctx, id); err != nil {
		return storeErr(err, nil)
	}
	if err := s.comments.DeleteCommentsByPost(ctx, id); err != nil {
		return storeErr(err, nil)
	}
	return storeErr(s.posts.DeletePost(ctx, id), apperr.NotFound("post"))
}
