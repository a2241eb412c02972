package services

import (
	"context"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

type CommentService struct {
	comments   repositories.CommentRepository
	posts      repositories.PostRepository
	visibility *VisibilityEngine
	notifier   *NotificationService
}

func NewCommentService(repos repositories.Set, visibility *VisibilityEngine, notifier *NotificationService) *CommentService {
	return &CommentService{comments: repos.Comments, posts: repos.Posts, visibility: visibility, notifier: notifier}
}

func (s *CommentService) visiblePost(ctx context.Context, postID string, viewer Viewer) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
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

// Create comments on a post the actor can see.
func (s *CommentService) Create(ctx context.Context, actor *models.Actor, postID, content string) (*models.CommentView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	viewer := AsViewer(actor)
	post, err := s.visiblePost(ctx, postID, viewer)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, AuthorActorID: actor.ID, Content: content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, storeErr(err, nil)
	}
	s.notifier.Notify(ctx, models.NotificationComment, actor.ID, post.AuthorActorID, postID, "post", "commented on your post")
	return s.view(ctx, comment, viewer)
}

// List returns a post's comments, oldest first.
func (s *CommentService) List(ctx context.Context, postID string, viewer Viewer) ([]models.CommentView, error) {
	if _, err := s.visiblePost(ctx, postID, viewer); err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorActorID)
	}
	authors, err := s.visibility.ResolveAuthorViews(ctx, ids, viewer)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView(&c, authors[c.AuthorActorID]))
	}
	return views, nil
}

// Update edits a comment. Only its author actor may edit.
func (s *CommentService) Update(ctx context.Context, actor *models.Actor, commentID uint, content string) (*models.CommentView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("comment"))
	}
	if comment.AuthorActorID != actor.ID {
		return nil, apperr.ErrNotAuthorized.WithMessage("only the author can edit this comment")
	}
	comment.Content = content
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, storeErr(err, apperr.NotFound("comment"))
	}
	return s.view(ctx, comment, AsViewer(actor))
}

// Delete removes a comment. Its author, the post's author or an admin may
// delete.
func (s *CommentService) Delete(ctx context.Context, viewer Viewer, commentID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return storeErr(err, apperr.NotFound("comment"))
	}
	if !viewer.IsAdmin && comment.AuthorActorID != viewer.ActorID() {
		post, err := s.posts.GetPostByID(ctx, comment.PostID)
		if err != nil {
			return storeErr(err, apperr.NotFound("post"))
		}
		if post.AuthorActorID != viewer.ActorID() {
			return apperr.ErrNotAuthorized.WithMessage("not allowed to delete this comment")
		}
	}
	return storeErr(s.comments.DeleteComment(ctx, commentID), nil)
}

func (s *CommentService) view(ctx context.Context, c *models.Comment, viewer Viewer) (*models.CommentView, error) {
	author, err := s.visibility.ResolveAuthorView(ctx, c.AuthorActorID, viewer)
	if err != nil {
		return nil, err
	}
	v := commentView(c, author)
	return &v, nil
}

func commentView(c *models.Comment, author models.AuthorView) models.CommentView {
	return models.CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		Author:    author,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
