package services

import (
	"context"
	"strings"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

// FeedAssembler builds paginated, annotated post lists. Visibility is part
// of every store query so pages are never short because of filtering.
type FeedAssembler struct {
	posts       repositories.PostRepository
	actors      repositories.ActorRepository
	friendships repositories.FriendshipRepository
	engagements repositories.EngagementRepository
	comments    repositories.CommentRepository
	visibility  *VisibilityEngine
}

func NewFeedAssembler(repos repositories.Set, visibility *VisibilityEngine) *FeedAssembler {
	return &FeedAssembler{
		posts:       repos.Posts,
		actors:      repos.Actors,
		friendships: repos.Friendships,
		engagements: repos.Engagements,
		comments:    repos.Comments,
		visibility:  visibility,
	}
}

// PublicFeed lists public posts only, whoever is asking.
func (f *FeedAssembler) PublicFeed(ctx context.Context, viewer Viewer, p models.Pagination) (*models.FeedPage, error) {
	return f.page(ctx, repositories.PostFilter{PublicOnly: true}, viewer, p)
}

// ActorFeed lists posts by target and its friends. The viewer must be the
// target or one of its friends.
func (f *FeedAssembler) ActorFeed(ctx context.Context, viewer Viewer, targetActorID uint, p models.Pagination) (*models.FeedPage, error) {
	if viewer.Actor == nil {
		return nil, apperr.ErrNotAuthorized
	}
	if _, err := f.actors.GetActorByID(ctx, targetActorID); err != nil {
		return nil, storeErr(err, apperr.NotFound("actor"))
	}
	if viewer.Actor.ID != targetActorID {
		ok, err := f.friendships.AreFriends(ctx, viewer.Actor.ID, targetActorID)
		if err != nil {
			return nil, storeErr(err, nil)
		}
		if !ok {
			return nil, apperr.ErrNotAuthorized.WithMessage("only the actor and its friends can view this feed")
		}
	}

	friends, err := f.friendships.GetFriendIDs(ctx, targetActorID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	filter, err := f.visibility.Filter(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter.AuthorIDs = append([]uint{targetActorID}, friends...)
	return f.page(ctx, filter, viewer, p)
}

// SearchByAuthorName lists posts whose author's shown name matches. Persona
// posts match on the display name only, real-identity posts on the real
// name only.
func (f *FeedAssembler) SearchByAuthorName(ctx context.Context, viewer Viewer, name string, p models.Pagination) (*models.FeedPage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	ids, err := f.actors.FindActorIDsByName(ctx, name)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	filter, err := f.visibility.Filter(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter.AuthorIDs = nonNil(ids)
	return f.page(ctx, filter, viewer, p)
}

// SavedFeed lists the posts actor has saved that it can still see.
func (f *FeedAssembler) SavedFeed(ctx context.Context, actor *models.Actor, p models.Pagination) (*models.FeedPage, error) {
	ids, err := f.engagements.ListEngagedPostIDs(ctx, models.EngagementSave, actor.ID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	viewer := AsViewer(actor)
	filter, err := f.visibility.Filter(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter.PostIDs = nonNil(ids)
	return f.page(ctx, filter, viewer, p)
}

// PostDetail returns one annotated post, NotFound when hidden from viewer.
func (f *FeedAssembler) PostDetail(ctx context.Context, postID string, viewer Viewer) (*models.PostView, error) {
	post, err := f.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("post"))
	}
	ok, err := f.visibility.IsVisible(ctx, post, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("post")
	}
	views, err := f.Annotate(ctx, []models.Post{*post}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (f *FeedAssembler) page(ctx context.Context, filter repositories.PostFilter, viewer Viewer, p models.Pagination) (*models.FeedPage, error) {
	total, err := f.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	posts, err := f.posts.FindPosts(ctx, filter, p.Skip(), int64(p.Limit))
	if err != nil {
		return nil, storeErr(err, nil)
	}
	views, err := f.Annotate(ctx, posts, viewer)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{Posts: views, Meta: models.NewPageMeta(p, total)}, nil
}

// Annotate attaches author views, live counts and the viewer's own flags.
func (f *FeedAssembler) Annotate(ctx context.Context, posts []models.Post, viewer Viewer) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}
	postIDs := make([]string, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID.Hex())
		authorIDs = append(authorIDs, p.AuthorActorID)
	}

	authors, err := f.visibility.ResolveAuthorViews(ctx, authorIDs, viewer)
	if err != nil {
		return nil, err
	}
	likes, err := f.engagements.CountEngagementsByPosts(ctx, models.EngagementLike, postIDs)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	reposts, err := f.engagements.CountEngagementsByPosts(ctx, models.EngagementRepost, postIDs)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	comments, err := f.comments.CountCommentsByPosts(ctx, postIDs)
	if err != nil {
		return nil, storeErr(err, nil)
	}

	flags := make(map[models.EngagementKind]map[string]bool, len(models.EngagementKinds))
	if viewer.Actor != nil {
		for _, kind := range models.EngagementKinds {
			flags[kind], err = f.engagements.EngagedPostIDs(ctx, kind, viewer.Actor.ID, postIDs)
			if err != nil {
				return nil, storeErr(err, nil)
			}
		}
	}

	for _, p := range posts {
		id := p.ID.Hex()
		views = append(views, models.PostView{
			ID:            id,
			Content:       p.Content,
			ImageURL:      p.ImageURL,
			Location:      p.Location,
			Visibility:    p.Visibility,
			Author:        authors[p.AuthorActorID],
			LikesCount:    likes[id],
			RepostsCount:  reposts[id],
			CommentsCount: comments[id],
			IsLiked:       flags[models.EngagementLike][id],
			IsReposted:    flags[models.EngagementRepost][id],
			IsSaved:       flags[models.EngagementSave][id],
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}
	return views, nil
}

// nonNil turns a nil result into an empty slice so the filter matches
// nothing instead of everything.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
