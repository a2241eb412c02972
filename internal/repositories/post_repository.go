package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/campus-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	// FindPosts returns matching posts ordered by created_at then id, both
	// descending.
	FindPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes backing feed queries.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_actor_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, post)
	return translate(err)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// UpdatePost updates the mutable fields of a post. The author is never rewritten.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"content":    post.Content,
			"image_url":  post.ImageURL,
			"location":   post.Location,
			"visibility": post.Visibility,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) FindPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, postFilterQuery(filter), findOptions)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, postFilterQuery(filter))
}

func postFilterQuery(f PostFilter) bson.M {
	and := bson.A{}
	if f.AuthorIDs != nil {
		and = append(and, bson.M{"author_actor_id": bson.M{"$in": f.AuthorIDs}})
	}
	if f.PostIDs != nil {
		ids := make([]primitive.ObjectID, 0, len(f.PostIDs))
		for _, hex := range f.PostIDs {
			if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
				ids = append(ids, oid)
			}
		}
		and = append(and, bson.M{"_id": bson.M{"$in": ids}})
	}
	public := bson.M{"visibility": models.VisibilityPublic}
	if f.PublicOnly || len(f.CircleIDs) == 0 {
		and = append(and, public)
	} else {
		and = append(and, bson.M{"$or": bson.A{
			public,
			bson.M{"author_actor_id": bson.M{"$in": f.CircleIDs}},
		}})
	}
	return bson.M{"$and": and}
}
