package repositories

import (
	"testing"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPostFilterMatches(t *testing.T) {
	public := &models.Post{ID: primitive.NewObjectID(), AuthorActorID: 1, Visibility: models.VisibilityPublic}
	friendsOnly := &models.Post{ID: primitive.NewObjectID(), AuthorActorID: 1, Visibility: models.VisibilityFriends}

	tests := []struct {
		name   string
		filter PostFilter
		post   *models.Post
		want   bool
	}{
		{"public passes empty filter", PostFilter{}, public, true},
		{"friends-only hidden without circle", PostFilter{}, friendsOnly, false},
		{"friends-only shown to circle", PostFilter{CircleIDs: []uint{1, 2}}, friendsOnly, true},
		{"public only drops friends posts", PostFilter{CircleIDs: []uint{1}, PublicOnly: true}, friendsOnly, false},
		{"author restriction", PostFilter{AuthorIDs: []uint{2}}, public, false},
		{"empty author set matches nothing", PostFilter{AuthorIDs: []uint{}}, public, false},
		{"post id restriction", PostFilter{PostIDs: []string{public.ID.Hex()}}, public, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.post))
		})
	}
}

func TestPostFilterQuery(t *testing.T) {
	q := postFilterQuery(PostFilter{AuthorIDs: []uint{3}, CircleIDs: []uint{3, 4}})

	and, ok := q["$and"].(bson.A)
	assert.True(t, ok)
	assert.Len(t, and, 2)
	assert.Equal(t, bson.M{"author_actor_id": bson.M{"$in": []uint{3}}}, and[0])
}
