package middleware

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

// FirebaseIdentity is what a verified Firebase ID token says about its
// holder.
type FirebaseIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// FirebaseVerifier accepts Firebase ID tokens for users that have already
// logged in through /auth/firebase-login.
type FirebaseVerifier struct {
	client *auth.Client
	users  repositories.UserRepository
}

func NewFirebaseVerifier(client *auth.Client, users repositories.UserRepository) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

// Identify verifies an ID token without requiring a local account.
func (v *FirebaseVerifier) Identify(ctx context.Context, idToken string) (*FirebaseIdentity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	id := &FirebaseIdentity{UID: token.UID}
	id.Email, _ = token.Claims["email"].(string)
	id.Name, _ = token.Claims["name"].(string)
	id.Picture, _ = token.Claims["picture"].(string)
	return id, nil
}

func (v *FirebaseVerifier) VerifyToken(ctx context.Context, idToken string) (*Principal, error) {
	id, err := v.Identify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	user, err := v.users.GetUserByFirebaseUID(ctx, id.UID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errors.New("firebase user has not logged in yet")
	}
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: user.ID, Email: user.Email}, nil
}
