package validators

import (
	"testing"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(models.SignInRequest{Email: "a@campus.test", Password: "x"}))

	err := v.Validate(models.CreateLocalUserRequest{Name: "a", Email: "nope", Password: "short"})
	ae, ok := apperr.As(err)
	if assert.True(t, ok) {
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Contains(t, ae.Message, "name must be at least 2 characters")
		assert.Contains(t, ae.Message, "email must be a valid email")
		assert.Contains(t, ae.Message, "password must be at least 8 characters")
	}

	err = v.Validate(models.RespondFriendRequest{Action: "maybe"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
