package usecase

import (
	"context"
	"testing"

	"ampnm-backend/config"
	"ampnm-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerAccount(t *testing.T) {
	db := newTestDB(t, config.PortalModels...)
	secret := []byte("test-secret")
	uc := NewCustomerUsecase(repository.NewCustomerRepository(db), secret)
	ctx := context.Background()

	_, err := uc.Register(ctx, "Jane", "bad", "secret1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	c, err := uc.Register(ctx, "Jane", "jane@example.com", "secret1")
	require.NoError(t, err)
	_, err = uc.Register(ctx, "Jane", "jane@example.com", "secret1")
	assert.ErrorIs(t, err, ErrDuplicateCustomer)

	_, _, err = uc.Login(ctx, "jane@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, _, err := uc.Login(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.EqualValues(t, c.ID, claims["customer_id"])

	err = uc.UpdateProfile(ctx, c.ID, ProfileInput{FirstName: "Jane"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "First Name and Last Name are required.", verr.Message)

	require.NoError(t, uc.UpdateProfile(ctx, c.ID, ProfileInput{FirstName: "Jane", LastName: "Doe", Address: " 1 Main St "}))
	got, err := uc.Profile(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "1 Main St", got.Profile.Address)
}
