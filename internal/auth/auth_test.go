package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("other-pass", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short", ""), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("1234567890", ""), ErrPasswordNumeric)
	assert.ErrorIs(t, ValidatePassword("ChefJohnny", "chefjohnny"), ErrPasswordLikeUser)
	assert.NoError(t, ValidatePassword("correct-horse", "chef"))
}

func TestTokenGenerateAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, claims, err := m.GenerateToken(42, "chef")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, "chef", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.Equal(t, "42", parsed.Subject())
}

func TestParseTokenRejectsForeignAndExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, _, err := m.GenerateToken(1, "chef")
	require.NoError(t, err)

	other := NewTokenManager("other-secret", time.Hour)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRedisRevocationStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisRevocationStore(client)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, store.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, _ := store.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = store.IsRevoked(ctx, "stale")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = store.IsRevoked(ctx, "a")
	assert.False(t, revoked)
}

func TestPolicy(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	tests := []struct {
		role, resource, action, owner string
		want                          bool
	}{
		{RoleAnonymous, ResourceRecipe, ActionRead, OwnerAny, true},
		{RoleAnonymous, ResourceRecipe, ActionCreate, OwnerAny, false},
		{RoleAnonymous, ResourceFavorite, ActionCreate, OwnerAny, false},
		{RoleAnonymous, ResourceUser, ActionCreate, OwnerAny, true},
		{RoleUser, ResourceRecipe, ActionRead, OwnerAny, true},
		{RoleUser, ResourceRecipe, ActionCreate, OwnerAny, true},
		{RoleUser, ResourceRecipe, ActionUpdate, OwnerSelf, true},
		{RoleUser, ResourceRecipe, ActionUpdate, OwnerOther, false},
		{RoleUser, ResourceRecipe, ActionDelete, OwnerOther, false},
		{RoleUser, ResourceShoppingCart, ActionRead, OwnerAny, true},
		{RoleUser, ResourceProfile, ActionUpdate, OwnerSelf, true},
	}
	for _, tt := range tests {
		got := p.Allowed(tt.role, tt.resource, tt.action, tt.owner)
		assert.Equal(t, tt.want, got, "%s %s %s %s", tt.role, tt.resource, tt.action, tt.owner)
	}

	assert.Equal(t, RoleAnonymous, RoleFor(0))
	assert.Equal(t, RoleUser, RoleFor(3))
	assert.Equal(t, OwnerSelf, Ownership(3, 3))
	assert.Equal(t, OwnerOther, Ownership(3, 4))
	assert.Equal(t, OwnerOther, Ownership(0, 0))
}
