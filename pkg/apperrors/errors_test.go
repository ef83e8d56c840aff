package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailsDoesNotMutateShared(t *testing.T) {
	withDetails := ErrRecipeNotFound.WithDetails("id=7")

	assert.Nil(t, ErrRecipeNotFound.Details)
	assert.Equal(t, "id=7", withDetails.Details)
	assert.True(t, errors.Is(withDetails, ErrRecipeNotFound))
	assert.False(t, errors.Is(withDetails, ErrNotInCart))
}

func TestWrappedAppErrorMatches(t *testing.T) {
	cause := errors.New("boom")
	err := ErrNotFound(cause)

	assert.True(t, errors.Is(err, cause))

	appErr, ok := AsAppError(errors.Join(err))
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("app error keeps status and code", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		HandleError(c, ErrSelfSubscription)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, string(CodeInvalidOperation), body["error"]["code"])
		assert.Equal(t, "subscription", body["error"]["domain"])
	})

	t.Run("plain error hides details", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		HandleError(c, errors.New("dsn password leaked"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "leaked")
	})
}
