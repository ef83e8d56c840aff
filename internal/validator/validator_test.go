package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineInput struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1"`
}

type recipeInput struct {
	Name        string      `json:"name" validate:"required,notblank,max=200"`
	Username    string      `json:"username" validate:"omitempty,username"`
	Image       string      `json:"image" validate:"omitempty,image_data"`
	Ingredients []lineInput `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
}

func TestValidateAcceptsGoodInput(t *testing.T) {
	v := New()
	err := v.Validate(&recipeInput{
		Name:        "Pancakes",
		Username:    "chef.john+1",
		Image:       "data:image/png;base64,iVBORw0KGgo=",
		Ingredients: []lineInput{{ID: 1, Amount: 2}, {ID: 2, Amount: 150}},
	})
	assert.NoError(t, err)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(&recipeInput{
		Name:        "   ",
		Username:    "bad name!",
		Image:       "not-an-image",
		Ingredients: []lineInput{{ID: 1, Amount: 0}},
	})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must not be blank", vErr.Errors["name"])
	assert.Contains(t, vErr.Errors, "username")
	assert.Contains(t, vErr.Errors, "image")
	assert.Contains(t, vErr.Errors, "ingredients[0].amount")
}

func TestValidateRejectsDuplicateIngredients(t *testing.T) {
	v := New()
	err := v.Validate(&recipeInput{
		Name:        "Soup",
		Ingredients: []lineInput{{ID: 3, Amount: 1}, {ID: 3, Amount: 2}},
	})
	require.Error(t, err)
	vErr := err.(*ValidationError)
	assert.Equal(t, "Must not contain duplicates", vErr.Errors["ingredients"])
}

func TestUsernameRejectsReservedMe(t *testing.T) {
	type in struct {
		Username string `json:"username" validate:"required,username"`
	}
	v := New()
	assert.Error(t, v.Validate(&in{Username: "me"}))
	assert.NoError(t, v.Validate(&in{Username: "meister"}))
}
