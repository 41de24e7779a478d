package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Label string `json:"label" validate:"required"`
}

type form struct {
	Name   string `json:"name" validate:"required,max=10"`
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"oneof=a b"`
	Stock  int    `json:"stock" validate:"gte=0"`
	Date   string `json:"date" validate:"date"`
	Button bool   `json:"button"`
	Link   string `json:"link" validate:"required_if=Button true"`
	Items  []item `json:"items" validate:"min=1,dive"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := Struct(form{
			Name: "ok", Email: "a@b.co", Status: "a", Date: "2025-09-01",
			Items: []item{{Label: "x"}},
		})
		assert.NoError(t, err)
	})

	t.Run("collects field errors by json name", func(t *testing.T) {
		err := Struct(form{
			Name: "this name is too long", Email: "nope", Status: "c", Stock: -1,
			Date: "09/01/2025", Button: true, Items: []item{{}},
		})
		ve, ok := As(err)
		require.True(t, ok)

		assert.Equal(t, "must be at most 10 characters", ve.Fields["name"])
		assert.Equal(t, "must be a valid email", ve.Fields["email"])
		assert.Equal(t, "must be one of: a b", ve.Fields["status"])
		assert.Equal(t, "must be greater than or equal to 0", ve.Fields["stock"])
		assert.Equal(t, "must be a date (YYYY-MM-DD)", ve.Fields["date"])
		assert.Equal(t, "is required", ve.Fields["link"])
		assert.Equal(t, "is required", ve.Fields["items[0].label"])
	})

	t.Run("empty slice", func(t *testing.T) {
		err := Struct(form{Name: "ok", Email: "a@b.co", Status: "b"})
		ve, ok := As(err)
		require.True(t, ok)
		assert.Equal(t, "must contain at least 1 item(s)", ve.Fields["items"])
	})
}

func TestError(t *testing.T) {
	err := &Error{Fields: map[string]string{"b": "is required", "a": "is invalid"}}
	assert.Equal(t, "a is invalid; b is required", err.Error())

	wrapped := fmt.Errorf("create: %w", Field("name", "is required"))
	ve, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "is required", ve.Fields["name"])

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
