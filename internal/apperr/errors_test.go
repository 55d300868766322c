package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("name is required"), http.StatusBadRequest},
		{"conflict", Conflict("sku %s exists", "P1"), http.StatusBadRequest},
		{"not found", NotFound("order not found"), http.StatusNotFound},
		{"persistence", Persistence(errors.New("dial tcp"), "save product"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("x")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPersistence_Unwrap(t *testing.T) {
	root := errors.New("connection refused")
	err := Persistence(root, "list products")

	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, root)
	assert.Equal(t, "list products: connection refused", err.Error())
	assert.Equal(t, "list products", PublicMessage(err))
	assert.Nil(t, Persistence(nil, "noop"))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "sku already exists", PublicMessage(Conflict("sku already exists")))
	assert.Equal(t, "internal error", PublicMessage(errors.New("secret driver detail")))
}
