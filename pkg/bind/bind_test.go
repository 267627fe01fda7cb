package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Email    string  `json:"email"    validate:"required,email"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Role     string  `json:"role"     validate:"oneof=farmer buyer"`
}

func TestJSON_ValidationKeyedByJSONName(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","quantity":0,"role":"admin"}`))

	var in input
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Equal(t, "must be a valid email address", errs["email"])
	assert.Equal(t, "must be greater than 0", errs["quantity"])
	assert.Equal(t, "must be one of: farmer, buyer", errs["role"])
}

func TestJSON_Valid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","quantity":2.5,"role":"buyer"}`))

	var in input
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, 2.5, in.Quantity)
}

func TestJSON_Malformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":`))
	var in input
	_, err := JSON(req, &in)
	assert.ErrorContains(t, err, "invalid JSON")
}
