package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/krishi360/krishi/pkg/ctx"
	"github.com/krishi360/krishi/pkg/middleware"
)

func serve(t *testing.T, pattern, target, body string, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Post(pattern, appctx.Wrap(h))
	r.Get(pattern, appctx.Wrap(h))

	method := http.MethodGet
	if body != "" {
		method = http.MethodPost
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := serve(t, "/", "/", "", func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(200), body["status"])
	assert.Equal(t, map[string]any{"id": float64(1)}, body["data"])
}

func TestParamUint(t *testing.T) {
	var got uint
	var ok bool
	serve(t, "/crops/{id}", "/crops/42", "", func(c *appctx.Context) {
		got, ok = c.ParamUint("id")
	})
	assert.True(t, ok)
	assert.Equal(t, uint(42), got)

	for _, bad := range []string{"0", "-1", "abc"} {
		serve(t, "/crops/{id}", "/crops/"+bad, "", func(c *appctx.Context) {
			_, ok = c.ParamUint("id")
		})
		assert.False(t, ok, bad)
	}
}

func TestQueryHelpers(t *testing.T) {
	serve(t, "/", "/?organic=true&limit=7&page=3&per_page=500", "", func(c *appctx.Context) {
		require.NotNil(t, c.QueryBool("organic"))
		assert.True(t, *c.QueryBool("organic"))
		assert.Nil(t, c.QueryBool("missing"))
		assert.Equal(t, 7, c.QueryInt("limit", 20))
		assert.Equal(t, 20, c.QueryInt("missing", 20))

		p := c.Page()
		assert.Equal(t, 3, p.Number)
		assert.Equal(t, 100, p.PerPage)
	})
}

func TestBindJSON(t *testing.T) {
	type input struct {
		Name  string `json:"name"  validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	rec := serve(t, "/", "/", `{"name":"Asha","email":"asha@example.com"}`, func(c *appctx.Context) {
		var in input
		require.True(t, c.BindJSON(&in))
		assert.Equal(t, "Asha", in.Name)
		c.Success(nil)
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, "/", "/", `{"name":""}`, func(c *appctx.Context) {
		var in input
		assert.False(t, c.BindJSON(&in))
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email"`)

	rec = serve(t, "/", "/", `{not json`, func(c *appctx.Context) {
		var in input
		assert.False(t, c.BindJSON(&in))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdentity(t *testing.T) {
	h := appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, uint(9), c.UserID())
		assert.Equal(t, "buyer", c.Role())
		c.Success(nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), 9, "buyer"))
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
