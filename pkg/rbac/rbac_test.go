package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krishi360/krishi/pkg/middleware"
)

func TestHasRole(t *testing.T) {
	h := HasRole("farmer", "admin")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		role string
		auth bool
		want int
	}{
		{"anonymous", "", false, http.StatusUnauthorized},
		{"wrong role", "buyer", true, http.StatusForbidden},
		{"farmer", "farmer", true, http.StatusNoContent},
		{"admin", "admin", true, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.auth {
				req = req.WithContext(middleware.WithIdentity(req.Context(), 1, tc.role))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
