// Package ctx wraps a request/response pair for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func ShowCrop(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.Success(crop)
//	}
//
//	router.Get("/crops/{id}", "crops.show", ctx.Wrap(ShowCrop))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/krishi360/krishi/pkg/bind"
	"github.com/krishi360/krishi/pkg/middleware"
	"github.com/krishi360/krishi/pkg/orm"
	"github.com/krishi360/krishi/pkg/response"
	"github.com/krishi360/krishi/pkg/session"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context is valid only for the duration of the handler call.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/crops/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive integer path parameter.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// QueryBool returns nil when the parameter is absent or not a boolean.
func (c *Context) QueryBool(key string) *bool {
	b, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &b
}

// QueryInt returns def when the parameter is absent or not an integer.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// Page reads ?page= and ?per_page=.
func (c *Context) Page() orm.Page { return orm.PageFromRequest(c.R) }

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// UserID is the authenticated user's id, 0 for anonymous requests.
func (c *Context) UserID() uint {
	id, _ := middleware.UserIDFromCtx(c.R)
	return id
}

// Role is the authenticated user's role, "" for anonymous requests.
func (c *Context) Role() string {
	role, _ := middleware.RoleFromCtx(c.R)
	return role
}

// Session returns the request's session.
func (c *Context) Session() *session.Session { return session.FromCtx(c.R) }

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// On validation failure it sends a 422 and returns false; on a malformed
// body it sends a 400. Returns true only when dest is ready to use.
//
//	var input RegisterInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) Success(data any) { response.Success(c.W, data) }

func (c *Context) OK(message string, data any) { response.OK(c.W, message, data) }

func (c *Context) Created(data any) { response.Created(c.W, data) }

func (c *Context) Paginated(data any, p orm.Pagination) { response.Paginated(c.W, data, p) }

func (c *Context) Error(code int, message string) { response.Error(c.W, code, message) }

func (c *Context) ErrorWithDetails(code int, message string, details any) {
	response.ErrorWithDetails(c.W, code, message, details)
}

// ValidationError sends a 422 Unprocessable Entity with field-level errors.
func (c *Context) ValidationError(errs map[string]string) { response.ValidationError(c.W, errs) }

func (c *Context) BadRequest(message string) { response.BadRequest(c.W, message) }

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}
