// Package controllers adapts HTTP requests to service calls. Authorization
// has already been decided by the route's role gate when a handler runs.
package controllers

import (
	"errors"
	"net/http"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
	"github.com/krishi360/krishi/pkg/logger"
)

// fail maps a service error onto the response:
//
//	ValidationError            422
//	InsufficientInventoryError 409
//	ConflictError              409
//	InvalidStateError          409
//	NotFoundError              404
//	anything else              500
func fail(c *ctx.Context, err error) {
	var (
		verr *errorx.ValidationError
		ierr *errorx.InsufficientInventoryError
		cerr *errorx.ConflictError
		serr *errorx.InvalidStateError
		nerr *errorx.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) > 0 {
			c.ErrorWithDetails(http.StatusUnprocessableEntity, verr.Message, verr.Fields)
			return
		}
		c.Error(http.StatusUnprocessableEntity, verr.Message)
	case errors.As(err, &ierr):
		c.ErrorWithDetails(http.StatusConflict, ierr.Error(), map[string]any{
			"crop_id":   ierr.CropID,
			"crop_name": ierr.CropName,
			"requested": ierr.Requested,
			"available": ierr.Available,
		})
	case errors.As(err, &cerr):
		c.Error(http.StatusConflict, cerr.Message)
	case errors.As(err, &serr):
		c.ErrorWithDetails(http.StatusConflict, serr.Error(), map[string]string{"state": serr.State})
	case errors.As(err, &nerr):
		c.NotFound(nerr.Error())
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}

func actor(c *ctx.Context) services.Actor {
	return services.Actor{UserID: c.UserID(), Role: c.Role()}
}

// id reads the {id} path parameter, answering 404 when it is not a valid id.
func id(c *ctx.Context) (uint, bool) {
	n, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
	}
	return n, ok
}
