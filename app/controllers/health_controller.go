package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/krishi360/krishi/pkg/ctx"
)

type HealthController struct {
	ready func(context.Context) error
}

// NewHealthController reports healthy while ready returns nil.
func NewHealthController(ready func(context.Context) error) *HealthController {
	return &HealthController{ready: ready}
}

func (h *HealthController) Check(c *ctx.Context) {
	pctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := h.ready(pctx); err != nil {
		c.ErrorWithDetails(http.StatusServiceUnavailable, "unhealthy", map[string]string{"database": err.Error()})
		return
	}
	c.Success(map[string]string{"status": "ok", "database": "ok"})
}
