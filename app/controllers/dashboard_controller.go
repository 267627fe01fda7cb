package controllers

import (
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
)

// DashboardController serves the signed-in user's landing summary. Routes
// mount each handler behind the matching role gate.
type DashboardController struct {
	dashboards *services.DashboardService
}

func NewDashboardController(s *services.DashboardService) *DashboardController {
	return &DashboardController{dashboards: s}
}

func (d *DashboardController) Farmer(c *ctx.Context) {
	out, err := d.dashboards.Farmer(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}

func (d *DashboardController) Buyer(c *ctx.Context) {
	out, err := d.dashboards.Buyer(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}

func (d *DashboardController) Consultant(c *ctx.Context) {
	out, err := d.dashboards.Consultant(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}
