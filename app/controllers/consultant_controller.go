package controllers

import (
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
)

type ConsultantController struct {
	consultations *services.ConsultationService
}

func NewConsultantController(s *services.ConsultationService) *ConsultantController {
	return &ConsultantController{consultations: s}
}

func (k *ConsultantController) Available(c *ctx.Context) {
	list, err := k.consultations.Available(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(list)
}

func (k *ConsultantController) Mine(c *ctx.Context) {
	list, err := k.consultations.ListForConsultant(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(list)
}

func (k *ConsultantController) Show(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	cons, err := k.consultations.DetailForConsultant(c.Context(), consultationID, c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cons)
}

func (k *ConsultantController) Claim(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	cons, err := k.consultations.Claim(c.Context(), consultationID, c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Consultation claimed", cons)
}

type respondInput struct {
	Response string `json:"response" validate:"required"`
}

func (k *ConsultantController) Respond(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	var in respondInput
	if !c.BindJSON(&in) {
		return
	}
	cons, err := k.consultations.Respond(c.Context(), consultationID, c.UserID(), in.Response)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Response submitted", cons)
}

func (k *ConsultantController) Stats(c *ctx.Context) {
	stats, err := k.consultations.Stats(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(stats)
}

func (k *ConsultantController) Specializations(c *ctx.Context) {
	rows, err := k.consultations.Specializations(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(rows)
}
