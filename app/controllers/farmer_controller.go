package controllers

import (
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
)

// FarmerController serves /api/farmer: the farmer's listings, the orders
// that include them and the farmer's consultations.
type FarmerController struct {
	crops         *services.CropService
	orders        *services.OrderService
	consultations *services.ConsultationService
}

func NewFarmerController(crops *services.CropService, orders *services.OrderService, consultations *services.ConsultationService) *FarmerController {
	return &FarmerController{crops: crops, orders: orders, consultations: consultations}
}

func (f *FarmerController) Crops(c *ctx.Context) {
	crops, err := f.crops.ListOwn(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(crops)
}

func (f *FarmerController) CreateCrop(c *ctx.Context) {
	var in services.CropInput
	if !c.BindJSON(&in) {
		return
	}
	crop, err := f.crops.Create(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(crop)
}

func (f *FarmerController) UpdateCrop(c *ctx.Context) {
	cropID, ok := id(c)
	if !ok {
		return
	}
	var in services.CropInput
	if !c.BindJSON(&in) {
		return
	}
	crop, err := f.crops.Update(c.Context(), c.UserID(), cropID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Crop updated", crop)
}

func (f *FarmerController) DeactivateCrop(c *ctx.Context) {
	cropID, ok := id(c)
	if !ok {
		return
	}
	if err := f.crops.Deactivate(c.Context(), c.UserID(), cropID); err != nil {
		fail(c, err)
		return
	}
	c.OK("Crop deactivated", nil)
}

func (f *FarmerController) Orders(c *ctx.Context) {
	orders, err := f.orders.ListForFarmer(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

type statusInput struct {
	Status string `json:"status" validate:"required"`
}

func (f *FarmerController) UpdateOrderStatus(c *ctx.Context) {
	orderID, ok := id(c)
	if !ok {
		return
	}
	var in statusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := f.orders.UpdateStatus(c.Context(), orderID, actor(c), models.OrderStatus(in.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Order status updated", order)
}

func (f *FarmerController) Consultations(c *ctx.Context) {
	list, err := f.consultations.ListForFarmer(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(list)
}

func (f *FarmerController) Consultation(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	cons, err := f.consultations.DetailForFarmer(c.Context(), consultationID, c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cons)
}

func (f *FarmerController) CreateConsultation(c *ctx.Context) {
	var in services.ConsultationInput
	if !c.BindJSON(&in) {
		return
	}
	cons, err := f.consultations.Create(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(cons)
}

type rateInput struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

func (f *FarmerController) RateConsultation(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	var in rateInput
	if !c.BindJSON(&in) {
		return
	}
	cons, err := f.consultations.Rate(c.Context(), consultationID, c.UserID(), in.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Thanks for your rating", cons)
}
