package controllers

import (
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
)

type AdminController struct {
	admin         *services.AdminService
	crops         *services.CropService
	orders        *services.OrderService
	consultations *services.ConsultationService
}

func NewAdminController(admin *services.AdminService, crops *services.CropService, orders *services.OrderService, consultations *services.ConsultationService) *AdminController {
	return &AdminController{admin: admin, crops: crops, orders: orders, consultations: consultations}
}

func (a *AdminController) Users(c *ctx.Context) {
	users, page, err := a.admin.Users(c.Context(), repositories.UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(users, page)
}

func (a *AdminController) ToggleUser(c *ctx.Context) {
	userID, ok := id(c)
	if !ok {
		return
	}
	user, err := a.admin.ToggleUser(c.Context(), actor(c), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("User updated", user)
}

type roleInput struct {
	Role string `json:"role" validate:"required,oneof=farmer buyer consultant admin"`
}

func (a *AdminController) ChangeRole(c *ctx.Context) {
	userID, ok := id(c)
	if !ok {
		return
	}
	var in roleInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := a.admin.ChangeRole(c.Context(), actor(c), userID, in.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Role updated", user)
}

func (a *AdminController) Crops(c *ctx.Context) {
	crops, page, err := a.crops.AdminList(c.Context(), c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(crops, page)
}

func (a *AdminController) ToggleCrop(c *ctx.Context) {
	cropID, ok := id(c)
	if !ok {
		return
	}
	active, err := a.crops.ToggleActive(c.Context(), cropID)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Crop updated", map[string]any{"id": cropID, "is_active": active})
}

func (a *AdminController) Orders(c *ctx.Context) {
	orders, page, err := a.orders.AdminList(c.Context(), repositories.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
	}, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(orders, page)
}

func (a *AdminController) UpdateOrderStatus(c *ctx.Context) {
	orderID, ok := id(c)
	if !ok {
		return
	}
	var in statusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := a.orders.UpdateStatus(c.Context(), orderID, actor(c), models.OrderStatus(in.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Order status updated", order)
}

type paymentInput struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=paid failed refunded"`
}

func (a *AdminController) UpdatePayment(c *ctx.Context) {
	orderID, ok := id(c)
	if !ok {
		return
	}
	var in paymentInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := a.orders.UpdatePayment(c.Context(), orderID, models.PaymentStatus(in.PaymentStatus))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Payment status updated", order)
}

func (a *AdminController) CancelOrder(c *ctx.Context) {
	orderID, ok := id(c)
	if !ok {
		return
	}
	order, err := a.orders.Cancel(c.Context(), orderID, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Order cancelled", order)
}

func (a *AdminController) Consultations(c *ctx.Context) {
	list, page, err := a.consultations.AdminList(c.Context(), repositories.ConsultationFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(list, page)
}

type assignInput struct {
	ConsultantID uint `json:"consultant_id" validate:"required"`
}

func (a *AdminController) Assign(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	var in assignInput
	if !c.BindJSON(&in) {
		return
	}
	cons, err := a.consultations.Assign(c.Context(), consultationID, in.ConsultantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Consultant assigned", cons)
}

func (a *AdminController) Unassign(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	cons, err := a.consultations.Unassign(c.Context(), consultationID)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Consultant unassigned", cons)
}

func (a *AdminController) CancelConsultation(c *ctx.Context) {
	consultationID, ok := id(c)
	if !ok {
		return
	}
	cons, err := a.consultations.Cancel(c.Context(), consultationID)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Consultation cancelled", cons)
}

func (a *AdminController) Report(c *ctx.Context) {
	rep, err := a.admin.Report(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(rep)
}
