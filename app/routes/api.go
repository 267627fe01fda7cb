package routes

import (
	"net/http"

	"github.com/krishi360/krishi/app/controllers"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/pkg/ctx"
	"github.com/krishi360/krishi/pkg/middleware"
	"github.com/krishi360/krishi/pkg/rbac"
	"github.com/krishi360/krishi/pkg/router"
)

// Controllers is everything RegisterAPI mounts.
type Controllers struct {
	Auth          *controllers.AuthController
	Farmer        *controllers.FarmerController
	Buyer         *controllers.BuyerController
	Consultant    *controllers.ConsultantController
	Admin         *controllers.AdminController
	Dashboards    *controllers.DashboardController
	Notifications *controllers.NotificationController
	Health        *controllers.HealthController
	GraphQL       http.HandlerFunc
}

func RegisterAPI(r *router.Router, c Controllers) {
	r.Get("/healthz", "health", ctx.Wrap(c.Health.Check))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", "auth.register", ctx.Wrap(c.Auth.Register))
	auth.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))

	me := auth.Group("", middleware.Authenticate)
	me.Get("/me", "auth.me", ctx.Wrap(c.Auth.Me))
	me.Put("/me", "auth.me.update", ctx.Wrap(c.Auth.UpdateMe))
	me.Put("/password", "auth.password", ctx.Wrap(c.Auth.ChangePassword))

	signedIn := api.Group("", middleware.Authenticate)
	signedIn.Post("/graphql", "graphql", c.GraphQL)
	signedIn.Get("/notifications", "notifications.index", ctx.Wrap(c.Notifications.Index))
	signedIn.Post("/notifications/{id}/read", "notifications.read", ctx.Wrap(c.Notifications.MarkRead))

	farmer := api.Group("/farmer", middleware.Authenticate, rbac.HasRole(models.RoleFarmer))
	farmer.Get("/dashboard", "farmer.dashboard", ctx.Wrap(c.Dashboards.Farmer))
	farmer.Get("/crops", "farmer.crops", ctx.Wrap(c.Farmer.Crops))
	farmer.Post("/crops", "farmer.crops.store", ctx.Wrap(c.Farmer.CreateCrop))
	farmer.Put("/crops/{id}", "farmer.crops.update", ctx.Wrap(c.Farmer.UpdateCrop))
	farmer.Delete("/crops/{id}", "farmer.crops.deactivate", ctx.Wrap(c.Farmer.DeactivateCrop))
	farmer.Get("/orders", "farmer.orders", ctx.Wrap(c.Farmer.Orders))
	farmer.Patch("/orders/{id}/status", "farmer.orders.status", ctx.Wrap(c.Farmer.UpdateOrderStatus))
	farmer.Get("/consultations", "farmer.consultations", ctx.Wrap(c.Farmer.Consultations))
	farmer.Post("/consultations", "farmer.consultations.store", ctx.Wrap(c.Farmer.CreateConsultation))
	farmer.Get("/consultations/{id}", "farmer.consultations.show", ctx.Wrap(c.Farmer.Consultation))
	farmer.Post("/consultations/{id}/rate", "farmer.consultations.rate", ctx.Wrap(c.Farmer.RateConsultation))

	buyer := api.Group("/buyer", middleware.Authenticate, rbac.HasRole(models.RoleBuyer))
	buyer.Get("/dashboard", "buyer.dashboard", ctx.Wrap(c.Dashboards.Buyer))
	buyer.Get("/crops", "buyer.crops", ctx.Wrap(c.Buyer.Catalog))
	buyer.Get("/crops/{id}", "buyer.crops.show", ctx.Wrap(c.Buyer.Crop))
	buyer.Get("/cart", "buyer.cart", ctx.Wrap(c.Buyer.Cart))
	buyer.Post("/cart", "buyer.cart.add", ctx.Wrap(c.Buyer.AddToCart))
	buyer.Put("/cart", "buyer.cart.update", ctx.Wrap(c.Buyer.UpdateCart))
	buyer.Delete("/cart/{crop_id}", "buyer.cart.remove", ctx.Wrap(c.Buyer.RemoveFromCart))
	buyer.Post("/checkout", "buyer.checkout", ctx.Wrap(c.Buyer.Checkout))
	buyer.Get("/orders", "buyer.orders", ctx.Wrap(c.Buyer.Orders))
	buyer.Get("/orders/{id}", "buyer.orders.show", ctx.Wrap(c.Buyer.Order))
	buyer.Post("/orders/{id}/cancel", "buyer.orders.cancel", ctx.Wrap(c.Buyer.CancelOrder))

	consultant := api.Group("/consultant", middleware.Authenticate, rbac.HasRole(models.RoleConsultant))
	consultant.Get("/dashboard", "consultant.dashboard", ctx.Wrap(c.Dashboards.Consultant))
	consultant.Get("/consultations/available", "consultant.available", ctx.Wrap(c.Consultant.Available))
	consultant.Get("/consultations", "consultant.consultations", ctx.Wrap(c.Consultant.Mine))
	consultant.Get("/consultations/{id}", "consultant.consultations.show", ctx.Wrap(c.Consultant.Show))
	consultant.Post("/consultations/{id}/claim", "consultant.consultations.claim", ctx.Wrap(c.Consultant.Claim))
	consultant.Post("/consultations/{id}/respond", "consultant.consultations.respond", ctx.Wrap(c.Consultant.Respond))
	consultant.Get("/stats", "consultant.stats", ctx.Wrap(c.Consultant.Stats))
	consultant.Get("/specializations", "consultant.specializations", ctx.Wrap(c.Consultant.Specializations))

	admin := api.Group("/admin", middleware.Authenticate, rbac.HasRole(models.RoleAdmin))
	admin.Get("/users", "admin.users", ctx.Wrap(c.Admin.Users))
	admin.Post("/users/{id}/toggle", "admin.users.toggle", ctx.Wrap(c.Admin.ToggleUser))
	admin.Patch("/users/{id}/role", "admin.users.role", ctx.Wrap(c.Admin.ChangeRole))
	admin.Get("/crops", "admin.crops", ctx.Wrap(c.Admin.Crops))
	admin.Post("/crops/{id}/toggle", "admin.crops.toggle", ctx.Wrap(c.Admin.ToggleCrop))
	admin.Get("/orders", "admin.orders", ctx.Wrap(c.Admin.Orders))
	admin.Patch("/orders/{id}/status", "admin.orders.status", ctx.Wrap(c.Admin.UpdateOrderStatus))
	admin.Patch("/orders/{id}/payment", "admin.orders.payment", ctx.Wrap(c.Admin.UpdatePayment))
	admin.Post("/orders/{id}/cancel", "admin.orders.cancel", ctx.Wrap(c.Admin.CancelOrder))
	admin.Get("/consultations", "admin.consultations", ctx.Wrap(c.Admin.Consultations))
	admin.Post("/consultations/{id}/assign", "admin.consultations.assign", ctx.Wrap(c.Admin.Assign))
	admin.Post("/consultations/{id}/unassign", "admin.consultations.unassign", ctx.Wrap(c.Admin.Unassign))
	admin.Post("/consultations/{id}/cancel", "admin.consultations.cancel", ctx.Wrap(c.Admin.CancelConsultation))
	admin.Get("/report", "admin.report", ctx.Wrap(c.Admin.Report))
}
