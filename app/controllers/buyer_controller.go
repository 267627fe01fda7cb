package controllers

import (
	"github.com/krishi360/krishi/app/cart"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/session"
)

// BuyerController serves /api/buyer: catalogue, the session cart, checkout
// and the buyer's orders.
type BuyerController struct {
	crops    *services.CropService
	carts    *services.CartService
	checkout *services.CheckoutService
	orders   *services.OrderService
}

func NewBuyerController(crops *services.CropService, carts *services.CartService, checkout *services.CheckoutService, orders *services.OrderService) *BuyerController {
	return &BuyerController{crops: crops, carts: carts, checkout: checkout, orders: orders}
}

func (b *BuyerController) Catalog(c *ctx.Context) {
	crops, err := b.crops.Catalog(c.Context(), repositories.CatalogFilter{
		Search:   c.Query("search"),
		Location: c.Query("location"),
		Organic:  c.QueryBool("organic"),
		Limit:    c.QueryInt("limit", 100),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(crops)
}

func (b *BuyerController) Crop(c *ctx.Context) {
	cropID, ok := id(c)
	if !ok {
		return
	}
	crop, err := b.crops.Detail(c.Context(), cropID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(crop)
}

// loadCart reads the cart from the session. A cart that no longer decodes
// is replaced by an empty one.
func loadCart(c *ctx.Context) (*session.Session, *cart.Cart) {
	sess := c.Session()
	crt := cart.New()
	if _, err := sess.Get(cart.SessionKey, crt); err != nil {
		logger.WithCtx(c.Context()).Warn("cart: discarding unreadable cart", "error", err)
		crt = cart.New()
	}
	return sess, crt
}

// saveCart must run before the response body is written.
func saveCart(c *ctx.Context, sess *session.Session, crt *cart.Cart) error {
	if err := sess.Set(cart.SessionKey, crt); err != nil {
		return err
	}
	return sess.Save(c.Context(), c.W)
}

func (b *BuyerController) Cart(c *ctx.Context) {
	_, crt := loadCart(c)
	view, err := b.carts.View(c.Context(), crt)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(view)
}

type cartInput struct {
	CropID   uint    `json:"crop_id"  validate:"required"`
	Quantity float64 `json:"quantity"`
}

func (b *BuyerController) AddToCart(c *ctx.Context) {
	var in cartInput
	if !c.BindJSON(&in) {
		return
	}
	sess, crt := loadCart(c)
	if err := b.carts.Add(c.Context(), crt, in.CropID, in.Quantity); err != nil {
		fail(c, err)
		return
	}
	b.respondWithCart(c, sess, crt, "Added to cart")
}

func (b *BuyerController) UpdateCart(c *ctx.Context) {
	var in cartInput
	if !c.BindJSON(&in) {
		return
	}
	sess, crt := loadCart(c)
	if err := b.carts.Update(c.Context(), crt, in.CropID, in.Quantity); err != nil {
		fail(c, err)
		return
	}
	b.respondWithCart(c, sess, crt, "Cart updated")
}

func (b *BuyerController) RemoveFromCart(c *ctx.Context) {
	cropID, ok := c.ParamUint("crop_id")
	if !ok {
		c.NotFound()
		return
	}
	sess, crt := loadCart(c)
	b.carts.Remove(crt, cropID)
	b.respondWithCart(c, sess, crt, "Removed from cart")
}

func (b *BuyerController) respondWithCart(c *ctx.Context, sess *session.Session, crt *cart.Cart, msg string) {
	if err := saveCart(c, sess, crt); err != nil {
		fail(c, err)
		return
	}
	view, err := b.carts.View(c.Context(), crt)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(msg, view)
}

type checkoutInput struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
	PaymentMethod   string `json:"payment_method"   validate:"max=50"`
	Notes           string `json:"notes"`
}

// Checkout places an order for the whole cart. The cart is emptied only
// after the order commits.
func (b *BuyerController) Checkout(c *ctx.Context) {
	var in checkoutInput
	if !c.BindJSON(&in) {
		return
	}
	sess, crt := loadCart(c)

	order, err := b.checkout.Checkout(c.Context(), services.CheckoutInput{
		BuyerID:         c.UserID(),
		Entries:         crt.Entries(),
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}

	crt.Clear()
	if err := saveCart(c, sess, crt); err != nil {
		// The order exists; a stale cart is the lesser problem.
		logger.WithCtx(c.Context()).Error("cart: clear after checkout", "order_number", order.OrderNumber, "error", err)
	}
	c.Created(order)
}

func (b *BuyerController) Orders(c *ctx.Context) {
	orders, err := b.orders.ListForBuyer(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (b *BuyerController) Order(c *ctx.Context) {
	orderID, ok := id(c)
	if !ok {
		return
	}
	order, err := b.orders.Detail(c.Context(), orderID, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(order)
}

func (b *BuyerController) CancelOrder(c *ctx.Context) {
	orderID, ok := id(c)
	if !ok {
		return
	}
	order, err := b.orders.Cancel(c.Context(), orderID, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Order cancelled", order)
}
