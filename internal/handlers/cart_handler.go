package handlers

import (
	"net/http"

	"ss-uniforms/internal/cart"
	"ss-uniforms/internal/inventory"
	"ss-uniforms/internal/lowstock"
	"ss-uniforms/internal/middleware"
	"ss-uniforms/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	cartCookie = "cart_id"
	cartHeader = "X-Cart-ID"
	cartMaxAge = 60 * 60 * 24 * 30
)

// cartID returns the caller's cart id, issuing a new one in a cookie when the
// request carries none.
func (h *Handler) cartID(c *gin.Context) string {
	id := c.GetHeader(cartHeader)
	if id == "" {
		id, _ = c.Cookie(cartCookie)
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookie, id, cartMaxAge, "/", "", h.Config.Production(), true)
	c.Header(cartHeader, id)
	return id
}

func cartBody(s *cart.Store) gin.H {
	return gin.H{
		"cart_id":     s.ID(),
		"items":       s.Lines(),
		"total_items": s.TotalItems(),
		"total_price": s.TotalPrice(),
	}
}

// unitPrice is the size variant's price when it overrides, else the item's.
func unitPrice(item models.Item, size string) float64 {
	for _, sz := range item.Sizes {
		if sz.Size == size && sz.Price > 0 {
			return sz.Price
		}
	}
	return item.Price
}

// hasSize reports whether size is a valid choice for item. Items without size
// variants are sold in the standard size.
func hasSize(item models.Item, size string) bool {
	if len(item.Sizes) == 0 {
		return size == lowstock.StandardSize
	}
	for _, sz := range item.Sizes {
		if sz.Size == size {
			return true
		}
	}
	return false
}

type cartLineRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	var body gin.H
	h.Carts.Do(c.Request.Context(), h.cartID(c), func(s *cart.Store) { body = cartBody(s) })
	respond(c, http.StatusOK, body)
}

// POST /api/cart/items
func (h *Handler) AddToCart(c *gin.Context) {
	var input cartLineRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Item is required")
		return
	}
	item, _, ok := h.Inventory.FindItem(input.ItemID)
	if !ok {
		fail(c, http.StatusNotFound, "Item not found")
		return
	}
	if input.Size == "" && len(item.Sizes) == 0 {
		input.Size = lowstock.StandardSize
	}
	if !hasSize(item, input.Size) {
		badRequest(c, "Please select a size")
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	var body gin.H
	h.Carts.Do(c.Request.Context(), h.cartID(c), func(s *cart.Store) {
		s.AddItem(c.Request.Context(), item, input.Size, unitPrice(item, input.Size), input.Quantity)
		body = cartBody(s)
	})
	respond(c, http.StatusOK, body)
}

// PATCH /api/cart/items
// A quantity of zero or less removes the line.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input cartLineRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Item is required")
		return
	}
	var body gin.H
	h.Carts.Do(c.Request.Context(), h.cartID(c), func(s *cart.Store) {
		s.UpdateQuantity(c.Request.Context(), input.ItemID, input.Size, input.Quantity)
		body = cartBody(s)
	})
	respond(c, http.StatusOK, body)
}

// DELETE /api/cart/items?item_id=&size=
func (h *Handler) RemoveFromCart(c *gin.Context) {
	itemID := c.Query("item_id")
	if itemID == "" {
		badRequest(c, "Item is required")
		return
	}
	var body gin.H
	h.Carts.Do(c.Request.Context(), h.cartID(c), func(s *cart.Store) {
		s.RemoveItem(c.Request.Context(), itemID, c.Query("size"))
		body = cartBody(s)
	})
	respond(c, http.StatusOK, body)
}

// DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	var body gin.H
	h.Carts.Do(c.Request.Context(), h.cartID(c), func(s *cart.Store) {
		s.Clear(c.Request.Context())
		body = cartBody(s)
	})
	respond(c, http.StatusOK, body)
}

type checkoutRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// POST /api/cart/checkout
// Records the cart as a sale by the signed-in staff member and empties it.
func (h *Handler) Checkout(c *gin.Context) {
	var input checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Invalid customer details")
			return
		}
	}

	ctx := c.Request.Context()
	var (
		saleID string
		err    error
		body   gin.H
	)
	h.Carts.Do(ctx, h.cartID(c), func(s *cart.Store) {
		saleID, err = h.Inventory.AddSale(ctx, middleware.UserID(c), inventory.SaleInput{
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			Items:         s.Lines(),
		})
		if err == nil {
			s.Clear(ctx)
		}
		body = cartBody(s)
	})
	if err != nil {
		storeError(c, err, "Failed to record sale")
		return
	}
	body["sale_id"] = saleID
	respond(c, http.StatusCreated, body)
}
