package v1

import (
	"errors"
	"net/http"
	"strings"

	"gomarketplace-cart/internal/domain"
	"gomarketplace-cart/internal/usecase"
	"gomarketplace-cart/pkg/logger"
	"gomarketplace-cart/pkg/utils"
)

type CartHandler struct {
	cart *usecase.CartManager
}

func NewCartHandler(cart *usecase.CartManager) *CartHandler {
	return &CartHandler{cart: cart}
}

type cartResponse struct {
	Products   domain.Cart `json:"products"`
	Count      int         `json:"count"`
	TotalItems int         `json:"totalItems"`
}

func newCartResponse(c domain.Cart) cartResponse {
	if c == nil {
		c = domain.Cart{}
	}
	return cartResponse{
		Products:   c,
		Count:      len(c),
		TotalItems: c.TotalQuantity(),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Products()
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// POST /api/v1/cart
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req domain.Product
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	cart, err := h.cart.AddToCart(r.Context(), req)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// POST /api/v1/cart/{id}/increment
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	cart, err := h.cart.Increment(r.Context(), id)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// POST /api/v1/cart/{id}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	cart, err := h.cart.Decrement(r.Context(), id)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProduct):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCartNotProvisioned):
		logger.WithContext(r.Context()).Error().Err(err).Msg("Cart requested outside its provider scope")
		utils.WriteError(w, http.StatusServiceUnavailable, "cart is not available")
	default:
		logger.WithContext(r.Context()).Error().Err(err).Msg("Cart operation failed")
		utils.WriteError(w, http.StatusInternalServerError, "cart operation failed")
	}
}
