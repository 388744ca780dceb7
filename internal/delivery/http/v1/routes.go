package v1

import "net/http"

// RegisterRoutes mounts the cart API and health checks on mux.
func RegisterRoutes(mux *http.ServeMux, cart *CartHandler, health *HealthHandler) {
	// Cart
	mux.HandleFunc("GET /api/v1/cart", cart.GetCart)
	mux.HandleFunc("POST /api/v1/cart", cart.AddToCart)
	mux.HandleFunc("POST /api/v1/cart/{id}/increment", cart.Increment)
	mux.HandleFunc("POST /api/v1/cart/{id}/decrement", cart.Decrement)

	// Health Check
	mux.Handle("GET /api/v1/health", health)
	mux.Handle("GET /health", health)
}
