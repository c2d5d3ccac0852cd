// routes/routes.go
package routes

import (
	"storefront/controllers"

	"github.com/gorilla/mux"
)

// Controllers groups every handler the router serves
type Controllers struct {
	Health   *controllers.HealthController
	User     *controllers.UserController
	Product  *controllers.ProductController
	Wishlist *controllers.WishlistController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Chat     *controllers.ChatController
}

// RegisterRoutes sets up all the routes for the application. Nil controllers
// are skipped.
func RegisterRoutes(router *mux.Router, c Controllers) {
	if c.Health != nil {
		router.HandleFunc("/", c.Health.Root).Methods("GET")
		router.HandleFunc("/test", c.Health.TestDatabase).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()

	if c.User != nil {
		api.HandleFunc("/auth/register", c.User.Register).Methods("POST")
		api.HandleFunc("/auth/login", c.User.Login).Methods("POST")
	}

	if c.Product != nil {
		api.HandleFunc("/products", c.Product.GetProducts).Methods("GET")
		api.HandleFunc("/products", c.Product.CreateProduct).Methods("POST")
		api.HandleFunc("/seed-products", c.Product.SeedProducts).Methods("POST")
	}

	if c.Wishlist != nil {
		api.HandleFunc("/wishlist", c.Wishlist.GetWishlist).Methods("GET")
		api.HandleFunc("/wishlist", c.Wishlist.AddToWishlist).Methods("POST")
	}

	// Cart routes
	if c.Cart != nil {
		api.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
		api.HandleFunc("/cart", c.Cart.AddToCart).Methods("POST")
		api.HandleFunc("/cart/{product_id}", c.Cart.RemoveFromCart).Methods("DELETE")
	}

	// Order routes
	if c.Order != nil {
		api.HandleFunc("/orders", c.Order.CreateOrder).Methods("POST")
		api.HandleFunc("/orders", c.Order.GetOrders).Methods("GET")
		api.HandleFunc("/orders/{id}", c.Order.GetOrderByID).Methods("GET")
	}

	if c.Chat != nil {
		api.HandleFunc("/chat/{room_id}", c.Chat.GetMessages).Methods("GET")
		api.HandleFunc("/chat", c.Chat.SendMessage).Methods("POST")
	}
}
