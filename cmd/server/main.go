package main

import (
	"fmt"
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"giftwish/internal/auth"
	"giftwish/internal/config"
	"giftwish/internal/database"
	"giftwish/internal/events"
	"giftwish/internal/handlers"
	"giftwish/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	auth.Init()
	database.Connect(cfg.DatabaseURL)
	if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	if err := events.Connect(cfg.RedisAddr, cfg.RedisDB); err != nil {
		// The activity feed is best-effort; the API works without it.
		logger.Warnf("redis unavailable, activity feed disabled: %v", err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "pong")
	})
	mux.Handle("GET /metrics", middleware.MetricsHandler())

	// auth
	mux.HandleFunc("POST /auth/register", handlers.RegisterHandler)
	mux.HandleFunc("POST /auth/login", handlers.LoginHandler)

	// users
	mux.HandleFunc("GET /users/me", handlers.MeHandler)
	mux.HandleFunc("PUT /users/{id}", handlers.UpdateUserHandler)
	mux.HandleFunc("GET /users/{a}/{b}", handlers.UserSubresourceHandler)

	// wishlists
	mux.HandleFunc("GET /wishlists/{$}", handlers.ListWishlistsHandler)
	mux.HandleFunc("POST /wishlists/{$}", handlers.CreateWishlistHandler)
	mux.HandleFunc("GET /wishlists/{id}", handlers.GetWishlistHandler)
	mux.HandleFunc("PUT /wishlists/{id}", handlers.UpdateWishlistHandler)
	mux.HandleFunc("DELETE /wishlists/{id}", handlers.DeleteWishlistHandler)
	mux.Handle("GET /wishlists/{a}/{b}", handlers.WishlistSubresourceHandler(logger))

	// items
	mux.HandleFunc("GET /wishlist/{$}", handlers.ListMyItemsHandler)
	mux.HandleFunc("POST /wishlist/{$}", handlers.CreateItemHandler)
	mux.HandleFunc("GET /wishlist/claimed", handlers.ClaimedItemsHandler)
	mux.HandleFunc("GET /wishlist/{id}", handlers.GetItemHandler)
	mux.HandleFunc("PUT /wishlist/{id}", handlers.UpdateItemHandler)
	mux.HandleFunc("DELETE /wishlist/{id}", handlers.DeleteItemHandler)
	mux.HandleFunc("GET /wishlist/{a}/{b}", handlers.ItemSubresourceHandler)
	mux.HandleFunc("POST /wishlist/{id}/claim", handlers.ClaimItemHandler)
	mux.HandleFunc("DELETE /wishlist/{id}/claim", handlers.UnclaimItemHandler)
	mux.HandleFunc("POST /wishlist/scrape-url", handlers.ScrapeURLHandler)

	// friends
	mux.HandleFunc("POST /friends/request", handlers.RequestFriendHandler)
	mux.HandleFunc("GET /friends/requests", handlers.ListFriendRequestsHandler)
	mux.HandleFunc("POST /friends/requests/{id}/accept", handlers.AcceptFriendRequestHandler)
	mux.HandleFunc("POST /friends/requests/{id}/decline", handlers.DeclineFriendRequestHandler)
	mux.HandleFunc("GET /friends/list", handlers.ListFriendsHandler)
	mux.HandleFunc("GET /friends/wishlists", handlers.FriendsWishlistsHandler)
	mux.HandleFunc("GET /friends/search-many", handlers.SearchUsersHandler)

	handler := middleware.Logging(logger)(middleware.Metrics(mux))

	addr := ":" + cfg.Port
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
