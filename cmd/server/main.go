package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ecocoleta/ecocoleta-backend/internal/config"
	"github.com/ecocoleta/ecocoleta-backend/internal/database"
	"github.com/ecocoleta/ecocoleta-backend/internal/handler"
	"github.com/ecocoleta/ecocoleta-backend/internal/queue"
	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
	"github.com/ecocoleta/ecocoleta-backend/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient() // nil disables the response cache
	if rdb == nil {
		log.Printf("redis unavailable, material catalog cache disabled")
	}
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	addresses := repository.NewAddressRepo(db)
	materials := repository.NewMaterialRepo(db)
	pickups := repository.NewPickupRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	addrH := handler.NewAddressHandler(addresses)
	matH := handler.NewMaterialHandler(materials, cacheCfg, rdb)
	pickH := handler.NewPickupHandler(pickups, addresses, materials)

	go queue.StartPickupConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, users)
	router.RegisterAPI(e, addrH, matH, pickH, cfg.JWTSecret, users, cacheCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
