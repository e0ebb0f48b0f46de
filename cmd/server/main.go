package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/config"
	"github.com/pawssion/shelter-adoption/internal/database"
	"github.com/pawssion/shelter-adoption/internal/handler"
	"github.com/pawssion/shelter-adoption/internal/middleware"
	"github.com/pawssion/shelter-adoption/internal/queue"
	"github.com/pawssion/shelter-adoption/internal/repository"
	"github.com/pawssion/shelter-adoption/internal/router"
	queuepublisher "github.com/pawssion/shelter-adoption/internal/service"
	"github.com/pawssion/shelter-adoption/internal/service/adoption"
	"github.com/pawssion/shelter-adoption/internal/service/shelter"
	"github.com/pawssion/shelter-adoption/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	shelters := repository.NewShelterRepo(db)
	animals := repository.NewAnimalRepo(db)
	requests := repository.NewAdoptionRepo(db)
	notes := repository.NewNotificationRepo(db)
	tokens := repository.NewTokenRepo(db)
	tx := repository.NewTxRunner(db)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := users.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		cancel()
		log.Fatalf("seed admin: %v", err)
	}
	cancel()

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	adoptionSvc := adoption.NewService(users, shelters, animals, requests, notes, tx)
	shelterSvc := shelter.NewService(shelters, users, animals, requests, notes, tx)

	authH := handler.NewAuthHandler(cfg, users, shelters, tokens, shelterSvc, notes)
	profileH := handler.NewProfileHandler(users)
	animalH := handler.NewAnimalHandler(animals, adoptionSvc, requests, blobs)
	userAdoptH := handler.NewUserAdoptionHandler(adoptionSvc, requests)
	shelterAdoptH := handler.NewShelterAdoptionHandler(adoptionSvc, requests, animals, queuepublisher.PublishAdoptionApproved)
	adminH := handler.NewAdminHandler(shelterSvc, shelters, tokens)
	notifH := handler.NewNotificationHandler(notes)
	publicH := handler.NewPublicHandler(shelters, animals, requests)

	e := echo.New()
	e.HideBanner = true

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}
	// Attached per route group after JWTAuth so buckets key on the
	// authenticated principal, not on "anon".
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicH, config.LoadCacheConfig(), rdb)
	router.RegisterAuth(e, authH, cfg.JWTSecret, limit)
	router.RegisterUser(e, profileH, userAdoptH, cfg.JWTSecret, limit)
	router.RegisterShelter(e, animalH, shelterAdoptH, cfg.JWTSecret, limit)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret, limit)
	router.RegisterNotifications(e, notifH, cfg.JWTSecret, limit)

	go func() {
		if err := queue.StartAdoptionConsumer(); err != nil {
			log.Printf("adoption consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func newBlobStore(cfg config.Config) (storage.BlobStore, error) {
	if cfg.StorageDriver == "s3" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3(ctx, cfg.S3Bucket, cfg.S3Region)
	}
	return storage.NewLocal(cfg.UploadDir)
}
