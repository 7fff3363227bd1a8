package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/prepdeck/backend/internal/config"
	"github.com/prepdeck/backend/internal/content"
	"github.com/prepdeck/backend/internal/device"
	"github.com/prepdeck/backend/internal/events"
	"github.com/prepdeck/backend/internal/progress"
	"github.com/prepdeck/backend/internal/storage"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Pick the store: Postgres when DATABASE_URL is set, sqlite otherwise.
	var store storage.Store
	if cfg.DatabaseURL != "" {
		store, err = storage.OpenRemote(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Printf("[server] using remote store")
	} else {
		store, err = storage.OpenLocal(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open local store: %v", err)
		}
		log.Printf("[server] using local store at %s", cfg.SQLitePath)
	}
	defer store.Close()

	bus := events.NewBus()
	secret := []byte(cfg.TokenSecret)

	// Initialize services and handlers
	progressService := progress.NewService(store, bus)
	contentService := content.NewService(store, bus)

	deviceHandler := device.NewHandler(secret)
	progressHandler := progress.NewHandler(progressService)
	contentHandler := content.NewHandler(contentService, progressService)

	// Log level-ups for operational visibility.
	levelUps, stopLevelUps := bus.Subscribe(events.TopicLevelUp, 16)
	defer stopLevelUps()
	go func() {
		for ev := range levelUps {
			log.Printf("[server] device %s reached level %v", ev.DeviceID, ev.Payload)
		}
	}()

	// Nightly sweep of stale daily-challenge ledgers.
	scheduler := gocron.NewScheduler(time.Local)
	_, err = scheduler.Every(1).Day().At(cfg.LedgerSweepAt).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		swept, err := progressService.SweepStaleLedgers(ctx)
		if err != nil {
			log.Printf("[server] ledger sweep failed: %v", err)
			return
		}
		log.Printf("[server] ledger sweep reset %d stale ledgers", swept)
	})
	if err != nil {
		log.Fatalf("Failed to schedule ledger sweep: %v", err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/device/register", deviceHandler.Register).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(device.Middleware(secret))

	protected.HandleFunc("/progress", progressHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/progress", progressHandler.ResetProgress).Methods("DELETE")
	protected.HandleFunc("/progress/award", progressHandler.AwardExperience).Methods("POST")
	protected.HandleFunc("/progress/flashcard", progressHandler.FlashcardComplete).Methods("POST")
	protected.HandleFunc("/progress/question", progressHandler.QuestionView).Methods("POST")
	protected.HandleFunc("/progress/study-guide", progressHandler.StudyGuideItem).Methods("POST")
	protected.HandleFunc("/progress/lesson", progressHandler.LessonComplete).Methods("POST")
	protected.HandleFunc("/progress/tool", progressHandler.ToolUsage).Methods("POST")
	protected.HandleFunc("/progress/login", progressHandler.DailyLogin).Methods("POST")
	protected.HandleFunc("/progress/study-time", progressHandler.AddStudyMinutes).Methods("POST")
	protected.HandleFunc("/challenges", progressHandler.GetDailyChallenges).Methods("GET")

	protected.HandleFunc("/collections/{collection}", contentHandler.GetDocument).Methods("GET")
	protected.HandleFunc("/collections/{collection}", contentHandler.SaveDocument).Methods("PUT")
	protected.HandleFunc("/collections/{collection}", contentHandler.DeleteDocument).Methods("DELETE")
	protected.HandleFunc("/export", contentHandler.Export).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
