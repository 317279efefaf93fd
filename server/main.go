package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"video_automation/openai"
	"video_automation/pipeline"
	"video_automation/renderer"
	"video_automation/research"
	"video_automation/store"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	godotenv.Load()

	generations := initializeStore()
	defer generations.Close(context.Background())

	orchestrator := pipeline.NewOrchestrator(
		research.NewClient(os.Getenv("TAVILY_API_KEY")),
		openai.NewClient(os.Getenv("OPENAI_API_KEY")),
	)

	engine := renderer.NewEngine(getTempDir(), getOutputDir())
	if !engine.Available() {
		log.Printf("⚠️ ffmpeg not found on PATH, render jobs will fail")
	}

	app := &App{
		Orchestrator: orchestrator,
		Engine:       engine,
		Store:        generations,
	}

	// Prune rendered videos past the retention window.
	retention := getRetention()
	scheduler := cron.New()
	scheduler.AddFunc("@hourly", func() {
		if removed := engine.CleanupOutputs(retention); removed > 0 {
			log.Printf("✓ Cleanup removed %d rendered video(s)", removed)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.Default()
	router.POST("/generate", app.generateHandler)
	router.POST("/render", app.renderHandler)
	router.GET("/render/:id", app.renderStatusHandler)
	router.GET("/render", app.renderJobsHandler)
	router.GET("/generations", app.generationsHandler)
	router.GET("/health", app.healthHandler)
	router.Static("/videos", getOutputDir())

	port := getPort()
	fmt.Printf("=== Viral Video Generator API ===\n")
	fmt.Printf("Server starting on port %s\n", port)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /generate        - Run the generation pipeline\n")
	fmt.Printf("  POST /render          - Start a render job for a bundle\n")
	fmt.Printf("  GET  /render/{id}     - Render job status\n")
	fmt.Printf("  GET  /generations     - Recent generation history\n")
	fmt.Printf("  GET  /videos/{file}   - Download rendered videos\n")
	fmt.Printf("  GET  /health          - Health check\n")
	fmt.Println(strings.Repeat("=", 50))

	log.Fatal(router.Run(":" + port))
}

func initializeStore() store.Store {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.Printf("MONGODB_URI not set, keeping generation history in memory")
		return store.NewMemory()
	}

	mongoStore, err := store.NewMongo(context.Background(), uri, getMongoDB())
	if err != nil {
		log.Printf("⚠️ MongoDB unavailable (%v), falling back to in-memory history", err)
		return store.NewMemory()
	}
	fmt.Println("✓ MongoDB connected successfully")
	return mongoStore
}

func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8085"
}

func getMongoDB() string {
	if db := os.Getenv("MONGODB_DATABASE"); db != "" {
		return db
	}
	return "video_automation"
}

func getOutputDir() string {
	if dir := os.Getenv("OUTPUT_DIR"); dir != "" {
		return dir
	}
	return "./output"
}

func getTempDir() string {
	if dir := os.Getenv("TEMP_DIR"); dir != "" {
		return dir
	}
	return "./temp"
}

func getRetention() time.Duration {
	if hours := os.Getenv("VIDEO_RETENTION_HOURS"); hours != "" {
		if parsed, err := strconv.Atoi(hours); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Hour
		}
	}
	return 24 * time.Hour
}
