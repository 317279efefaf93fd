package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"video_automation/openai"
	"video_automation/pipeline"
	"video_automation/renderer"
	"video_automation/store"
)

// App wires the pipeline, render engine and history store into the HTTP layer.
type App struct {
	Orchestrator *pipeline.Orchestrator
	Engine       *renderer.Engine
	Store        store.Store
}

// generateHandler runs one full pipeline pass synchronously and returns the
// bundle. Validation failures never reach the network; upstream hard failures
// come back as the raw failure text.
func (a *App) generateHandler(c *gin.Context) {
	var req pipeline.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if err := req.Validate(); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	startTime := time.Now()
	bundle, err := a.Orchestrator.Generate(c.Request.Context(), req)
	processingTime := time.Since(startTime).Seconds()

	if err != nil {
		a.saveRecord(req, nil, err, processingTime)
		// Upstream rejections surface as a bad gateway with the raw body;
		// local transport failures are our own problem.
		status := http.StatusInternalServerError
		var genErr *openai.GenerationError
		if errors.As(err, &genErr) {
			status = http.StatusBadGateway
		}
		c.String(status, err.Error())
		return
	}

	a.saveRecord(req, bundle, nil, processingTime)
	c.JSON(http.StatusOK, bundle)
}

func (a *App) saveRecord(req pipeline.GenerationRequest, bundle *pipeline.Bundle, runErr error, seconds float64) {
	record := &store.Record{
		ID:                uuid.New().String(),
		Niche:             req.Niche,
		Style:             req.Style,
		Duration:          req.Duration,
		Language:          req.Language,
		Status:            store.StatusCompleted,
		ProcessingSeconds: seconds,
		CreatedAt:         time.Now(),
	}
	if runErr != nil {
		record.Status = store.StatusFailed
		record.ErrorMessage = runErr.Error()
	} else {
		record.Title = bundle.Title
		record.SceneCount = len(bundle.Scenes)
		record.HasVoice = bundle.VoiceURL != nil
	}

	// History is a side channel; a store failure never affects the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Store.Save(ctx, record); err != nil {
			log.Printf("Failed to save generation record: %v", err)
		}
	}()
}

// renderHandler starts an asynchronous render job for a bundle.
func (a *App) renderHandler(c *gin.Context) {
	var bundle pipeline.Bundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if len(bundle.Scenes) == 0 {
		c.String(http.StatusBadRequest, "bundle has no scenes")
		return
	}

	job := a.Engine.StartRender(&bundle)
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "Render started",
	})
}

func (a *App) renderStatusHandler(c *gin.Context) {
	job, ok := a.Engine.Job(c.Param("id"))
	if !ok {
		c.String(http.StatusNotFound, "Job not found")
		return
	}

	response := gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"progress":   job.Progress,
		"created_at": job.CreatedAt,
	}
	if job.Status == renderer.StatusCompleted && job.VideoPath != "" {
		response["video_url"] = "/videos/" + filepath.Base(job.VideoPath)
	}
	if job.Status == renderer.StatusFailed {
		response["error"] = job.Error
	}
	c.JSON(http.StatusOK, response)
}

func (a *App) renderJobsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.Engine.Jobs())
}

func (a *App) generationsHandler(c *gin.Context) {
	records, err := a.Store.Recent(c.Request.Context(), 20)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load generation history")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       len(records),
		"generations": records,
	})
}

func (a *App) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := a.Store.Ping(ctx); err != nil {
		storeStatus = "unhealthy: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"timestamp":        time.Now().Format(time.RFC3339),
		"service":          "Viral Video Generator API",
		"ffmpeg_available": a.Engine.Available(),
		"store":            storeStatus,
	})
}
