package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_automation/openai"
	"video_automation/pipeline"
	"video_automation/renderer"
	"video_automation/research"
	"video_automation/store"
)

func testApp(t *testing.T) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &App{
		Orchestrator: pipeline.NewOrchestrator(research.NewClient(""), openai.NewClient("")),
		Engine:       renderer.NewEngine(t.TempDir(), t.TempDir()),
		Store:        store.NewMemory(),
	}

	router := gin.New()
	router.POST("/generate", app.generateHandler)
	router.POST("/render", app.renderHandler)
	router.GET("/render/:id", app.renderStatusHandler)
	router.GET("/generations", app.generationsHandler)
	router.GET("/health", app.healthHandler)
	return app, router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpointDegradedMode(t *testing.T) {
	_, router := testApp(t)

	w := postJSON(t, router, "/generate", pipeline.GenerationRequest{
		Niche: "AI tools", Style: "education", Duration: 120, Language: "en",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var bundle pipeline.Bundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bundle))
	assert.GreaterOrEqual(t, len(bundle.Scenes), pipeline.MinScenes)
	assert.LessOrEqual(t, len(bundle.Scenes), pipeline.MaxScenes)
	assert.Nil(t, bundle.VoiceURL)
	assert.NotNil(t, bundle.Research)
}

func TestGenerateEndpointVoiceURLSerializesAsNull(t *testing.T) {
	_, router := testApp(t)

	w := postJSON(t, router, "/generate", pipeline.GenerationRequest{
		Niche: "AI tools", Style: "education", Duration: 120,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Contains(t, raw, "voiceUrl")
	assert.Equal(t, "null", string(raw["voiceUrl"]))
}

func TestGenerateEndpointValidation(t *testing.T) {
	_, router := testApp(t)

	tests := []struct {
		name string
		req  pipeline.GenerationRequest
	}{
		{"short niche", pipeline.GenerationRequest{Niche: "a", Style: "education", Duration: 120}},
		{"bad style", pipeline.GenerationRequest{Niche: "AI tools", Style: "vlog", Duration: 120}},
		{"duration low", pipeline.GenerationRequest{Niche: "AI tools", Style: "news", Duration: 10}},
		{"duration high", pipeline.GenerationRequest{Niche: "AI tools", Style: "news", Duration: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/generate", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGenerateEndpointInvalidJSON(t *testing.T) {
	_, router := testApp(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/generate", bytes.NewBufferString("{not json"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateEndpointUpstreamFailureIs502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("model overloaded"))
	}))
	defer upstream.Close()

	app, router := testApp(t)
	client := openai.NewClient("test-key")
	client.BaseURL = upstream.URL
	app.Orchestrator = pipeline.NewOrchestrator(research.NewClient(""), client)

	w := postJSON(t, router, "/generate", pipeline.GenerationRequest{
		Niche: "AI tools", Style: "education", Duration: 120,
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "model overloaded")
}

func TestGenerateEndpointTransportFailureIs500(t *testing.T) {
	app, router := testApp(t)
	client := openai.NewClient("test-key")
	client.BaseURL = "http://127.0.0.1:1"
	app.Orchestrator = pipeline.NewOrchestrator(research.NewClient(""), client)

	w := postJSON(t, router, "/generate", pipeline.GenerationRequest{
		Niche: "AI tools", Style: "education", Duration: 120,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRenderEndpointRejectsEmptyBundle(t *testing.T) {
	_, router := testApp(t)

	w := postJSON(t, router, "/render", pipeline.Bundle{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderEndpointStartsJob(t *testing.T) {
	_, router := testApp(t)

	w := postJSON(t, router, "/render", pipeline.Bundle{
		Scenes: []pipeline.Scene{{Caption: "c", Duration: 10, Image: "https://img.example/x.jpg", Sfx: "whoosh"}},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	jobID, ok := resp["job_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, jobID)

	statusReq := httptest.NewRequest("GET", "/render/"+jobID, nil)
	statusW := httptest.NewRecorder()
	router.ServeHTTP(statusW, statusReq)
	assert.Equal(t, http.StatusOK, statusW.Code)
}

func TestRenderStatusUnknownJob(t *testing.T) {
	_, router := testApp(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/render/does-not-exist", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	_, router := testApp(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Contains(t, health, "ffmpeg_available")
}

func TestGenerationsEndpoint(t *testing.T) {
	app, router := testApp(t)

	w := postJSON(t, router, "/generate", pipeline.GenerationRequest{
		Niche: "AI tools", Style: "top10", Duration: 90,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The record is saved asynchronously; poll the store briefly.
	require.Eventually(t, func() bool {
		records, err := app.Store.Recent(context.Background(), 10)
		return err == nil && len(records) == 1
	}, 2*time.Second, 10*time.Millisecond)

	listW := httptest.NewRecorder()
	router.ServeHTTP(listW, httptest.NewRequest("GET", "/generations", nil))
	require.Equal(t, http.StatusOK, listW.Code)

	var resp struct {
		Total       int            `json:"total"`
		Generations []store.Record `json:"generations"`
	}
	require.NoError(t, json.Unmarshal(listW.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "AI tools", resp.Generations[0].Niche)
	assert.Equal(t, store.StatusCompleted, resp.Generations[0].Status)
}
