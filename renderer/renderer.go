package renderer

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"video_automation/pipeline"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job tracks one render from submission to a downloadable MP4.
type Job struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	VideoPath string    `json:"video_path,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Engine turns a Bundle into a single H.264/AAC MP4 (1280x720 @30fps) by
// driving an ffmpeg binary. Every job gets a private workspace that is
// removed on every exit path, success or failure. ffmpeg runs are serialized:
// the engine executes one render at a time and overlapping submissions queue
// behind the in-flight one.
type Engine struct {
	TempDir   string
	OutputDir string

	runMu  sync.Mutex
	jobsMu sync.RWMutex
	jobs   map[string]*Job

	// runCommand is swappable so tests can run without an ffmpeg binary.
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
	fetchAsset func(ctx context.Context, url, dest string) error
}

func NewEngine(tempDir, outputDir string) *Engine {
	return &Engine{
		TempDir:    tempDir,
		OutputDir:  outputDir,
		jobs:       make(map[string]*Job),
		runCommand: runFFmpeg,
		fetchAsset: fetchAsset,
	}
}

// Available reports whether an ffmpeg binary can be found on PATH.
func (e *Engine) Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// StartRender queues a render job for the bundle and returns immediately.
func (e *Engine) StartRender(bundle *pipeline.Bundle) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	// Snapshot before the worker goroutine starts mutating the job.
	e.jobsMu.Lock()
	e.jobs[job.ID] = job
	snapshot := *job
	e.jobsMu.Unlock()

	go e.process(job.ID, bundle)

	return &snapshot
}

// Job returns a snapshot of the job state, safe to serialize.
func (e *Engine) Job(id string) (Job, bool) {
	e.jobsMu.RLock()
	defer e.jobsMu.RUnlock()
	job, ok := e.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns snapshots of all known jobs.
func (e *Engine) Jobs() []Job {
	e.jobsMu.RLock()
	defer e.jobsMu.RUnlock()
	out := make([]Job, 0, len(e.jobs))
	for _, job := range e.jobs {
		out = append(out, *job)
	}
	return out
}

func (e *Engine) update(id string, fn func(*Job)) {
	e.jobsMu.Lock()
	defer e.jobsMu.Unlock()
	if job, ok := e.jobs[id]; ok {
		fn(job)
	}
}

func (e *Engine) setProgress(id string, progress int) {
	e.update(id, func(j *Job) { j.Progress = progress })
}

func (e *Engine) process(id string, bundle *pipeline.Bundle) {
	// One render at a time: the working storage sequence assumes exclusive
	// ownership of the ffmpeg invocations for the duration of a job.
	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.update(id, func(j *Job) { j.Status = StatusProcessing })

	outputPath, err := e.render(context.Background(), id, bundle)
	if err != nil {
		e.update(id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
		})
		log.Printf("❌ Render job %s failed: %v", id, err)
		return
	}

	e.update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
		j.VideoPath = outputPath
	})
	log.Printf("✅ Render job %s completed: %s", id, outputPath)
}

// render runs the full assembly sequence from scratch inside a fresh
// workspace. Invoking it again recomputes everything; no intermediate state
// survives between runs.
func (e *Engine) render(ctx context.Context, id string, bundle *pipeline.Bundle) (outputPath string, err error) {
	if len(bundle.Scenes) == 0 {
		return "", fmt.Errorf("bundle has no scenes")
	}

	workDir := filepath.Join(e.TempDir, id)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace: %v", err)
	}
	defer os.RemoveAll(workDir)

	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %v", err)
	}
	e.setProgress(id, 5)

	// Stage voiceover, if the bundle carries one.
	voicePath := ""
	if bundle.VoiceURL != nil && *bundle.VoiceURL != "" {
		voicePath = filepath.Join(workDir, "voice.mp3")
		if err := e.fetchAsset(ctx, *bundle.VoiceURL, voicePath); err != nil {
			return "", fmt.Errorf("failed to stage voiceover: %v", err)
		}
	}
	e.setProgress(id, 10)

	// Per-scene clips, strictly in index order. The clip synthesis shares
	// one workspace, so this loop must stay sequential.
	sceneSpan := 60 // progress budget for the clip stage
	for i, scene := range bundle.Scenes {
		imagePath := filepath.Join(workDir, fmt.Sprintf("img%d.jpg", i))
		if err := e.fetchAsset(ctx, scene.Image, imagePath); err != nil {
			return "", fmt.Errorf("failed to stage image for scene %d: %v", i+1, err)
		}

		clipPath := filepath.Join(workDir, fmt.Sprintf("clip%d.mp4", i))
		if out, err := e.runCommand(ctx, "ffmpeg", clipArgs(imagePath, clipPath, scene.Duration)...); err != nil {
			return "", fmt.Errorf("clip %d failed: %v, output: %s", i, err, string(out))
		}

		e.setProgress(id, 10+sceneSpan*(i+1)/len(bundle.Scenes))
	}

	// Concatenate the clips, stream-copied.
	manifestPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(manifestPath, []byte(concatManifest(len(bundle.Scenes))), 0644); err != nil {
		return "", fmt.Errorf("failed to write concat manifest: %v", err)
	}
	videoPath := filepath.Join(workDir, "video.mp4")
	if out, err := e.runCommand(ctx, "ffmpeg", concatArgs(manifestPath, videoPath)...); err != nil {
		return "", fmt.Errorf("concat failed: %v, output: %s", err, string(out))
	}
	e.setProgress(id, 80)

	// Mux the voiceover against the video, trimming to the shorter stream,
	// or pass the video through unchanged.
	finalPath := filepath.Join(workDir, "output.mp4")
	if out, err := e.runCommand(ctx, "ffmpeg", muxArgs(videoPath, voicePath, finalPath)...); err != nil {
		return "", fmt.Errorf("mux failed: %v, output: %s", err, string(out))
	}
	e.setProgress(id, 95)

	outputPath = filepath.Join(e.OutputDir, fmt.Sprintf("video_%s.mp4", id[:8]))
	if err := moveFile(finalPath, outputPath); err != nil {
		return "", fmt.Errorf("failed to publish output: %v", err)
	}
	return outputPath, nil
}

// CleanupOutputs removes rendered videos older than maxAge and returns how
// many were deleted.
func (e *Engine) CleanupOutputs(maxAge time.Duration) int {
	entries, err := os.ReadDir(e.OutputDir)
	if err != nil {
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp4" {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(e.OutputDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed
}

func runFFmpeg(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
