package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sync"

	"video_automation/openai"
	"video_automation/research"
)

var newlineRuns = regexp.MustCompile(`\n+`)

// Orchestrator sequences one generation run:
// research -> script -> parse -> per-scene images -> voiceover -> bundle.
//
// Failure policy is deliberately asymmetric and must stay that way: research
// and voiceover degrade silently, script and image failures abort the run.
type Orchestrator struct {
	Research *research.Client
	OpenAI   *openai.Client
}

func NewOrchestrator(researchClient *research.Client, openaiClient *openai.Client) *Orchestrator {
	return &Orchestrator{Research: researchClient, OpenAI: openaiClient}
}

// Generate runs the full pipeline for a validated request and assembles the
// result bundle. Everything it produces is request-scoped and in memory.
func (o *Orchestrator) Generate(ctx context.Context, req GenerationRequest) (*Bundle, error) {
	// 1) Research. Always succeeds, possibly with an empty list.
	sources := o.Research.Search(ctx, req.Niche)

	// 2) Script.
	sourcesJSON, _ := json.Marshal(sources)
	prompt := fmt.Sprintf("Create a viral YouTube script in %s.\nStyle: %s.\nTarget duration: %ds.\nTopic: %s.\nUse strong hook, 5-9 concise scenes with captions, and CTA. Incorporate these sources when relevant: %s.",
		req.Language, req.Style, req.Duration, req.Niche, string(sourcesJSON))

	script, err := o.OpenAI.GenerateScript(ctx, prompt)
	if err != nil {
		return nil, err
	}

	// 3) Parse.
	captions, perScene := ParseScenes(script, req.Duration, req.Niche)

	// 4) Per-scene images, issued concurrently and joined. Any failure
	// aborts the whole run; there is no partial-scene recovery.
	scenes := make([]Scene, len(captions))
	var wg sync.WaitGroup
	errChan := make(chan error, len(captions))

	for i, caption := range captions {
		wg.Add(1)
		go func(i int, caption string) {
			defer wg.Done()

			image, err := o.OpenAI.GenerateImage(ctx, fmt.Sprintf("%s style illustration for: %s", req.Style, caption))
			if err != nil {
				errChan <- fmt.Errorf("scene %d: %w", i+1, err)
				return
			}

			sfx := "whoosh"
			if i%2 == 1 {
				sfx = "pop"
			}
			scenes[i] = Scene{
				Caption:  caption,
				Duration: perScene,
				Image:    image,
				Sfx:      sfx,
			}
		}(i, caption)
	}

	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}

	// 5) Voiceover. Optional; never aborts the run.
	voiceText := newlineRuns.ReplaceAllString(script, " ")
	var voiceURL *string
	if url := o.OpenAI.GenerateSpeech(ctx, voiceText); url != "" {
		voiceURL = &url
	}

	// 6) Assemble.
	bundle := &Bundle{
		Title:    ExtractTitle(script, req.Niche),
		Hook:     ExtractHook(script),
		Script:   script,
		Research: sources,
		Scenes:   scenes,
		VoiceURL: voiceURL,
	}

	log.Printf("✓ Pipeline complete for topic %q: %d scenes, %d sources, voiceover=%t",
		req.Niche, len(scenes), len(sources), voiceURL != nil)
	return bundle, nil
}
