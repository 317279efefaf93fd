package pipeline

import (
	"fmt"
	"strings"

	"video_automation/research"
)

// Video styles accepted by the generator.
const (
	StyleEducation = "education"
	StyleTop10     = "top10"
	StyleStory     = "story"
	StyleNews      = "news"
	StyleMeme      = "meme"
)

const (
	MinDuration = 30
	MaxDuration = 600

	MinScenes     = 5
	MaxScenes     = 9
	DefaultScenes = 6

	// Shortest a single scene is allowed to run, in seconds.
	MinSceneDuration = 5
)

var validStyles = map[string]bool{
	StyleEducation: true,
	StyleTop10:     true,
	StyleStory:     true,
	StyleNews:      true,
	StyleMeme:      true,
}

// GenerationRequest is the user input for one pipeline run.
type GenerationRequest struct {
	Niche    string `json:"niche"`
	Style    string `json:"style"`
	Duration int    `json:"duration"`
	Language string `json:"language"`
}

// Validate checks the request before any network call is made and
// fills in defaults. Duration bounds and the style enum are enforced here.
func (r *GenerationRequest) Validate() error {
	r.Niche = strings.TrimSpace(r.Niche)
	if len(r.Niche) < 2 {
		return fmt.Errorf("niche must be at least 2 characters")
	}
	if !validStyles[r.Style] {
		return fmt.Errorf("style must be one of: education, top10, story, news, meme")
	}
	if r.Duration < MinDuration || r.Duration > MaxDuration {
		return fmt.Errorf("duration must be between %d and %d seconds", MinDuration, MaxDuration)
	}
	if strings.TrimSpace(r.Language) == "" {
		r.Language = "en"
	}
	return nil
}

// Scene is one timed segment of the output video: a still image held for a
// fixed duration plus a caption and an alternating sound-effect tag.
type Scene struct {
	Caption  string `json:"caption"`
	Duration int    `json:"duration"`
	Image    string `json:"image"`
	Sfx      string `json:"sfx"`
}

// Bundle is the complete in-memory result of one pipeline run. It is handed
// to the renderer as-is and never persisted.
type Bundle struct {
	Title    string            `json:"title"`
	Hook     string            `json:"hook"`
	Script   string            `json:"script"`
	Research []research.Result `json:"research"`
	Scenes   []Scene           `json:"scenes"`
	VoiceURL *string           `json:"voiceUrl"`
}
