package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	sceneLineRegex   = regexp.MustCompile(`\d+\)`)
	numberPrefix     = regexp.MustCompile(`^\d+\)\s?`)
	scenePrefixRegex = regexp.MustCompile(`(?i)^scene\s?\d+[:\-]\s?`)
)

// ParseScenes heuristically extracts scene captions from a generated script.
// It is a best-effort classifier, not a strict parser: it must produce a
// usable caption list for any input and never fail the pipeline.
//
// Candidate lines are non-empty lines containing a "<digit>)" marker or
// starting with "scene" (case-insensitive). The scene count is clamped to
// [5,9], defaulting to 6 when nothing matches; slots past the last candidate
// are synthesized from the niche. Per-scene duration is floor(duration/count)
// with a 5 second floor.
func ParseScenes(script string, duration int, niche string) ([]string, int) {
	var sceneLines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if sceneLineRegex.MatchString(line) || strings.HasPrefix(strings.ToLower(line), "scene") {
			sceneLines = append(sceneLines, line)
		}
	}

	sceneCount := len(sceneLines)
	if sceneCount == 0 {
		sceneCount = DefaultScenes
	}
	if sceneCount < MinScenes {
		sceneCount = MinScenes
	}
	if sceneCount > MaxScenes {
		sceneCount = MaxScenes
	}

	perScene := duration / sceneCount
	if perScene < MinSceneDuration {
		perScene = MinSceneDuration
	}

	captions := make([]string, sceneCount)
	for i := 0; i < sceneCount; i++ {
		raw := fmt.Sprintf("Scene %d: %s", i+1, niche)
		if i < len(sceneLines) {
			raw = sceneLines[i]
		}
		caption := numberPrefix.ReplaceAllString(raw, "")
		caption = scenePrefixRegex.ReplaceAllString(caption, "")
		captions[i] = caption
	}

	return captions, perScene
}

// ExtractTitle returns the first line that starts with "title", falling back
// to the niche when the script carries no title marker.
func ExtractTitle(script, niche string) string {
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "title") {
			return line
		}
	}
	return niche
}

// ExtractHook returns the first line mentioning "hook", or "" when absent.
func ExtractHook(script string) string {
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(strings.ToLower(line), "hook") {
			return line
		}
	}
	return ""
}
