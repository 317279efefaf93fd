package renderer

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// clipArgs synthesizes a fixed-resolution clip from a still image held for
// the scene duration: 1280x720, 30fps, yuv420p.
func clipArgs(imagePath, clipPath string, duration int) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-t", strconv.Itoa(duration),
		"-i", imagePath,
		"-vf", "scale=1280:720,format=yuv420p",
		"-r", "30",
		clipPath,
	}
}

// concatManifest lists the per-scene clips in index order for the ffmpeg
// concat demuxer.
func concatManifest(sceneCount int) string {
	var b strings.Builder
	for i := 0; i < sceneCount; i++ {
		fmt.Fprintf(&b, "file clip%d.mp4\n", i)
	}
	return b.String()
}

// concatArgs joins the clips into one stream without re-encoding.
func concatArgs(manifestPath, videoPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		videoPath,
	}
}

// muxArgs combines the concatenated video with the voiceover, trimmed to the
// shorter stream. With no voiceover the video is stream-copied through.
func muxArgs(videoPath, voicePath, outputPath string) []string {
	if voicePath == "" {
		return []string{"-y", "-i", videoPath, "-c", "copy", outputPath}
	}
	return []string{
		"-y",
		"-i", videoPath,
		"-i", voicePath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}
}

var assetClient = &http.Client{Timeout: 60 * time.Second}

// fetchAsset stages a generated asset into the workspace. Data URLs are
// decoded in place; anything else is fetched over HTTP.
func fetchAsset(ctx context.Context, url, dest string) error {
	if strings.HasPrefix(url, "data:") {
		data, err := decodeDataURL(url)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	resp, err := assetClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("asset fetch returned status %d for %s", resp.StatusCode, url)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// decodeDataURL decodes the base64 payload of a data URL.
func decodeDataURL(url string) ([]byte, error) {
	idx := strings.Index(url, ",")
	if idx < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	data, err := base64.StdEncoding.DecodeString(url[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("error decoding data URL: %v", err)
	}
	return data, nil
}

// moveFile renames when possible and falls back to copy for cross-device
// temp/output directories.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return os.Remove(src)
}
