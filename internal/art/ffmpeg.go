package art

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ResolveFFmpeg locates the ffmpeg binary, honoring an explicit override
// path from configuration.
func ResolveFFmpeg(override string) (string, error) {
	path := strings.TrimSpace(override)
	if path == "" {
		path = "ffmpeg"
	}
	return exec.LookPath(path)
}

// extractAttachedPicture copies the first attached picture stream of src to
// dst without re-encoding. ffmpeg fails when src carries no such stream.
func extractAttachedPicture(ffmpegPath, src, dst string) error {
	cmd := exec.Command(ffmpegPath,
		"-i", src,
		"-an",
		"-c:v", "copy",
		"-frames:v", "1",
		"-y",
		dst,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		// Clean up partial file
		os.Remove(dst)
		return fmt.Errorf("ffmpeg extraction failed: %w\n%s", err, string(output))
	}

	return nil
}
