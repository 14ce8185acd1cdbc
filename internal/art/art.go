// Package art extracts embedded cover images from audio files into a
// per-directory marker file. Extraction is idempotent: a directory that
// already carries the marker is never touched again.
package art

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/llehouerou/folderart/internal/library"
)

// Status classifies the outcome of one directory's extraction.
type Status int

const (
	StatusExtracted Status = iota
	StatusSkipped
	StatusNoSource
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusExtracted:
		return "extracted"
	case StatusSkipped:
		return "skipped"
	case StatusNoSource:
		return "no source"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result describes what Extract did for one directory.
type Result struct {
	Status Status
	Source string // audio file the picture came from, when extracted
	Bytes  int64  // size of the written marker, when extracted
	Err    error  // failure reason, when Status is StatusFailed
}

var errNoEmbeddedPicture = errors.New("no embedded picture")

// Extractor pulls the first embedded picture of a directory's first audio
// file into the marker file. Native tag readers run first; FFmpegPath, when
// set, is the last rung for formats they cannot parse. An empty FFmpegPath
// disables that rung.
type Extractor struct {
	MarkerName   string
	MaxDimension int // downscale bound in pixels, 0 disables
	JPEGQuality  int
	FFmpegPath   string
}

// Extract processes a single directory. Failures are reported in the Result,
// never as a panic or fatal error: one corrupt file must not stop a run.
func (e *Extractor) Extract(dir library.Dir) Result {
	if dir.HasMarker {
		return Result{Status: StatusSkipped}
	}

	source := dir.FirstAudio()
	if source == "" {
		return Result{Status: StatusNoSource}
	}

	marker := filepath.Join(dir.Path, e.MarkerName)

	data, mimeType, err := readEmbedded(source)
	if err == nil && len(data) > 0 {
		normalized, normErr := e.normalize(data, mimeType)
		if normErr == nil {
			if writeErr := os.WriteFile(marker, normalized, 0o644); writeErr != nil {
				return Result{Status: StatusFailed, Source: source, Err: writeErr}
			}
			return Result{Status: StatusExtracted, Source: source, Bytes: int64(len(normalized))}
		}
		err = normErr
	}

	// Last rung: let ffmpeg copy the attached picture stream straight to the
	// marker path. Covers formats the native readers cannot parse and image
	// payloads Go cannot decode.
	if e.FFmpegPath != "" {
		if ffErr := extractAttachedPicture(e.FFmpegPath, source, marker); ffErr == nil {
			return extractedResult(marker, source)
		} else if err == nil {
			err = ffErr
		}
	}

	if err == nil {
		err = errNoEmbeddedPicture
	}
	return Result{Status: StatusFailed, Source: source, Err: fmt.Errorf("%s: %w", filepath.Base(source), err)}
}

func extractedResult(marker, source string) Result {
	var size int64
	if info, err := os.Stat(marker); err == nil {
		size = info.Size()
	}
	return Result{Status: StatusExtracted, Source: source, Bytes: size}
}
