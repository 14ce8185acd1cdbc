// Test program to run cover extraction over a directory tree
package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/llehouerou/folderart/internal/art"
	"github.com/llehouerou/folderart/internal/library"
)

func main() {
	markerName := flag.String("marker", "folder.jpg", "marker file name")
	ffmpeg := flag.String("ffmpeg", "", "ffmpeg binary override")
	maxDim := flag.Int("max", 1024, "downscale bound in pixels, 0 disables")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("Usage: testextract [flags] <directory>")
	}
	root, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to resolve %s: %v", flag.Arg(0), err)
	}

	ffmpegPath, err := art.ResolveFFmpeg(*ffmpeg)
	if err != nil {
		ffmpegPath = ""
		log.Printf("ffmpeg not found, fallback extraction disabled: %v", err)
	} else {
		log.Printf("Using ffmpeg at %s", ffmpegPath)
	}

	extractor := &art.Extractor{
		MarkerName:   *markerName,
		MaxDimension: *maxDim,
		JPEGQuality:  90,
		FFmpegPath:   ffmpegPath,
	}
	scanner := &library.Scanner{MarkerName: *markerName}

	var extracted, skipped, noSource, failed int
	err = scanner.Walk(root, func(d library.Dir) error {
		res := extractor.Extract(d)
		switch res.Status {
		case art.StatusExtracted:
			extracted++
			log.Printf("%s: extracted %d bytes from %s", d.Path, res.Bytes, filepath.Base(res.Source))
		case art.StatusSkipped:
			skipped++
			log.Printf("%s: marker already present", d.Path)
		case art.StatusNoSource:
			noSource++
		case art.StatusFailed:
			failed++
			log.Printf("%s: FAILED: %v", d.Path, res.Err)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", root, err)
	}

	log.Printf("Done: %d extracted, %d skipped, %d without audio, %d failed",
		extracted, skipped, noSource, failed)
}
