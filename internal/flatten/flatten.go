// Package flatten builds flat symlink views of a hierarchical music
// library: one directory linking every album, one linking every track.
// Link names are derived from the artist/album/track names and
// deduplicated with deterministic counters, never by overwriting.
package flatten

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/folderart/internal/library"
)

// Outcome classifies what happened to one link candidate.
type Outcome int

const (
	// OutcomeCreated means a new link was made under the base name.
	OutcomeCreated Outcome = iota
	// OutcomeKept means a link to the same target was already in place.
	OutcomeKept
	// OutcomeCollision means the base name was taken, so the link was
	// created under a counter-suffixed name.
	OutcomeCollision
	// OutcomeFailed means the link could not be created.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeKept:
		return "kept"
	case OutcomeCollision:
		return "collision"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Link records the final name and target of one flattened entry.
type Link struct {
	Name    string
	Target  string
	Outcome Outcome
	Err     error // set when Outcome is OutcomeFailed
}

// Flattener links albums and tracks from the artists tree into flat
// destination directories. Passes run sequentially: collision counters
// depend on stable traversal order.
type Flattener struct {
	ArtistsDir string
	AlbumsDir  string
	TracksDir  string
}

// Albums links every album directory, two levels below the artists root,
// into AlbumsDir as "{artist} - {album}".
func (f *Flattener) Albums(ctx context.Context) ([]Link, error) {
	if err := os.MkdirAll(f.AlbumsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", f.AlbumsDir, err)
	}
	artists, err := os.ReadDir(f.ArtistsDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", f.ArtistsDir, err)
	}

	taken := make(map[string]bool)
	var links []Link
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return links, err
		}
		if !artist.IsDir() {
			continue
		}
		artistPath := filepath.Join(f.ArtistsDir, artist.Name())
		albums, err := os.ReadDir(artistPath)
		if err != nil {
			continue
		}
		for _, album := range albums {
			if !album.IsDir() {
				continue
			}
			target := filepath.Join(artistPath, album.Name())
			stem := fmt.Sprintf("%s - %s", sanitizeName(artist.Name()), sanitizeName(album.Name()))
			links = append(links, resolve(f.AlbumsDir, target, taken, func(n int) string {
				return counterName(stem, "", n)
			}))
		}
	}
	return links, nil
}

// Tracks links every audio file, three levels below the artists root, into
// TracksDir as "{artist} - {album} - {track}". The collision counter goes
// before the file extension.
func (f *Flattener) Tracks(ctx context.Context) ([]Link, error) {
	if err := os.MkdirAll(f.TracksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", f.TracksDir, err)
	}
	artists, err := os.ReadDir(f.ArtistsDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", f.ArtistsDir, err)
	}

	taken := make(map[string]bool)
	var links []Link
	for _, artist := range artists {
		if !artist.IsDir() {
			continue
		}
		artistPath := filepath.Join(f.ArtistsDir, artist.Name())
		albums, err := os.ReadDir(artistPath)
		if err != nil {
			continue
		}
		for _, album := range albums {
			if err := ctx.Err(); err != nil {
				return links, err
			}
			if !album.IsDir() {
				continue
			}
			albumPath := filepath.Join(artistPath, album.Name())
			tracks, err := os.ReadDir(albumPath)
			if err != nil {
				continue
			}
			for _, track := range tracks {
				if track.IsDir() || !library.IsAudioFile(track.Name()) {
					continue
				}
				target := filepath.Join(albumPath, track.Name())
				ext := filepath.Ext(track.Name())
				stem := fmt.Sprintf("%s - %s - %s",
					sanitizeName(artist.Name()),
					sanitizeName(album.Name()),
					sanitizeName(strings.TrimSuffix(track.Name(), ext)))
				links = append(links, resolve(f.TracksDir, target, taken, func(n int) string {
					return counterName(stem, ext, n)
				}))
			}
		}
	}
	return links, nil
}

// resolve finds a slot for target in dest, counting up from the base name
// until one is free or already links to target. A name claimed earlier in
// the pass or occupied on disk by anything else is never overwritten.
func resolve(dest, target string, taken map[string]bool, nameFor func(n int) string) Link {
	for n := 1; ; n++ {
		name := nameFor(n)
		if taken[name] {
			continue
		}
		path := filepath.Join(dest, name)

		existing, err := os.Readlink(path)
		switch {
		case err == nil && existing == target:
			taken[name] = true
			return Link{Name: name, Target: target, Outcome: OutcomeKept}
		case err == nil:
			// Symlink to something else, keep counting.
			continue
		case errors.Is(err, os.ErrNotExist):
			if symErr := os.Symlink(target, path); symErr != nil {
				return Link{Name: name, Target: target, Outcome: OutcomeFailed, Err: symErr}
			}
			taken[name] = true
			outcome := OutcomeCreated
			if n > 1 {
				outcome = OutcomeCollision
			}
			return Link{Name: name, Target: target, Outcome: outcome}
		default:
			// Occupied by a regular file or directory.
			continue
		}
	}
}
