package flatten

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFlattener(t *testing.T) *Flattener {
	t.Helper()
	root := t.TempDir()
	f := &Flattener{
		ArtistsDir: filepath.Join(root, "Artists"),
		AlbumsDir:  filepath.Join(root, "Albums"),
		TracksDir:  filepath.Join(root, "Tracks"),
	}
	if err := os.MkdirAll(f.ArtistsDir, 0o755); err != nil {
		t.Fatalf("create artists dir: %v", err)
	}
	return f
}

// mkAlbum creates an album directory with the given track files.
func mkAlbum(t *testing.T, f *Flattener, artist, album string, tracks ...string) string {
	t.Helper()
	dir := filepath.Join(f.ArtistsDir, artist, album)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create album dir: %v", err)
	}
	for _, track := range tracks {
		if err := os.WriteFile(filepath.Join(dir, track), []byte("audio"), 0o600); err != nil {
			t.Fatalf("create track: %v", err)
		}
	}
	return dir
}

func assertSymlink(t *testing.T, path, target string) {
	t.Helper()
	got, err := os.Readlink(path)
	if err != nil {
		t.Fatalf("readlink %s: %v", path, err)
	}
	if got != target {
		t.Errorf("link %s points to %q, want %q", filepath.Base(path), got, target)
	}
}

func countOutcomes(links []Link) map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, l := range links {
		counts[l.Outcome]++
	}
	return counts
}

func TestAlbums_CreatesLinks(t *testing.T) {
	f := newTestFlattener(t)
	sia := mkAlbum(t, f, "Sia", "1000 Forms of Fear", "01 Chandelier.mp3")
	who := mkAlbum(t, f, "The Who", "Tommy", "01 Overture.mp3")
	// Stray files are not albums.
	if err := os.WriteFile(filepath.Join(f.ArtistsDir, "README.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(f.ArtistsDir, "Sia", "folder.jpg"), []byte("x"), 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}

	links, err := f.Albums(context.Background())
	if err != nil {
		t.Fatalf("Albums() error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	if counts := countOutcomes(links); counts[OutcomeCreated] != 2 {
		t.Errorf("outcomes = %v, want 2 created", counts)
	}

	assertSymlink(t, filepath.Join(f.AlbumsDir, "Sia - 1000 Forms of Fear"), sia)
	assertSymlink(t, filepath.Join(f.AlbumsDir, "The Who - Tommy"), who)
}

func TestAlbums_SecondRunKeeps(t *testing.T) {
	f := newTestFlattener(t)
	mkAlbum(t, f, "Sia", "1000 Forms of Fear", "01 Chandelier.mp3")
	mkAlbum(t, f, "The Who", "Tommy", "01 Overture.mp3")

	if _, err := f.Albums(context.Background()); err != nil {
		t.Fatalf("first Albums() error: %v", err)
	}
	links, err := f.Albums(context.Background())
	if err != nil {
		t.Fatalf("second Albums() error: %v", err)
	}

	counts := countOutcomes(links)
	if counts[OutcomeKept] != 2 || counts[OutcomeCreated] != 0 {
		t.Errorf("second run outcomes = %v, want 2 kept", counts)
	}

	entries, err := os.ReadDir(f.AlbumsDir)
	if err != nil {
		t.Fatalf("read albums dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("albums dir has %d entries after rerun, want 2", len(entries))
	}
}

func TestAlbums_CollisionCounter(t *testing.T) {
	f := newTestFlattener(t)
	// Both artist names sanitize to "The Who-"; traversal order puts
	// "The Who-" before "The Who?".
	dash := mkAlbum(t, f, "The Who-", "Live", "01 a.mp3")
	question := mkAlbum(t, f, "The Who?", "Live", "01 a.mp3")

	links, err := f.Albums(context.Background())
	if err != nil {
		t.Fatalf("Albums() error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}

	if links[0].Outcome != OutcomeCreated || links[0].Name != "The Who- - Live" {
		t.Errorf("first link = %q (%v), want %q created", links[0].Name, links[0].Outcome, "The Who- - Live")
	}
	if links[1].Outcome != OutcomeCollision || links[1].Name != "The Who- - Live (2)" {
		t.Errorf("second link = %q (%v), want %q collision", links[1].Name, links[1].Outcome, "The Who- - Live (2)")
	}

	assertSymlink(t, filepath.Join(f.AlbumsDir, "The Who- - Live"), dash)
	assertSymlink(t, filepath.Join(f.AlbumsDir, "The Who- - Live (2)"), question)
}

func TestAlbums_CollisionIdempotent(t *testing.T) {
	f := newTestFlattener(t)
	mkAlbum(t, f, "The Who-", "Live", "01 a.mp3")
	mkAlbum(t, f, "The Who?", "Live", "01 a.mp3")

	if _, err := f.Albums(context.Background()); err != nil {
		t.Fatalf("first Albums() error: %v", err)
	}
	links, err := f.Albums(context.Background())
	if err != nil {
		t.Fatalf("second Albums() error: %v", err)
	}

	counts := countOutcomes(links)
	if counts[OutcomeKept] != 2 {
		t.Errorf("second run outcomes = %v, want 2 kept", counts)
	}

	entries, err := os.ReadDir(f.AlbumsDir)
	if err != nil {
		t.Fatalf("read albums dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("albums dir has %d entries after rerun, want 2", len(entries))
	}
}

func TestAlbums_ExistingLinkOtherTarget(t *testing.T) {
	f := newTestFlattener(t)
	album := mkAlbum(t, f, "Sia", "Some People Have Real Problems", "01 a.mp3")

	// A link under the album's name already points somewhere else. It must
	// survive untouched; the album shifts to a counter name.
	other := t.TempDir()
	stale := filepath.Join(f.AlbumsDir, "Sia - Some People Have Real Problems")
	if err := os.MkdirAll(f.AlbumsDir, 0o755); err != nil {
		t.Fatalf("create albums dir: %v", err)
	}
	if err := os.Symlink(other, stale); err != nil {
		t.Fatalf("create stale link: %v", err)
	}

	links, err := f.Albums(context.Background())
	if err != nil {
		t.Fatalf("Albums() error: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if links[0].Outcome != OutcomeCollision {
		t.Errorf("outcome = %v, want %v", links[0].Outcome, OutcomeCollision)
	}

	assertSymlink(t, stale, other)
	assertSymlink(t, stale+" (2)", album)
}

func TestAlbums_RegularFileOccupiesName(t *testing.T) {
	f := newTestFlattener(t)
	album := mkAlbum(t, f, "Sia", "Colour the Small One", "01 a.mp3")

	if err := os.MkdirAll(f.AlbumsDir, 0o755); err != nil {
		t.Fatalf("create albums dir: %v", err)
	}
	occupied := filepath.Join(f.AlbumsDir, "Sia - Colour the Small One")
	if err := os.WriteFile(occupied, []byte("not a link"), 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}

	links, err := f.Albums(context.Background())
	if err != nil {
		t.Fatalf("Albums() error: %v", err)
	}
	if links[0].Outcome != OutcomeCollision {
		t.Errorf("outcome = %v, want %v", links[0].Outcome, OutcomeCollision)
	}

	// The regular file is never overwritten.
	data, err := os.ReadFile(occupied)
	if err != nil || string(data) != "not a link" {
		t.Errorf("occupying file was touched: %q, %v", data, err)
	}
	assertSymlink(t, occupied+" (2)", album)
}

func TestAlbums_MissingArtistsRoot(t *testing.T) {
	f := &Flattener{
		ArtistsDir: filepath.Join(t.TempDir(), "missing"),
		AlbumsDir:  filepath.Join(t.TempDir(), "Albums"),
	}
	if _, err := f.Albums(context.Background()); err == nil {
		t.Error("expected error for missing artists root")
	}
}

func TestTracks_CreatesLinks(t *testing.T) {
	f := newTestFlattener(t)
	album := mkAlbum(t, f, "Sia", "1000 Forms of Fear",
		"01 Chandelier.mp3", "02 Big Girls Cry.flac")
	// Non-audio content is ignored.
	for _, name := range []string{"folder.jpg", ".directory", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(album, name), []byte("x"), 0o600); err != nil {
			t.Fatalf("create file: %v", err)
		}
	}

	links, err := f.Tracks(context.Background())
	if err != nil {
		t.Fatalf("Tracks() error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}

	assertSymlink(t,
		filepath.Join(f.TracksDir, "Sia - 1000 Forms of Fear - 01 Chandelier.mp3"),
		filepath.Join(album, "01 Chandelier.mp3"))
	assertSymlink(t,
		filepath.Join(f.TracksDir, "Sia - 1000 Forms of Fear - 02 Big Girls Cry.flac"),
		filepath.Join(album, "02 Big Girls Cry.flac"))
}

func TestTracks_CounterBeforeExtension(t *testing.T) {
	f := newTestFlattener(t)
	// Album names sanitize to the same string, so both intro tracks fight
	// for one link name.
	mkAlbum(t, f, "Sia", "Live-", "01 Intro.mp3")
	mkAlbum(t, f, "Sia", "Live?", "01 Intro.mp3")

	links, err := f.Tracks(context.Background())
	if err != nil {
		t.Fatalf("Tracks() error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}

	if links[0].Name != "Sia - Live- - 01 Intro.mp3" {
		t.Errorf("first link = %q", links[0].Name)
	}
	if links[1].Name != "Sia - Live- - 01 Intro (2).mp3" {
		t.Errorf("second link = %q, want counter before extension", links[1].Name)
	}
	if links[1].Outcome != OutcomeCollision {
		t.Errorf("second outcome = %v, want %v", links[1].Outcome, OutcomeCollision)
	}
}

func TestTracks_SecondRunKeeps(t *testing.T) {
	f := newTestFlattener(t)
	mkAlbum(t, f, "Sia", "1000 Forms of Fear", "01 Chandelier.mp3")

	if _, err := f.Tracks(context.Background()); err != nil {
		t.Fatalf("first Tracks() error: %v", err)
	}
	links, err := f.Tracks(context.Background())
	if err != nil {
		t.Fatalf("second Tracks() error: %v", err)
	}
	if links[0].Outcome != OutcomeKept {
		t.Errorf("second run outcome = %v, want %v", links[0].Outcome, OutcomeKept)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "AC-DC"},
		{`Back\slash`, "Back-slash"},
		{"What?", "What-"},
		{`"Heroes"`, "-Heroes-"},
		{"Mix: Tape", "Mix- Tape"},
		{"<angle|pipe>", "-angle-pipe-"},
		{"plain name", "plain name"},
	}

	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("x", 300)
	if got := sanitizeName(long); len(got) != 200 {
		t.Errorf("len(sanitizeName(long)) = %d, want 200", len(got))
	}
}

func TestCounterName(t *testing.T) {
	tests := []struct {
		stem string
		ext  string
		n    int
		want string
	}{
		{"Sia - Live", "", 1, "Sia - Live"},
		{"Sia - Live", "", 2, "Sia - Live (2)"},
		{"Sia - Live - 01 Intro", ".mp3", 1, "Sia - Live - 01 Intro.mp3"},
		{"Sia - Live - 01 Intro", ".mp3", 3, "Sia - Live - 01 Intro (3).mp3"},
	}

	for _, tt := range tests {
		if got := counterName(tt.stem, tt.ext, tt.n); got != tt.want {
			t.Errorf("counterName(%q, %q, %d) = %q, want %q", tt.stem, tt.ext, tt.n, got, tt.want)
		}
	}
}
