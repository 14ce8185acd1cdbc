// Package run drives the pipeline passes over a music library: cover art
// extraction, folder icon application and symlink flattening.
package run

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/folderart/internal/art"
	"github.com/llehouerou/folderart/internal/config"
	"github.com/llehouerou/folderart/internal/desktop"
	"github.com/llehouerou/folderart/internal/errmsg"
	"github.com/llehouerou/folderart/internal/flatten"
	"github.com/llehouerou/folderart/internal/icons"
	"github.com/llehouerou/folderart/internal/library"
	"github.com/llehouerou/folderart/internal/report"
)

// Summary aggregates outcomes across pipeline passes.
type Summary struct {
	Dirs      int // directories visited by the art pass
	Extracted int
	Skipped   int
	NoSource  int
	Failed    int

	IconsSet     int
	IconFailures int

	LinksCreated int
	LinksKept    int
	Collisions   int
	LinkFailures int
}

func (s *Summary) merge(o Summary) {
	s.Dirs += o.Dirs
	s.Extracted += o.Extracted
	s.Skipped += o.Skipped
	s.NoSource += o.NoSource
	s.Failed += o.Failed
	s.IconsSet += o.IconsSet
	s.IconFailures += o.IconFailures
	s.LinksCreated += o.LinksCreated
	s.LinksKept += o.LinksKept
	s.Collisions += o.Collisions
	s.LinkFailures += o.LinkFailures
}

// Failures counts every per-directory problem the run recorded.
func (s *Summary) Failures() int {
	return s.Failed + s.IconFailures + s.LinkFailures
}

func (s *Summary) artLine() string {
	if s.Failed > 0 {
		return fmt.Sprintf("art: %d extracted, %d failed of %d directories", s.Extracted, s.Failed, s.Dirs)
	}
	return fmt.Sprintf("art: %d extracted of %d directories", s.Extracted, s.Dirs)
}

func (s *Summary) iconsLine(mechanism string) string {
	if s.IconFailures > 0 {
		return fmt.Sprintf("icons: %d set via %s (%d failed)", s.IconsSet, mechanism, s.IconFailures)
	}
	return fmt.Sprintf("icons: %d set via %s", s.IconsSet, mechanism)
}

func (s *Summary) linksLine(pass string) string {
	line := fmt.Sprintf("%s: %d linked, %d kept", pass, s.LinksCreated+s.Collisions, s.LinksKept)
	if s.Collisions > 0 {
		line += fmt.Sprintf(", %d renamed", s.Collisions)
	}
	if s.LinkFailures > 0 {
		line += fmt.Sprintf(" (%d failed)", s.LinkFailures)
	}
	return line
}

// Pipeline runs the passes against one configured library. Fatal errors
// are reported as events before they are returned, so callers only map
// them to an exit status.
type Pipeline struct {
	cfg    *config.Config
	report report.Func
}

func New(cfg *config.Config, fn report.Func) *Pipeline {
	if fn == nil {
		fn = report.Discard
	}
	return &Pipeline{cfg: cfg, report: fn}
}

// Art scans the artists tree, extracts embedded covers into marker files
// and applies folder icons with the selected strategy. Extraction runs on
// a bounded worker pool; icon application stays sequential.
func (p *Pipeline) Art(ctx context.Context) (Summary, error) {
	var sum Summary

	// Strategy resolution goes first: a session whose required tool is
	// missing has to abort before anything is written.
	applier, err := p.applier()
	if err != nil {
		p.report(report.Event{Level: report.LevelError, Message: errmsg.Format(errmsg.OpDesktopClassify, err)})
		return sum, err
	}
	p.report(report.Event{Level: report.LevelInfo, Message: fmt.Sprintf("icon strategy: %s", applier.Name())})

	root := p.cfg.ArtistsRoot()
	scanner := &library.Scanner{MarkerName: p.cfg.MarkerName, DescriptorName: icons.DescriptorName}

	var dirs []library.Dir
	err = scanner.Walk(root, func(d library.Dir) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		dirs = append(dirs, d)
		return nil
	})
	if err != nil {
		p.report(report.Event{Level: report.LevelError, Message: errmsg.Format(errmsg.OpLibraryScan, err)})
		return sum, err
	}
	sum.Dirs = len(dirs)
	p.report(report.Event{Level: report.LevelInfo, Message: fmt.Sprintf("scanned %s: %d directories", root, len(dirs))})

	ex := p.extractor()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.JobCount())

	results := make([]art.Result, len(dirs))
	for i, d := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ex.Extract(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}

	for i := range dirs {
		rel := relDir(root, dirs[i].Path)
		switch res := results[i]; res.Status {
		case art.StatusExtracted:
			dirs[i].HasMarker = true
			sum.Extracted++
			size := humanize.IBytes(uint64(res.Bytes)) //nolint:gosec // written size is never negative
			p.report(report.Event{
				Level:   report.LevelSuccess,
				Dir:     rel,
				Message: fmt.Sprintf("extracted cover from %s (%s)", filepath.Base(res.Source), size),
			})
		case art.StatusSkipped:
			sum.Skipped++
			p.report(report.Event{Level: report.LevelInfo, Dir: rel, Message: "cover already present"})
		case art.StatusNoSource:
			sum.NoSource++
			p.report(report.Event{Level: report.LevelVerbose, Dir: rel, Message: "no audio files"})
		case art.StatusFailed:
			sum.Failed++
			p.report(report.Event{Level: report.LevelError, Dir: rel, Message: errmsg.Format(errmsg.OpArtExtract, res.Err)})
		}
	}

	level := report.LevelSuccess
	if sum.Failed > 0 {
		level = report.LevelWarning
	}
	p.report(report.Event{Level: level, Message: sum.artLine()})

	for i := range dirs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		applied, err := applier.Apply(dirs[i])
		if err != nil {
			sum.IconFailures++
			p.report(report.Event{Level: report.LevelError, Dir: relDir(root, dirs[i].Path), Message: errmsg.Format(errmsg.OpIconApply, err)})
			continue
		}
		if applied {
			sum.IconsSet++
			p.report(report.Event{Level: report.LevelVerbose, Dir: relDir(root, dirs[i].Path), Message: "folder icon set"})
		}
	}

	level = report.LevelSuccess
	if sum.IconFailures > 0 {
		level = report.LevelWarning
	}
	p.report(report.Event{Level: level, Message: sum.iconsLine(applier.Name())})

	return sum, nil
}

// Albums flattens every artist/album directory into a symlink with a
// composed name under the albums root.
func (p *Pipeline) Albums(ctx context.Context) (Summary, error) {
	var sum Summary

	links, err := p.flattener().Albums(ctx)
	if err != nil {
		p.report(report.Event{Level: report.LevelError, Message: errmsg.Format(errmsg.OpAlbumLink, err)})
		return sum, err
	}

	p.recordLinks(&sum, links, errmsg.OpAlbumLink)
	p.reportLinksDone(&sum, "albums")
	return sum, nil
}

// Tracks flattens every audio file into a symlink with a composed name
// under the tracks root.
func (p *Pipeline) Tracks(ctx context.Context) (Summary, error) {
	var sum Summary

	links, err := p.flattener().Tracks(ctx)
	if err != nil {
		p.report(report.Event{Level: report.LevelError, Message: errmsg.Format(errmsg.OpTrackLink, err)})
		return sum, err
	}

	p.recordLinks(&sum, links, errmsg.OpTrackLink)
	p.reportLinksDone(&sum, "tracks")
	return sum, nil
}

// All runs art, albums and tracks in order, stopping at the first fatal
// error. The returned summary covers everything that ran.
func (p *Pipeline) All(ctx context.Context) (Summary, error) {
	sum, err := p.Art(ctx)
	if err != nil {
		return sum, err
	}

	albums, err := p.Albums(ctx)
	sum.merge(albums)
	if err != nil {
		return sum, err
	}

	tracks, err := p.Tracks(ctx)
	sum.merge(tracks)
	return sum, err
}

func (p *Pipeline) extractor() *art.Extractor {
	ffmpeg, err := art.ResolveFFmpeg(p.cfg.FFmpegPath)
	if err != nil {
		// Not fatal: the native readers cover the common formats.
		p.report(report.Event{Level: report.LevelWarning, Message: "ffmpeg not found, fallback extraction disabled"})
		ffmpeg = ""
	}
	return &art.Extractor{
		MarkerName:   p.cfg.MarkerName,
		MaxDimension: p.cfg.Art.MaxDimension,
		JPEGQuality:  p.cfg.Art.JPEGQuality,
		FFmpegPath:   ffmpeg,
	}
}

// applier picks the icon mechanism for this run: a forced strategy from
// config, or classification of the captured desktop session.
func (p *Pipeline) applier() (icons.Applier, error) {
	c := &desktop.Classifier{}

	var strategy desktop.Strategy
	switch p.cfg.Strategy {
	case "metadata":
		if c.MetadataToolPath() == "" {
			return nil, fmt.Errorf("forced metadata strategy needs %s: %w", desktop.MetadataTool, desktop.ErrToolMissing)
		}
		strategy = desktop.StrategyMetadata
	case "descriptor":
		strategy = desktop.StrategyDescriptor
	case "", "auto":
		s, err := c.Classify(desktop.Session{
			CurrentDesktop: p.cfg.CurrentDesktop,
			DesktopSession: p.cfg.DesktopSession,
		})
		if err != nil {
			return nil, err
		}
		strategy = s
	default:
		return nil, fmt.Errorf("unknown strategy %q", p.cfg.Strategy)
	}

	if strategy == desktop.StrategyMetadata {
		return &icons.MetadataApplier{ToolPath: c.MetadataToolPath(), MarkerName: p.cfg.MarkerName}, nil
	}
	return &icons.DescriptorApplier{DescriptorName: icons.DescriptorName, MarkerName: p.cfg.MarkerName}, nil
}

func (p *Pipeline) flattener() *flatten.Flattener {
	return &flatten.Flattener{
		ArtistsDir: p.cfg.ArtistsRoot(),
		AlbumsDir:  p.cfg.AlbumsRoot(),
		TracksDir:  p.cfg.TracksRoot(),
	}
}

func (p *Pipeline) recordLinks(sum *Summary, links []flatten.Link, op errmsg.Op) {
	for _, l := range links {
		switch l.Outcome {
		case flatten.OutcomeCreated:
			sum.LinksCreated++
			p.report(report.Event{Level: report.LevelVerbose, Dir: l.Name, Message: "linked to " + l.Target})
		case flatten.OutcomeKept:
			sum.LinksKept++
			p.report(report.Event{Level: report.LevelVerbose, Dir: l.Name, Message: "already linked"})
		case flatten.OutcomeCollision:
			sum.Collisions++
			p.report(report.Event{Level: report.LevelInfo, Dir: l.Name, Message: "linked to " + l.Target + " (name collision)"})
		case flatten.OutcomeFailed:
			sum.LinkFailures++
			p.report(report.Event{Level: report.LevelError, Dir: l.Name, Message: errmsg.Format(op, l.Err)})
		}
	}
}

func (p *Pipeline) reportLinksDone(sum *Summary, pass string) {
	level := report.LevelSuccess
	if sum.LinkFailures > 0 {
		level = report.LevelWarning
	}
	p.report(report.Event{Level: level, Message: sum.linksLine(pass)})
}

// relDir shortens path for display, "" for the root itself.
func relDir(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return ""
	}
	return rel
}
