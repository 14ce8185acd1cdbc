package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/llehouerou/folderart/internal/art"
	"github.com/llehouerou/folderart/internal/config"
	"github.com/llehouerou/folderart/internal/desktop"
	"github.com/llehouerou/folderart/internal/errmsg"
	"github.com/llehouerou/folderart/internal/notify"
	"github.com/llehouerou/folderart/internal/report"
	"github.com/llehouerou/folderart/internal/run"
)

type options struct {
	configPath string
	root       string
	strategy   string
	jobs       int
	verbose    bool
	quiet      bool
	noNotify   bool
}

func addFlags(fs *flag.FlagSet, o *options) {
	fs.StringVar(&o.configPath, "config", "", "path to config file")
	fs.StringVar(&o.root, "root", "", "music library base directory (overrides music_dir)")
	fs.StringVar(&o.strategy, "strategy", "", "icon strategy: auto, metadata or descriptor")
	fs.IntVar(&o.jobs, "jobs", 0, "parallel extraction workers")
	fs.BoolVar(&o.verbose, "verbose", false, "show per-directory detail")
	fs.BoolVar(&o.quiet, "quiet", false, "only warnings and errors")
	fs.BoolVar(&o.noNotify, "no-notify", false, "skip the completion notification")
}

func main() {
	args := os.Args[1:]

	// Bare flags run the default command.
	command := "all"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "art", "albums", "tracks", "all":
		os.Exit(runCommand(command, args))
	case "probe":
		os.Exit(probeCommand(args))
	case "help":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `folderart - folder icons and flattened views for a music library

USAGE:
    folderart [command] [flags]

COMMANDS:
    art       extract embedded covers and apply folder icons
    albums    link every album into the albums directory
    tracks    link every track into the tracks directory
    all       art, albums and tracks in one run (default)
    probe     print desktop session, tool availability and the chosen strategy

FLAGS:
    -config path    config file (default: search list)
    -root path      music library base directory (overrides music_dir)
    -strategy s     auto, metadata or descriptor
    -jobs N         parallel extraction workers
    -verbose        show per-directory detail
    -quiet          only warnings and errors
    -no-notify      skip the completion notification
`)
}

func runCommand(command string, args []string) int {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	var o options
	addFlags(fs, &o)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	switch o.strategy {
	case "", "auto", "metadata", "descriptor":
	default:
		fmt.Fprintf(os.Stderr, "Invalid -strategy %q (want auto, metadata or descriptor)\n", o.strategy)
		return 2
	}

	printer := report.NewPrinter(os.Stdout, o.verbose, o.quiet)

	cfg, err := loadConfig(&o)
	if err != nil {
		printer.Print(report.Event{Level: report.LevelError, Message: errmsg.Format(errmsg.OpConfigLoad, err)})
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipeline := run.New(cfg, printer.Print)

	var sum run.Summary
	switch command {
	case "art":
		sum, err = pipeline.Art(ctx)
	case "albums":
		sum, err = pipeline.Albums(ctx)
	case "tracks":
		sum, err = pipeline.Tracks(ctx)
	default:
		sum, err = pipeline.All(ctx)
	}
	if err != nil {
		// Fatal errors were already reported as events.
		return 1
	}

	if cfg.NotifyEnabled() && !o.noNotify {
		sendNotification(printer, sum)
	}

	return 0
}

func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.root != "" {
		cfg.MusicDir = o.root
	}
	if o.strategy != "" {
		cfg.Strategy = o.strategy
	}
	if o.jobs > 0 {
		cfg.Jobs = o.jobs
	}

	if cfg.MusicDir == "" {
		return nil, errors.New("music_dir is not set; use -root or the config file")
	}

	switch cfg.Strategy {
	case "", "auto", "metadata", "descriptor":
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}

	// Symlink targets are built from these, so they have to be absolute.
	for _, p := range []*string{&cfg.MusicDir, &cfg.ArtistsDir, &cfg.AlbumsDir, &cfg.TracksDir} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, err
		}
		*p = abs
	}

	return cfg, nil
}

func sendNotification(printer *report.Printer, sum run.Summary) {
	notifier, err := notify.New()
	if err != nil {
		printer.Print(report.Event{Level: report.LevelWarning, Message: errmsg.Format(errmsg.OpNotify, err)})
		return
	}

	body := fmt.Sprintf("%d covers extracted, %d icons set, %d links created",
		sum.Extracted, sum.IconsSet, sum.LinksCreated+sum.Collisions)
	urgency := notify.UrgencyLow
	if sum.Failures() > 0 {
		body = fmt.Sprintf("%s, %d failures", body, sum.Failures())
		urgency = notify.UrgencyNormal
	}

	if _, err := notifier.Notify(notify.Notification{
		Title:   "Folderart finished",
		Body:    body,
		Icon:    "folder-music",
		Timeout: 5000, // ms
		Urgency: urgency,
	}); err != nil {
		printer.Print(report.Event{Level: report.LevelWarning, Message: errmsg.Format(errmsg.OpNotify, err)})
	}
}

func probeCommand(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	session := desktop.CurrentSession()
	fmt.Printf("session: %s\n", session.Name())
	fmt.Printf("  XDG_CURRENT_DESKTOP=%q\n", session.CurrentDesktop)
	fmt.Printf("  DESKTOP_SESSION=%q\n", session.DesktopSession)

	c := &desktop.Classifier{}
	if path := c.MetadataToolPath(); path != "" {
		fmt.Printf("%s: %s\n", desktop.MetadataTool, path)
	} else {
		fmt.Printf("%s: not found\n", desktop.MetadataTool)
	}

	if path, err := art.ResolveFFmpeg(""); err == nil {
		fmt.Printf("ffmpeg: %s\n", path)
	} else {
		fmt.Println("ffmpeg: not found")
	}

	strategy, err := c.Classify(session)
	if err != nil {
		fmt.Printf("strategy: %v\n", err)
		return 1
	}
	fmt.Printf("strategy: %s\n", strategy)
	return 0
}
