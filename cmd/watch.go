package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/etnz/advisor"
	"github.com/etnz/advisor/renderer"
	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
)

type watchCmd struct {
	pipelineFlags
	debounce time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "recommend again every time the snapshot changes" }
func (*watchCmd) Usage() string {
	return `adv watch -budget <amount> [<snapshot>]

  Runs the recommendation, then runs it again every time the snapshot (or the
  -profiles snapshot) is written. Stop with Ctrl-C.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	c.pipelineFlags.SetFlags(f)
	f.DurationVar(&c.debounce, "debounce", 500*time.Millisecond, "quiet time after a change before running again")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	filename := snapshotFiles(f)[0]
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	opts, err := c.options(cfg, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	log := newLogger(cfg)
	adv := advisor.New(opts, log)
	profiles := c.newProfiles(cfg, log)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		return subcommands.ExitFailure
	}
	defer watcher.Close()
	// Editors replace files, so the directories are watched rather than the files.
	watched := map[string]bool{filepath.Clean(filename): true}
	dirs := map[string]bool{filepath.Dir(filename): true}
	if c.profiles != "" {
		watched[filepath.Clean(c.profiles)] = true
		dirs[filepath.Dir(c.profiles)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %q: %v\n", dir, err)
			return subcommands.ExitFailure
		}
	}

	recommend := func() {
		req, err := c.request(ctx, filename, profiles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading request: %v\n", err)
			return
		}
		rec, err := adv.Recommend(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running recommendation: %v\n", err)
			return
		}
		printResult(rec, func() string { return renderer.RenderRecommendation(rec, cfg.Currency) })
	}
	recommend()

	// timer fires once the snapshot is quiet for the debounce duration.
	timer := time.NewTimer(c.debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case event, ok := <-watcher.Events:
			if !ok {
				return subcommands.ExitSuccess
			}
			if !watched[filepath.Clean(event.Name)] || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("snapshot changed")
			timer.Reset(c.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return subcommands.ExitSuccess
			}
			log.Error().Err(err).Msg("watcher error")
		case <-timer.C:
			if profiles != nil {
				profiles.Purge()
			}
			recommend()
		}
	}
}
