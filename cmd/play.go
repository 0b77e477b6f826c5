package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/reel-player/reel/engine"
	"github.com/reel-player/reel/icon"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/util"
	"github.com/samber/mo"
)

type playOptions struct {
	paths     []string
	resume    bool
	subtitles string
	from      float64
	loop      mo.Option[bool]
	shuffle   mo.Option[bool]
}

var errNothingToPlay = errors.New("nothing to play")

func play(ctx context.Context, options playOptions) error {
	e, err := engine.Open(ctx, engine.FromConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			log.Warnf("close engine: %v", err)
		}
	}()

	if !options.resume {
		e.Playlist.Clear()
	}

	if len(options.paths) > 0 {
		added, err := e.AddPaths(options.paths...)
		if err != nil {
			printRejected(err)
		}
		if added == 0 && !options.resume {
			return errNothingToPlay
		}
	}

	if looping, ok := options.loop.Get(); ok {
		e.Playlist.SetLooping(looping)
	}
	if shuffling, ok := options.shuffle.Get(); ok {
		e.Playlist.SetShuffling(shuffling)
	}
	if options.from > 0 {
		e.SeekOnLoad(options.from)
	}

	if err := e.Play(ctx); err != nil {
		if errors.Is(err, engine.ErrEmptyPlaylist) {
			return errNothingToPlay
		}
		return err
	}

	if options.subtitles != "" {
		if err := e.LoadSubtitles(options.subtitles); err != nil {
			return fmt.Errorf("subtitles: %w", err)
		}
	}

	fmt.Printf("%s Playing %s %s\n",
		icon.Get(icon.Play),
		util.Quantify(e.Playlist.Len(), "item", "items"),
		style.Faint("(press ? for controls)"),
	)

	ctx, quit := context.WithCancel(ctx)
	defer quit()

	restore := startControls(ctx, e, quit)
	defer restore()

	return e.Run(ctx)
}

// printRejected reports every argument that could not be added.
func printRejected(err error) {
	var joined interface{ Unwrap() []error }
	errs := []error{err}
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}

	for _, err := range errs {
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Question), err)
	}
}
