package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/engine"
	"github.com/reel-player/reel/icon"
	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/session"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/subtitle"
	"github.com/reel-player/reel/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const ctrlC = 3

// binding maps a key pressed in the terminal to a player action. The returned text is shown as
// the status line.
type binding struct {
	keys []byte
	help string
	run  func(ctx context.Context, e *engine.Engine) (string, error)
}

func seekBy(delta func() float64) func(context.Context, *engine.Engine) (string, error) {
	return func(_ context.Context, e *engine.Engine) (string, error) {
		pos, err := e.Controller().SeekRelative(delta())
		return fmt.Sprintf("at %s", subtitle.FormatTimestamp(pos)), err
	}
}

func volumeStatus(v session.Values) string {
	if v.Muted {
		return "muted"
	}
	return fmt.Sprintf("volume %.0f%%", v.Volume*100)
}

func loopStatus(l session.Loop, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return "loop " + l.String(), nil
}

var bindings = []binding{
	{[]byte{' '}, "play / pause", func(_ context.Context, e *engine.Engine) (string, error) {
		playing, err := e.Controller().TogglePlay()
		return lo.Ternary(playing, icon.Get(icon.Play)+" playing", icon.Get(icon.Pause)+" paused"), err
	}},
	{[]byte{'l'}, "seek forward (small)", seekBy(func() float64 { return viper.GetFloat64(key.PlayerSeekSmall) })},
	{[]byte{'h'}, "seek backward (small)", seekBy(func() float64 { return -viper.GetFloat64(key.PlayerSeekSmall) })},
	{[]byte{'L'}, "seek forward (large)", seekBy(func() float64 { return viper.GetFloat64(key.PlayerSeekLarge) })},
	{[]byte{'H'}, "seek backward (large)", seekBy(func() float64 { return -viper.GetFloat64(key.PlayerSeekLarge) })},
	{[]byte{'+', '='}, "volume up", func(_ context.Context, e *engine.Engine) (string, error) {
		return volumeStatus(e.Controller().VolumeUp(constant.VolumeStep)), nil
	}},
	{[]byte{'-'}, "volume down", func(_ context.Context, e *engine.Engine) (string, error) {
		return volumeStatus(e.Controller().VolumeDown(constant.VolumeStep)), nil
	}},
	{[]byte{'m'}, "mute", func(_ context.Context, e *engine.Engine) (string, error) {
		return volumeStatus(e.Controller().ToggleMute()), nil
	}},
	{[]byte{'s'}, "cycle speed", func(_ context.Context, e *engine.Engine) (string, error) {
		return fmt.Sprintf("speed %gx", e.Controller().CycleSpeed().Rate), nil
	}},
	{[]byte{'a'}, "set loop start", func(_ context.Context, e *engine.Engine) (string, error) {
		return loopStatus(e.Controller().SetLoopA())
	}},
	{[]byte{'b'}, "set loop end", func(_ context.Context, e *engine.Engine) (string, error) {
		return loopStatus(e.Controller().SetLoopB())
	}},
	{[]byte{'r'}, "clear loop", func(_ context.Context, e *engine.Engine) (string, error) {
		e.Controller().ResetLoop()
		return "loop cleared", nil
	}},
	{[]byte{'n'}, "next item", func(ctx context.Context, e *engine.Engine) (string, error) {
		return icon.Get(icon.Cursor) + " next", e.Next(ctx)
	}},
	{[]byte{'p'}, "previous item", func(ctx context.Context, e *engine.Engine) (string, error) {
		return icon.Get(icon.Cursor) + " previous", e.Prev(ctx)
	}},
	{[]byte{'o'}, "toggle playlist loop", func(_ context.Context, e *engine.Engine) (string, error) {
		return fmt.Sprintf("%s playlist loop %t", icon.Get(icon.Loop), e.Playlist.ToggleLoop()), nil
	}},
	{[]byte{'z'}, "toggle shuffle", func(_ context.Context, e *engine.Engine) (string, error) {
		return fmt.Sprintf("%s shuffle %t", icon.Get(icon.Shuffle), e.Playlist.ToggleShuffle()), nil
	}},
	{[]byte{'c'}, "screenshot", func(_ context.Context, e *engine.Engine) (string, error) {
		path, err := e.Screenshot(where.Screenshots())
		return icon.Get(icon.Camera) + " " + path, err
	}},
}

func findBinding(k byte) (binding, bool) {
	return lo.Find(bindings, func(b binding) bool {
		return lo.Contains(b.keys, k)
	})
}

func controlsHelp() string {
	var b strings.Builder
	for _, binding := range bindings {
		keys := lo.Map(binding.keys, func(k byte, _ int) string {
			if k == ' ' {
				return "space"
			}
			return string(k)
		})
		fmt.Fprintf(&b, "  %-8s %s\r\n", style.Bold(strings.Join(keys, " ")), style.Faint(binding.help))
	}
	fmt.Fprintf(&b, "  %-8s %s\r\n", style.Bold("q"), style.Faint("quit"))
	return b.String()
}

// press runs the action bound to k and returns the status line.
func press(ctx context.Context, e *engine.Engine, k byte) string {
	b, ok := findBinding(k)
	if !ok {
		return ""
	}

	status, err := b.run(ctx, e)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoItem), errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrNoDuration):
			return style.Faint(err.Error())
		default:
			log.Warnf("%s: %v", b.help, err)
			return icon.Get(icon.Fail) + " " + err.Error()
		}
	}
	return status
}

// startControls reads single key presses from the terminal until ctx is done. It returns a func
// that gives the terminal back.
func startControls(ctx context.Context, e *engine.Engine, quit context.CancelFunc) (restore func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		log.Warnf("raw terminal: %v", err)
		return func() {}
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 || ctx.Err() != nil {
				return
			}

			switch k := buf[0]; k {
			case 'q', ctrlC:
				quit()
				return
			case '?':
				fmt.Print("\r\n" + controlsHelp())
			default:
				if status := press(ctx, e, k); status != "" {
					fmt.Printf("\r\033[K%s", status)
				}
			}
		}
	}()

	return func() {
		_ = term.Restore(fd, state)
		fmt.Println()
	}
}
