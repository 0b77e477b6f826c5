package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/media"
	"github.com/reel-player/reel/player"
	"github.com/reel-player/reel/player/playertest"
	"github.com/reel-player/reel/playlist"
	"github.com/reel-player/reel/session"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const srt = `1
00:00:01,000 --> 00:00:03,000
Hello
`

func seed() {
	fs := filesystem.API()
	for _, dir := range []string{"/videos/season"} {
		_ = fs.MkdirAll(dir, 0o755)
	}
	for path, content := range map[string]string{
		"/videos/a.mp4":        "",
		"/videos/b.mkv":        "",
		"/videos/b.srt":        srt,
		"/videos/notes.txt":    "",
		"/videos/season/2.mkv": "",
		"/videos/season/1.mp4": "",
		"/videos/season/x.nfo": "",
		"/subs/a.srt":          srt,
	} {
		_ = fs.WriteFile(path, []byte(content), 0o644)
	}
}

// eventually polls cond until it holds or a second passed.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func open(fake *playertest.Fake) *Engine {
	e, err := Open(context.Background(), Options{
		Store:            kv.Options{Backend: kv.BackendMemory},
		Media:            fake,
		Resume:           true,
		SiblingSubtitles: true,
		OverlayDuration:  time.Second,
	})
	So(err, ShouldBeNil)
	return e
}

func loaded(fake *playertest.Fake) []media.Ref {
	_, refs, _ := fake.Snapshot()
	return refs
}

func TestResolve(t *testing.T) {
	Convey("Given a video directory", t, func() {
		seed()

		Convey("Files, directories and URLs should resolve", func() {
			refs, err := Resolve("/videos/a.mp4", "/videos/season", "https://example.com/live.m3u8")
			So(err, ShouldBeNil)
			So(refs, ShouldResemble, []media.Ref{
				"file:///videos/a.mp4",
				"file:///videos/season/1.mp4",
				"file:///videos/season/2.mkv",
				"https://example.com/live.m3u8",
			})
		})

		Convey("Rejected arguments should be reported without dropping the rest", func() {
			refs, err := Resolve("/videos/notes.txt", "/videos/../etc/a.mp4", "/videos/missing.mp4", "/videos/b.mkv")
			So(refs, ShouldResemble, []media.Ref{"file:///videos/b.mkv"})
			So(err, ShouldNotBeNil)

			var invalid *media.InvalidPathError
			So(errors.As(err, &invalid), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "not a video file")
			So(err.Error(), ShouldContainSubstring, "traversal")
		})
	})
}

func TestPlaylistControl(t *testing.T) {
	Convey("Given an engine with two items", t, func() {
		seed()
		fake := playertest.New()
		e := open(fake)
		Reset(func() { _ = e.Close() })

		So(e.Play(context.Background()), ShouldEqual, ErrEmptyPlaylist)

		n, err := e.AddPaths("/videos/a.mp4", "/videos/b.mkv")
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 2)

		ctx := context.Background()

		Convey("Play should start the selected entry", func() {
			So(e.Play(ctx), ShouldBeNil)
			So(loaded(fake), ShouldResemble, []media.Ref{"file:///videos/a.mp4"})
			So(e.Controller().Snapshot().State, ShouldEqual, session.Loading)
		})

		Convey("Next and Prev should walk the playlist", func() {
			So(e.Play(ctx), ShouldBeNil)
			So(e.Next(ctx), ShouldBeNil)
			So(e.Next(ctx), ShouldEqual, ErrNoNext)
			So(e.Prev(ctx), ShouldBeNil)
			So(loaded(fake), ShouldResemble, []media.Ref{
				"file:///videos/a.mp4",
				"file:///videos/b.mkv",
				"file:///videos/a.mp4",
			})

			Convey("Looping should wrap", func() {
				e.Playlist.SetLooping(true)
				So(e.Prev(ctx), ShouldBeNil)
				So(e.Playlist.Cursor(), ShouldEqual, 1)
			})
		})

		Convey("PlayIndex should refuse unknown entries", func() {
			So(errors.Is(e.PlayIndex(ctx, 5), playlist.ErrIndexOutOfRange), ShouldBeTrue)
		})

		Convey("A failing load should surface as a state error", func() {
			fake.LoadErr = playertest.ErrBoom
			err := e.PlayIndex(ctx, 0)
			var stateErr *session.StateError
			So(errors.As(err, &stateErr), ShouldBeTrue)
		})

		Convey("Sibling subtitles should be attached", func() {
			So(e.PlayIndex(ctx, 1), ShouldBeNil)
			So(e.Controller().Snapshot().Cues, ShouldEqual, 1)
		})

		Convey("Explicit subtitles should be attached to the active item", func() {
			So(e.LoadSubtitles("/subs/a.srt"), ShouldNotBeNil)
			So(e.PlayIndex(ctx, 0), ShouldBeNil)
			So(e.LoadSubtitles("/subs/a.srt"), ShouldBeNil)
			So(e.Controller().Snapshot().Cues, ShouldEqual, 1)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running engine", t, func() {
		seed()
		fake := playertest.New()
		e := open(fake)
		Reset(func() { _ = e.Close() })

		_, err := e.AddPaths("/videos/a.mp4", "/videos/b.mkv")
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		So(e.Play(ctx), ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- e.Run(ctx) }()

		ready := func() bool { return e.Controller().Snapshot().State == session.Ready }

		Convey("Items should play through and the run should end with the playlist", func() {
			fake.Emit(player.Notification{Kind: player.LoadedMetadata, Seconds: 100})
			So(eventually(ready), ShouldBeTrue)
			fake.Emit(player.Notification{Kind: player.Ended})

			So(eventually(func() bool { return len(loaded(fake)) == 2 }), ShouldBeTrue)
			fake.Emit(player.Notification{Kind: player.LoadedMetadata, Seconds: 50})
			So(eventually(ready), ShouldBeTrue)
			fake.Emit(player.Notification{Kind: player.Ended})

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(time.Second):
				So("run did not return", ShouldBeEmpty)
			}

			So(e.Controller().Snapshot().State, ShouldEqual, session.Idle)
			So(e.History.IsCompleted("file:///videos/a.mp4"), ShouldBeTrue)
			So(e.History.IsCompleted("file:///videos/b.mkv"), ShouldBeTrue)
		})

		Convey("A playback error should not advance", func() {
			fake.Emit(player.Notification{Kind: player.Error, Reason: "decode failed"})
			So(eventually(func() bool { return e.Controller().Snapshot().State == session.Error }), ShouldBeTrue)
			So(len(loaded(fake)), ShouldEqual, 1)

			cancel()
			So(<-done, ShouldBeNil)
		})

		Convey("The run should end when the player exits", func() {
			_ = fake.Close()
			So(<-done, ShouldBeNil)
		})

		Convey("Cues should be drawn on the player", func() {
			So(e.LoadSubtitles("/subs/a.srt"), ShouldBeNil)
			fake.Emit(player.Notification{Kind: player.LoadedMetadata, Seconds: 100})
			fake.Emit(player.Notification{Kind: player.TimeUpdate, Seconds: 2})

			So(eventually(func() bool {
				text := fake.OverlayText()
				return len(text) > 0 && text[len(text)-1] == "Hello"
			}), ShouldBeTrue)

			cancel()
			So(<-done, ShouldBeNil)
		})
	})
}

func TestSeekOnLoad(t *testing.T) {
	Convey("A start offset should be applied once metadata arrives", t, func() {
		seed()
		fake := playertest.New()
		e := open(fake)
		Reset(func() { _ = e.Close() })

		_, _ = e.AddPaths("/videos/a.mp4")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		e.SeekOnLoad(42)
		So(e.Play(ctx), ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- e.Run(ctx) }()

		fake.Emit(player.Notification{Kind: player.LoadedMetadata, Seconds: 100})
		So(eventually(func() bool { return e.Controller().Snapshot().Position == 42 }), ShouldBeTrue)

		cancel()
		So(<-done, ShouldBeNil)

		_, _, seeks := fake.Snapshot()
		So(seeks, ShouldResemble, []float64{42})
	})
}

func TestPersistence(t *testing.T) {
	Convey("Given a file backed state", t, func() {
		seed()
		opts := kv.Options{Backend: kv.BackendFile, Dir: "/state"}
		ctx := context.Background()

		state, err := OpenState(ctx, opts)
		So(err, ShouldBeNil)

		_, err = state.AddPaths("/videos/a.mp4", "/videos/b.mkv")
		So(err, ShouldBeNil)
		state.History.MarkCompleted("file:///videos/a.mp4", 100)
		state.Playlist.SetLooping(true)
		So(state.Close(), ShouldBeNil)

		Convey("Reopening should restore it", func() {
			state, err := OpenState(ctx, opts)
			So(err, ShouldBeNil)
			defer state.Close()

			So(state.Playlist.Items(), ShouldResemble, []media.Ref{"file:///videos/a.mp4", "file:///videos/b.mkv"})
			So(state.Playlist.Looping(), ShouldBeTrue)
			So(state.History.IsCompleted("file:///videos/a.mp4"), ShouldBeTrue)

			Convey("ClearWatched should drop completed entries", func() {
				So(state.ClearWatched(), ShouldEqual, 1)
				So(state.Playlist.Items(), ShouldResemble, []media.Ref{"file:///videos/b.mkv"})
			})
		})
	})
}
