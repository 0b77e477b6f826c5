package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/reel-player/reel/media"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV answers IPC commands the way mpv does and can push events to observers.
type fakeMPV struct {
	listener net.Listener
	commands chan []any
	events   chan string
}

func newFakeMPV(t *testing.T) (*fakeMPV, string) {
	dir, err := os.MkdirTemp("", "reel")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "mpv.sock")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })

	f := &fakeMPV{listener: l, commands: make(chan []any, 32), events: make(chan string, 32)}
	go f.serve()
	return f, path
}

func (f *fakeMPV) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeMPV) handle(conn net.Conn) {
	defer conn.Close()

	observing := make(chan struct{})
	go func() {
		<-observing
		for line := range f.events {
			if _, err := conn.Write([]byte(line + "\n")); err != nil {
				return
			}
		}
	}()

	observed := false
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}

		var cmd ipcCommand
		if err := json.Unmarshal(line, &cmd); err != nil {
			continue
		}
		f.commands <- cmd.Command

		if cmd.Command[0] == "observe_property" {
			if !observed {
				observed = true
				close(observing)
			}
			continue
		}

		// a broadcast arriving before the reply must be skipped
		_, _ = conn.Write([]byte(`{"event":"audio-reconfig"}` + "\n"))

		reply := map[string]any{"request_id": cmd.RequestID, "error": "success", "data": nil}
		switch cmd.Command[0] {
		case "get_property":
			reply["data"] = 42.5
		case "loadfile":
			reply["data"] = map[string]any{"playlist_entry_id": 7}
		case "bogus":
			reply["error"] = "invalid parameter"
		}
		payload, _ := json.Marshal(reply)
		_, _ = conn.Write(append(payload, '\n'))
	}
}

func TestIPC(t *testing.T) {
	Convey("Given a fake mpv socket", t, func() {
		fake, path := newFakeMPV(t)

		Convey("Replies should be matched by request id", func() {
			data, err := doSendCommand(path, []any{"get_property", "time-pos"})
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 42.5)
			So(<-fake.commands, ShouldResemble, []any{"get_property", "time-pos"})
		})

		Convey("loadfile replies should name the playlist entry", func() {
			data, err := doSendCommand(path, []any{"loadfile", "/videos/a.mp4", "replace"})
			So(err, ShouldBeNil)
			So(entryOf(data), ShouldEqual, Entry(7))
			So(entryOf(nil), ShouldEqual, Entry(0))
		})

		Convey("mpv errors should be reported", func() {
			_, err := doSendCommand(path, []any{"bogus"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid parameter")
		})

		Convey("The event listener should translate observed events", func() {
			var got []Notification
			done := make(chan struct{})

			el := NewEventListener(path, func(n Notification) {
				got = append(got, n)
				if n.Kind == Ended {
					close(done)
				}
			})
			So(el.Start(), ShouldBeNil)

			for range observed {
				So((<-fake.commands)[0], ShouldEqual, "observe_property")
			}

			fake.events <- `{"event":"start-file","playlist_entry_id":3}`
			fake.events <- `{"event":"property-change","name":"duration","data":120.5}`
			fake.events <- `{"event":"file-loaded"}`
			fake.events <- `{"event":"property-change","name":"time-pos","data":3.25}`
			fake.events <- `{"event":"property-change","name":"pause","data":true}`
			fake.events <- `{"event":"end-file","reason":"eof","playlist_entry_id":3}`

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				So("timed out", ShouldBeEmpty)
			}

			el.Stop()
			<-el.Done()

			So(got, ShouldResemble, []Notification{
				{Kind: LoadStart, Entry: 3},
				{Kind: LoadedMetadata, Entry: 3, Seconds: 120.5},
				{Kind: CanPlay, Entry: 3},
				{Kind: TimeUpdate, Entry: 3, Seconds: 3.25},
				{Kind: Paused, Entry: 3, Paused: true},
				{Kind: Ended, Entry: 3},
			})
		})
	})
}

func TestTranslator(t *testing.T) {
	Convey("Given a translator", t, func() {
		var tr translator
		translate := func(raw string) (Notification, bool) {
			var event map[string]any
			So(json.Unmarshal([]byte(raw), &event), ShouldBeNil)
			return tr.translate(event)
		}

		Convey("End of file should be reported once per file", func() {
			n, ok := translate(`{"event":"property-change","name":"eof-reached","data":true}`)
			So(ok, ShouldBeTrue)
			So(n.Kind, ShouldEqual, Ended)

			_, ok = translate(`{"event":"end-file","reason":"eof"}`)
			So(ok, ShouldBeFalse)

			_, ok = translate(`{"event":"start-file"}`)
			So(ok, ShouldBeTrue)
			_, ok = translate(`{"event":"end-file","reason":"eof"}`)
			So(ok, ShouldBeTrue)
		})

		Convey("Reports should carry the entry of the file they belong to", func() {
			n, _ := translate(`{"event":"start-file","playlist_entry_id":1}`)
			So(n.Entry, ShouldEqual, Entry(1))
			n, _ = translate(`{"event":"property-change","name":"time-pos","data":9.5}`)
			So(n.Entry, ShouldEqual, Entry(1))

			// the old file ends after the new one was requested but before it starts
			n, _ = translate(`{"event":"end-file","reason":"error","playlist_entry_id":1}`)
			So(n.Entry, ShouldEqual, Entry(1))

			n, _ = translate(`{"event":"start-file","playlist_entry_id":2}`)
			So(n.Entry, ShouldEqual, Entry(2))
			n, _ = translate(`{"event":"property-change","name":"duration","data":60}`)
			So(n, ShouldResemble, Notification{Kind: LoadedMetadata, Entry: 2, Seconds: 60})
		})

		Convey("Failed loads should become errors with a reason", func() {
			n, ok := translate(`{"event":"end-file","reason":"error","file_error":"unrecognized file format"}`)
			So(ok, ShouldBeTrue)
			So(n, ShouldResemble, Notification{Kind: Error, Reason: "unrecognized file format"})
		})

		Convey("Stops and replacements should be ignored", func() {
			_, ok := translate(`{"event":"end-file","reason":"stop"}`)
			So(ok, ShouldBeFalse)
			_, ok = translate(`{"event":"end-file","reason":"quit"}`)
			So(ok, ShouldBeFalse)
		})

		Convey("Unavailable properties should be ignored", func() {
			_, ok := translate(`{"event":"property-change","name":"time-pos"}`)
			So(ok, ShouldBeFalse)
			_, ok = translate(`{"event":"property-change","name":"duration","data":0}`)
			So(ok, ShouldBeFalse)
			_, ok = translate(`{"event":"property-change","name":"eof-reached","data":false}`)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMPV(t *testing.T) {
	Convey("MPV", t, func() {
		mpv := NewMPV("")

		Convey("Should use a unique socket in the temp dir", func() {
			So(filepath.Dir(mpv.Socket()), ShouldEqual, filepath.Clean(os.TempDir()))
			So(mpv.Socket(), ShouldNotEqual, NewMPV("").Socket())
			So(mpv.Socket(), ShouldEndWith, ".sock")
		})

		Convey("Should start idle and leave mpv.conf alone", func() {
			args := strings.Join(mpv.args(), " ")
			So(args, ShouldContainSubstring, "--idle=yes")
			So(args, ShouldContainSubstring, "--input-ipc-server="+mpv.Socket())
			So(args, ShouldNotContainSubstring, "--vo")
			So(args, ShouldNotContainSubstring, "--hwdec")
		})

		Convey("Should refuse commands before starting", func() {
			So(mpv.Seek(10), ShouldEqual, ErrNotRunning)
			So(mpv.Play(), ShouldEqual, ErrNotRunning)
		})

		Convey("Should fail to load when the binary is missing", func() {
			missing := NewMPV("reel-test-no-such-mpv-binary")
			_, err := missing.Load(context.Background(), media.ToRef("/videos/a.mp4"))
			So(err, ShouldNotBeNil)

			So(missing.Close(), ShouldBeNil)
			_, open := <-missing.Notifications()
			So(open, ShouldBeFalse)
		})

		Convey("Close without start should close notifications", func() {
			So(mpv.Close(), ShouldBeNil)
			_, open := <-mpv.Notifications()
			So(open, ShouldBeFalse)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Should turn file references into paths", func() {
			target, err := sanitizeMediaTarget(media.ToRef("/videos/my movie.mp4"))
			So(err, ShouldBeNil)
			So(target, ShouldEqual, filepath.FromSlash("/videos/my movie.mp4"))

			target, err = sanitizeMediaTarget(media.ToRef("/videos/a%20b.mp4"))
			So(err, ShouldBeNil)
			So(target, ShouldEqual, filepath.FromSlash("/videos/a%20b.mp4"))
		})

		Convey("Should keep http urls", func() {
			target, err := sanitizeMediaTarget(media.Ref("https://example.com/a.mp4"))
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "https://example.com/a.mp4")
		})

		Convey("Should reject flags, control characters and other schemes", func() {
			for _, ref := range []media.Ref{"", "--script=evil.lua", "a\nb.mp4", "ftp://example.com/a.mp4"} {
				_, err := sanitizeMediaTarget(ref)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("Titles should be flattened", func() {
			So(sanitizeTitle(" a\nb\tc\x00 "), ShouldEqual, "a b c")
		})
	})

	Convey("Notification strings", t, func() {
		So(Notification{Kind: TimeUpdate, Seconds: 1.5}.String(), ShouldEqual, "time-update(1.500)")
		So(Notification{Kind: Error, Reason: "x"}.String(), ShouldEqual, "error(x)")
		So(Kind(99).String(), ShouldEqual, "Kind(99)")
	})
}
