package playlist

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestM3U(t *testing.T) {
	Convey("Given a playlist", t, func() {
		nav := New(context.Background(), kv.NewMemoryStore())
		fill(nav, a, media.Ref("file:///v/my movie.mp4"))

		Convey("WriteM3U should emit a header and one entry per item", func() {
			var buf bytes.Buffer
			So(WriteM3U(&buf, nav.Items()), ShouldBeNil)
			So(buf.String(), ShouldEqual, "#EXTM3U\n"+
				"#EXTINF:-1,a.mp4\nfile:///v/a.mp4\n"+
				"#EXTINF:-1,my movie.mp4\nfile:///v/my movie.mp4\n")
		})

		Convey("ReadM3U should read what WriteM3U wrote", func() {
			var buf bytes.Buffer
			So(WriteM3U(&buf, nav.Items()), ShouldBeNil)
			refs, err := ReadM3U(&buf)
			So(err, ShouldBeNil)
			So(refs, ShouldResemble, nav.Items())
		})

		Convey("ReadM3U should convert paths and skip invalid ones", func() {
			refs, err := ReadM3U(strings.NewReader("#EXTM3U\n\n/home/u/x.mkv\n# comment\n../../etc/passwd\nhttp://example.com/live.m3u8\n"))
			So(err, ShouldBeNil)
			So(refs, ShouldResemble, []media.Ref{"file:///home/u/x.mkv", "http://example.com/live.m3u8"})
		})

		Convey("Import should append the entries", func() {
			added, err := nav.Import(strings.NewReader("/v/c.webm\n"))
			So(err, ShouldBeNil)
			So(added, ShouldEqual, 1)
			So(nav.Len(), ShouldEqual, 3)
		})

		Convey("ImportFile should resolve relative entries next to the file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "list.m3u")
			So(os.WriteFile(path, []byte("#EXTM3U\nc.webm\n/v/d.mp4\n"), 0644), ShouldBeNil)

			added, err := nav.ImportFile(path)
			So(err, ShouldBeNil)
			So(added, ShouldEqual, 2)
			So(nav.Items()[2:], ShouldResemble, []media.Ref{
				media.ToRef(filepath.Join(dir, "c.webm")),
				"file:///v/d.mp4",
			})
		})

		Convey("ExportFile should replace the target file", func() {
			path := filepath.Join(t.TempDir(), "list.m3u")
			So(os.WriteFile(path, []byte("stale"), 0644), ShouldBeNil)
			So(nav.ExportFile(path), ShouldBeNil)

			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldStartWith, "#EXTM3U\n")
			So(string(data), ShouldContainSubstring, "file:///v/a.mp4")
		})
	})
}

func TestFind(t *testing.T) {
	Convey("Given named items", t, func() {
		nav := New(context.Background(), kv.NewMemoryStore())
		fill(nav,
			media.Ref("file:///v/The.Matrix.1999.mkv"),
			media.Ref("file:///v/Matrix.mkv"),
			media.Ref("file:///v/Inception.mp4"),
		)

		Convey("Matches should be case-insensitive and closest first", func() {
			matches := nav.Find("matrix")
			So(matches, ShouldHaveLength, 2)
			So(matches[0].Index, ShouldEqual, 1)
			So(matches[1].Index, ShouldEqual, 0)
		})

		Convey("Unmatched queries should return nothing", func() {
			So(nav.Find("zzz"), ShouldBeEmpty)
		})
	})
}
