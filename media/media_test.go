package media

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClassification(t *testing.T) {
	Convey("Extension", t, func() {
		So(Extension("movie.MP4"), ShouldEqual, "mp4")
		So(Extension("archive.tar.gz"), ShouldEqual, "gz")
		So(Extension("no-extension"), ShouldEqual, "")
		So(Extension("/dir.d/no-extension"), ShouldEqual, "")
	})

	Convey("IsVideo", t, func() {
		So(IsVideo("movie.mp4"), ShouldBeTrue)
		So(IsVideo("movie.MKV"), ShouldBeTrue)
		So(IsVideo("clip.m4v"), ShouldBeTrue)
		So(IsVideo("image.png"), ShouldBeFalse)
		So(IsVideo("no-extension"), ShouldBeFalse)
		So(IsSubtitle("Episode 1.SRT"), ShouldBeTrue)
	})

	Convey("FileName", t, func() {
		So(FileName(`C:\videos\movie.mp4`), ShouldEqual, "movie.mp4")
		So(FileName("/home/user/movie.mp4"), ShouldEqual, "movie.mp4")
		So(FileName("movie.mp4"), ShouldEqual, "movie.mp4")
		So(FileName("https://example.com/my%20movie.mkv"), ShouldEqual, "my movie.mkv")
		So(FileName("file:///home/user/50%25 off.mkv"), ShouldEqual, "50%25 off.mkv")
		So(Stem("/home/user/show.s01e01.mkv"), ShouldEqual, "show.s01e01")
	})
}

func TestRefs(t *testing.T) {
	Convey("ToRef", t, func() {
		So(ToRef(`C:\videos\my movie.mp4`), ShouldEqual, Ref("file:///C:/videos/my movie.mp4"))
		So(ToRef("/home/user/movie.mp4"), ShouldEqual, Ref("file:///home/user/movie.mp4"))
		So(ToRef("https://example.com/a.mp4"), ShouldEqual, Ref("https://example.com/a.mp4"))
	})

	Convey("Path inverts ToRef", t, func() {
		So(ToRef("/home/user/movie.mp4").Path(), ShouldEqual, "/home/user/movie.mp4")
		So(Ref("https://example.com/a.mp4").Path(), ShouldEqual, "https://example.com/a.mp4")
		So(Ref("https://example.com/my%20movie.mkv").Name(), ShouldEqual, "my movie.mkv")
	})

	Convey("Percent signs in file names survive the round trip", t, func() {
		for _, path := range []string{"/videos/a%20b.mp4", "/videos/50%25 off.mkv", "/videos/100%.mp4", "/videos/my movie.mp4"} {
			ref := ToRef(path)
			So(ref.Path(), ShouldEqual, filepath.FromSlash(path))
			So(ref.Name(), ShouldEqual, FileName(path))
		}
		So(ToRef("/videos/a%20b.mp4").Name(), ShouldEqual, "a%20b.mp4")
	})

	Convey("ScreenshotName", t, func() {
		now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
		So(ScreenshotName(Ref("file:///v/movie.mp4"), 3661.9, now), ShouldEqual, "movie_01-01-01_2026-03-04.png")
		So(ScreenshotName(Ref(""), 0, now), ShouldEqual, "video_00-00-00_2026-03-04.png")
	})
}

func TestValidatePath(t *testing.T) {
	Convey("Given candidate paths", t, func() {
		Convey("Plain paths are accepted", func() {
			So(ValidatePath(`C:\videos\movie.mp4`), ShouldBeNil)
			So(ValidatePath("/home/user/movie.mp4"), ShouldBeNil)
		})

		Convey("Suspicious paths are rejected with an InvalidPathError", func() {
			for _, p := range []string{"../secret.txt", "file<bad>.mp4", "a|b.mkv", "", "--script=x.lua", "a\x00.mp4"} {
				err := ValidatePath(p)
				So(err, ShouldNotBeNil)

				var invalid *InvalidPathError
				So(errors.As(err, &invalid), ShouldBeTrue)
				So(invalid.Path, ShouldEqual, p)
			}
		})
	})
}
