package util

import (
	"path/filepath"
	"testing"

	"github.com/reel-player/reel/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "item", "items"), ShouldEqual, "1 item")
		So(Quantify(2, "item", "items"), ShouldEqual, "2 items")
		So(Quantify(0, "item", "items"), ShouldEqual, "0 items")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 10), ShouldEqual, 5)
		So(Clamp(-1, 0, 10), ShouldEqual, 0)
		So(Clamp(1.5, 0.0, 1.0), ShouldEqual, 1.0)
	})
}

func TestDelete(t *testing.T) {
	Convey("Given a directory with files", t, func() {
		fs := filesystem.API()
		dir := filepath.Join("/tmp", "reel-util")
		So(fs.MkdirAll(dir, 0o755), ShouldBeNil)
		So(fs.WriteFile(filepath.Join(dir, "a.json"), []byte("1234"), 0o644), ShouldBeNil)
		So(fs.WriteFile(filepath.Join(dir, "b.json"), []byte("12"), 0o644), ShouldBeNil)

		Convey("DirSize should sum the files", func() {
			size, err := DirSize(dir)
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 6)
		})

		Convey("Delete should remove the tree", func() {
			So(Delete(dir), ShouldBeNil)
			exists, _ := fs.Exists(dir)
			So(exists, ShouldBeFalse)
		})

		Convey("Delete should fail on a missing path", func() {
			So(Delete("/tmp/missing-reel"), ShouldNotBeNil)
		})
	})
}
