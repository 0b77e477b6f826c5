package where

import (
	"path/filepath"
	"testing"

	"github.com/reel-player/reel/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honours the override variable", func() {
			t.Setenv(EnvConfigPath, "/custom/reel")
			So(Config(), ShouldEqual, "/custom/reel")
			So(lo.Must(filesystem.API().IsDir("/custom/reel")), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs() and Store() live under Config()", func() {
			So(filepath.Dir(Logs()), ShouldEqual, Config())
			So(filepath.Dir(Store()), ShouldEqual, Config())
			So(lo.Must(filesystem.API().IsDir(Store())), ShouldBeTrue)
		})
	})
}
