package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/where"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)
		So(Enabled(), ShouldBeFalse)

		Convey("Entries are discarded without panicking", func() {
			So(func() { WithFields(logrus.Fields{"ref": "x"}).Info("ignored") }, ShouldNotPanic)
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "not-a-level")
		defer viper.Set(key.LogsWrite, false)

		So(Setup(), ShouldBeNil)
		So(Enabled(), ShouldBeTrue)

		Convey("A dated log file is created and the level falls back to info", func() {
			So(FileName(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)), ShouldEqual, "2026-03-01.log")

			path := filepath.Join(where.Logs(), FileName(time.Now()))
			So(lo.Must(filesystem.API().Exists(path)), ShouldBeTrue)
			So(logrus.GetLevel(), ShouldEqual, logrus.InfoLevel)
		})
	})
}

func TestCollectGarbage(t *testing.T) {
	Convey("Given a log directory with old and fresh files", t, func() {
		dir := "/gc-logs"
		fs := filesystem.API()
		So(fs.MkdirAll(dir, 0755), ShouldBeNil)

		now := time.Now()
		old := filepath.Join(dir, "2020-01-01.log")
		fresh := filepath.Join(dir, "today.log")
		other := filepath.Join(dir, "notes.txt")
		for _, p := range []string{old, fresh, other} {
			So(fs.WriteFile(p, []byte("x"), 0644), ShouldBeNil)
		}
		So(fs.Chtimes(old, now.Add(-2*MaxAge), now.Add(-2*MaxAge)), ShouldBeNil)
		So(fs.Chtimes(other, now.Add(-2*MaxAge), now.Add(-2*MaxAge)), ShouldBeNil)

		Convey("Only expired log files are removed", func() {
			So(collect(dir, now.Add(-MaxAge)), ShouldEqual, 1)
			So(lo.Must(fs.Exists(old)), ShouldBeFalse)
			So(lo.Must(fs.Exists(fresh)), ShouldBeTrue)
			So(lo.Must(fs.Exists(other)), ShouldBeTrue)
		})
	})
}
