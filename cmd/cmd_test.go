package cmd

import (
	"strings"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/reel-player/reel/config"
	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/where"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPosition(t *testing.T) {
	Convey("Positions on the command line start at 1", t, func() {
		index, err := position("1")
		So(err, ShouldBeNil)
		So(index, ShouldEqual, 0)

		index, err = position("12")
		So(err, ShouldBeNil)
		So(index, ShouldEqual, 11)

		for _, bad := range []string{"0", "-3", "first", ""} {
			_, err = position(bad)
			So(err, ShouldNotBeNil)
		}
	})
}

func TestOnOff(t *testing.T) {
	Convey("Given an optional on/off argument", t, func() {
		Convey("No argument flips the current value", func() {
			v, err := onOff(nil, true)
			So(err, ShouldBeNil)
			So(v, ShouldBeFalse)

			v, err = onOff(nil, false)
			So(err, ShouldBeNil)
			So(v, ShouldBeTrue)
		})

		Convey("Explicit values win over the current one", func() {
			v, err := onOff([]string{"on"}, true)
			So(err, ShouldBeNil)
			So(v, ShouldBeTrue)

			v, err = onOff([]string{"off"}, false)
			So(err, ShouldBeNil)
			So(v, ShouldBeFalse)
		})

		Convey("Anything else is rejected", func() {
			_, err := onOff([]string{"maybe"}, false)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestConfigValues(t *testing.T) {
	Convey("Given raw values from the command line", t, func() {
		Convey("They are parsed into the default's type", func() {
			v, err := parseValue(config.Default[key.PlayerSeekLarge], []string{"30"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 30)

			v, err = parseValue(config.Default[key.NotifyEnable], []string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)

			v, err = parseValue(config.Default[key.StoreBackend], []string{"sqlite"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "sqlite")
		})

		Convey("Unparsable or missing values are errors", func() {
			_, err := parseValue(config.Default[key.PlayerSeekLarge], []string{"soon"})
			So(err, ShouldNotBeNil)

			_, err = parseValue(config.Default[key.NotifyEnable], nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Values outside a key's domain are rejected", func() {
			So(validateValue(key.StoreBackend, "badger"), ShouldBeNil)
			So(validateValue(key.StoreBackend, "mongo"), ShouldNotBeNil)
			So(validateValue(key.PlayerSnapshotInterval, 0), ShouldNotBeNil)
			So(validateValue(key.StoreRedisDB, 0), ShouldBeNil)
			So(validateValue(key.StoreRedisDB, -1), ShouldNotBeNil)
		})

		Convey("An unknown key suggests the closest one", func() {
			So(errUnknownKey("store.backnd").Error(), ShouldContainSubstring, key.StoreBackend)
		})
	})
}

func TestClock(t *testing.T) {
	Convey("Durations render as M:SS or H:MM:SS", t, func() {
		So(clock(0), ShouldEqual, "0:00")
		So(clock(65.9), ShouldEqual, "1:05")
		So(clock(3661), ShouldEqual, "1:01:01")
		So(clock(-4), ShouldEqual, "0:00")
	})
}

func TestBindings(t *testing.T) {
	Convey("Given the keyboard bindings", t, func() {
		Convey("No key is bound twice", func() {
			seen := map[byte]string{}
			for _, b := range bindings {
				for _, k := range b.keys {
					_, dup := seen[k]
					So(dup, ShouldBeFalse)
					seen[k] = b.help
				}
			}
		})

		Convey("Quit and help keys stay free", func() {
			for _, k := range []byte{'q', '?', ctrlC} {
				_, ok := findBinding(k)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("Aliases resolve to the same action", func() {
			plus, ok := findBinding('+')
			So(ok, ShouldBeTrue)
			equals, ok := findBinding('=')
			So(ok, ShouldBeTrue)
			So(plus.help, ShouldEqual, equals.help)
		})

		Convey("The help lists every binding", func() {
			help := controlsHelp()
			for _, b := range bindings {
				So(help, ShouldContainSubstring, b.help)
			}
			So(help, ShouldContainSubstring, "space")
		})
	})
}

func TestEnvVariables(t *testing.T) {
	Convey("Every config key and the config path override are listed with the prefix", t, func() {
		envs := envVariables()
		So(envs, ShouldHaveLength, len(config.Default)+1)
		So(envs, ShouldContain, where.EnvConfigPath)
		So(envs, ShouldContain, "REEL_STORE_BACKEND")
		for _, env := range envs {
			So(strings.HasPrefix(env, "REEL_"), ShouldBeTrue)
		}
	})
}

func TestSchemas(t *testing.T) {
	Convey("Every stored document has a schema", t, func() {
		reflector := new(jsonschema.Reflector)
		for name, target := range schemaTargets {
			So(reflector.Reflect(target()), ShouldNotBeNil)
			So(schemaCmd.ValidArgs, ShouldContain, name)
		}
	})
}

func TestBuildInfo(t *testing.T) {
	Convey("Build information names the running platform", t, func() {
		info := currentBuild()
		So(info.App, ShouldEqual, "reel")
		So(info.Platform, ShouldContainSubstring, "/")
		So(info.Go, ShouldStartWith, "go")
	})
}
