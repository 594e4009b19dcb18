package cmd

import (
	"bytes"
	"errors"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/filesystem"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/player"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestRender(t *testing.T) {
	Convey("Given a status report", t, func() {
		viper.Set(key.CliColored, false)
		viper.Set(key.IconsVariant, "plain")

		r := report{
			Target: "vlc://127.0.0.1:8080",
			State:  player.State{Paused: true, Duration: 3725, CurrentTime: 61},
		}
		var out bytes.Buffer

		Convey("json carries every property", func() {
			So(render(&out, "json", r), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, `"target": "vlc://127.0.0.1:8080"`)
			So(out.String(), ShouldContainSubstring, `"paused": true`)
			So(out.String(), ShouldContainSubstring, `"current_time": 61`)
		})

		Convey("yaml uses the same field names", func() {
			So(render(&out, "yaml", r), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "target: vlc://127.0.0.1:8080")
			So(out.String(), ShouldContainSubstring, "current_time: 61")
		})

		Convey("text and table show formatted positions", func() {
			So(render(&out, "text", r), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "1:01 / 1:02:05")
			So(out.String(), ShouldContainSubstring, "|| paused")

			out.Reset()
			So(render(&out, "table", r), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "vlc://127.0.0.1:8080")
			So(out.String(), ShouldContainSubstring, "1:01 / 1:02:05")
		})

		Convey("unknown formats are rejected", func() {
			So(render(&out, "xml", r), ShouldNotBeNil)
		})
	})

	Convey("stateLabel", t, func() {
		viper.Set(key.IconsVariant, "plain")

		So(stateLabel(player.State{Playing: true}), ShouldEqual, "> playing")
		So(stateLabel(player.State{}), ShouldEqual, "[] stopped")
	})
}

func TestParseValue(t *testing.T) {
	Convey("parseValue", t, func() {
		Convey("Follows the type of the default", func() {
			v, err := parseValue(1.0, []string{"2.5"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 2.5)

			v, err = parseValue(8080, []string{"9090"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 9090)

			v, err = parseValue(true, []string{"false"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)

			v, err = parseValue("", []string{"mpv"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "mpv")
		})

		Convey("Rejects malformed and negative durations", func() {
			_, err := parseValue(1.0, []string{"soon"})
			So(err, ShouldNotBeNil)

			_, err = parseValue(1.0, []string{"-1"})
			So(err, ShouldNotBeNil)

			_, err = parseValue(0, []string{"many"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBackend(t *testing.T) {
	Convey("openBackend", t, func() {
		Convey("Picks the transport named by player.backend", func() {
			viper.Set(key.PlayerBackend, "mpv")
			viper.Set(key.MPVSocket, "/tmp/test.sock")

			b, _, err := openBackend()
			So(err, ShouldBeNil)
			So(b.Target(), ShouldEqual, "mpv:///tmp/test.sock")

			viper.Set(key.PlayerBackend, "VLC")
			viper.Set(key.VLCHost, "10.0.0.2")
			viper.Set(key.VLCPort, 8080)
			viper.Set(key.VLCPassword, "secret")

			b, _, err = openBackend()
			So(err, ShouldBeNil)
			So(b.Target(), ShouldEqual, "vlc://10.0.0.2:8080")
		})

		Convey("Rejects unknown backends", func() {
			viper.Set(key.PlayerBackend, "winamp")

			_, _, err := openBackend()
			So(err, ShouldNotBeNil)
		})
	})

	Convey("checkProperty", t, func() {
		So(checkProperty("paused"), ShouldBeNil)
		So(checkProperty("fulscreen").Error(), ShouldContainSubstring, "did you mean fullscreen")
		So(checkProperty("pasued").Error(), ShouldContainSubstring, "did you mean paused")
		So(checkProperty("xyz").Error(), ShouldContainSubstring, "available")
	})

	Convey("errUnknownKey suggests the closest key", t, func() {
		viper.Set(key.CliColored, false)
		So(errUnknownKey("vlc.prot").Error(), ShouldContainSubstring, key.VLCPort)
	})
}

func TestReadPassword(t *testing.T) {
	Convey("Given stdin that is not a terminal", t, func() {
		r, w, err := os.Pipe()
		So(err, ShouldBeNil)
		defer r.Close()
		defer w.Close()

		Convey("The password is not prompted for", func() {
			password, err := readPassword(r)
			So(errors.Is(err, errNoTerminal), ShouldBeTrue)
			So(password, ShouldBeEmpty)
		})
	})
}

func TestWatchHeader(t *testing.T) {
	Convey("The watch header names the target", t, func() {
		viper.Set(key.CliColored, false)
		viper.Set(key.IconsVariant, "plain")

		header := watchHeader("mpv:///tmp/mpv.sock")
		So(header, ShouldStartWith, " watch ")
		So(header, ShouldContainSubstring, "watching mpv:///tmp/mpv.sock")
	})
}

func TestSuccess(t *testing.T) {
	Convey("success prints its argument verbatim through a constant format", t, func() {
		viper.Set(key.IconsVariant, "plain")

		stdout := os.Stdout
		r, w, err := os.Pipe()
		So(err, ShouldBeNil)
		os.Stdout = w
		success("%s", "seeked 100%")
		os.Stdout = stdout
		So(w.Close(), ShouldBeNil)

		var out bytes.Buffer
		_, err = out.ReadFrom(r)
		So(err, ShouldBeNil)
		So(out.String(), ShouldContainSubstring, "seeked 100%\n")
		So(out.String(), ShouldNotContainSubstring, "%!")
	})
}
