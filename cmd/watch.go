package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/icon"
	"github.com/vlcremote/vlcremote/player"
	"github.com/vlcremote/vlcremote/remote"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/util"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolP("timeline", "t", true, "Draw a progress bar while playing")
	watchCmd.Flags().Bool("states", false, "Also print reconciliation loop states")
	watchCmd.Flags().BoolP("clear", "c", false, "Clear the screen before watching")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the player and print every change until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := &watcher{
			timeline: lo.Must(cmd.Flags().GetBool("timeline")),
		}

		hooks := player.Hooks{
			PropertyChanged:     w.propertyChanged,
			ConnectivityChanged: w.connectivityChanged,
			CommandFailed:       w.commandFailed,
		}
		if lo.Must(cmd.Flags().GetBool("states")) {
			hooks.LoopStateChanged = w.loopStateChanged
		}

		s, err := connect(hooks)
		handleErr(err)
		w.session = s

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if lo.Must(cmd.Flags().GetBool("clear")) {
			util.ClearScreen()
		}
		fmt.Println(watchHeader(s.target))
		handleErr(s.Start(ctx))

		<-ctx.Done()
		w.erase()
		handleErr(s.Close())
	},
}

func watchHeader(target string) string {
	return fmt.Sprintf("%s %s watching %s, press ctrl+c to stop",
		style.Title("watch"),
		icon.Get(icon.Progress),
		style.Fg(color.Purple)(target),
	)
}

// watcher prints player events. Hooks arrive from several goroutines.
type watcher struct {
	mu       sync.Mutex
	session  *session
	timeline bool
	eraser   func()
}

var (
	tagLocal  = style.Tag(color.New("0"), color.Cyan)
	tagRemote = style.Tag(color.New("0"), color.Purple)
	tagLink   = style.Tag(color.New("0"), color.Green)
	tagFail   = style.Tag(color.New("0"), color.Red)
	tagLoop   = style.Tag(color.New("0"), color.Gray)
)

func (w *watcher) propertyChanged(c remote.Change) {
	if c.Property == player.CurrentTime {
		w.drawTimeline()
		return
	}

	tag := lo.Ternary(c.Origin == remote.OriginRemote, tagRemote, tagLocal)
	w.println(fmt.Sprintf("%s %s %v %s %v",
		tag(c.Origin.String()),
		style.Fg(color.Purple)(c.Property),
		style.Faint(fmt.Sprint(c.Old)),
		style.Faint("->"),
		style.Fg(color.Yellow)(fmt.Sprint(c.New)),
	))
	w.drawTimeline()
}

func (w *watcher) connectivityChanged(connected bool) {
	if connected {
		w.println(fmt.Sprintf("%s %s connected", tagLink("link"), icon.Get(icon.Connected)))
		return
	}
	w.println(fmt.Sprintf("%s %s connection lost, retrying in %s",
		tagFail("link"),
		icon.Get(icon.Disconnected),
		w.session.NextPoll(),
	))
}

func (w *watcher) commandFailed(command string, err error) {
	w.println(fmt.Sprintf("%s %s %s", tagFail("fail"), style.Fg(color.Purple)(command), err))
}

func (w *watcher) loopStateChanged(s player.LoopState) {
	w.println(fmt.Sprintf("%s %s", tagLoop("loop"), s))
}

func (w *watcher) println(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.eraseLocked()
	fmt.Println(line)
}

func (w *watcher) drawTimeline() {
	if !w.timeline || w.session == nil {
		return
	}

	st := w.session.State()
	if st.Duration <= 0 {
		return
	}

	width, _, err := util.TerminalSize()
	if err != nil {
		width = 80
	}

	left := util.FormatSeconds(st.CurrentTime)
	right := util.FormatSeconds(st.Duration)
	symbol := icon.Get(lo.Ternary(st.Paused, icon.Paused, icon.Playing))
	bar := util.Timeline(st.CurrentTime, st.Duration, width-len(left)-len(right)-len([]rune(symbol))-4)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.eraseLocked()
	w.eraser = util.PrintErasable(fmt.Sprintf("%s %s %s %s", symbol, left, bar, right))
}

func (w *watcher) erase() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.eraseLocked()
}

func (w *watcher) eraseLocked() {
	if w.eraser != nil {
		w.eraser()
		w.eraser = nil
	}
}
