package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/media"
	"github.com/sirupsen/logrus"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	notificationBuf   = 64
)

var ErrNotRunning = errors.New("mpv is not running")

// MPV implements Media on top of an idle mpv process controlled through JSON-IPC.
type MPV struct {
	binary     string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	listener   *EventListener
	mu         sync.Mutex // serializes IPC round trips

	notifications chan Notification
	stopOnce      sync.Once
	notifyOnce    sync.Once
	stop          chan struct{}
}

// NewMPV creates a player for the given mpv binary, "mpv" when empty. Nothing starts until Load.
func NewMPV(binary string) *MPV {
	if binary == "" {
		binary = "mpv"
	}

	return &MPV{
		binary:        binary,
		socketPath:    filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.sock", constant.Reel, uuid.NewString())),
		notifications: make(chan Notification, notificationBuf),
		stop:          make(chan struct{}),
	}
}

// args builds the command line of the idle mpv process.
// Only socket and window options are passed; the user's mpv.conf is respected otherwise.
func (m *MPV) args() []string {
	return []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--title=%s", constant.Reel),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=no",
	}
}

// Start launches mpv and connects the event listener. It is called by Load when needed.
func (m *MPV) Start(ctx context.Context) error {
	if m.running() {
		return nil
	}

	select {
	case <-m.stop:
		return ErrNotRunning
	default:
	}

	m.cmd = exec.CommandContext(ctx, m.binary, m.args()...)

	// Detach from the parent process group so terminal signals are not forwarded.
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// reap the process to prevent zombies
	exited := make(chan struct{})
	m.exited = exited
	go func(cmd *exec.Cmd) {
		_ = cmd.Wait()
		close(exited)
	}(m.cmd)

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.emit)
	if err := m.listener.Start(); err != nil {
		_ = killProcess(m.cmd)
		return err
	}

	go m.watch(m.listener, exited)

	log.WithFields(logrus.Fields{"socket": m.socketPath}).Info("mpv started")
	return nil
}

// watch closes the notification stream once mpv or its event connection goes away.
// The stream is closed only after the read loop, its single sender, has returned.
func (m *MPV) watch(listener *EventListener, exited <-chan struct{}) {
	select {
	case <-exited:
	case <-listener.Done():
	case <-m.stop:
	}

	m.signalStop()
	listener.Stop()
	<-listener.Done()
	m.closeNotifications()
}

func (m *MPV) emit(n Notification) {
	select {
	case m.notifications <- n:
	case <-m.stop:
	}
}

func (m *MPV) signalStop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

func (m *MPV) closeNotifications() {
	m.notifyOnce.Do(func() {
		close(m.notifications)
	})
}

// Exited is closed when the mpv process exits. It is nil before Start.
func (m *MPV) Exited() <-chan struct{} {
	return m.exited
}

func (m *MPV) running() bool {
	if m.exited == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) Notifications() <-chan Notification {
	return m.notifications
}

// Load replaces the current file. mpv is started on first use.
// The entry is the playlist_entry_id of the loadfile reply, zero on mpv versions that do not send it.
func (m *MPV) Load(ctx context.Context, ref media.Ref) (Entry, error) {
	target, err := sanitizeMediaTarget(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid media target: %w", err)
	}

	if err := m.Start(ctx); err != nil {
		return 0, err
	}

	reply, err := m.sendCommand("loadfile", target, "replace")
	if err != nil {
		return 0, err
	}
	entry := entryOf(reply)

	_, err = m.sendCommand("set_property", "force-media-title", sanitizeTitle(ref.Name()))
	return entry, err
}

func (m *MPV) Play() error {
	return m.Set("pause", false)
}

func (m *MPV) Pause() error {
	return m.Set("pause", true)
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	if !m.running() {
		return ErrNotRunning
	}
	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

// SetVolume maps [0, 1] onto mpv's 0-100 volume scale.
func (m *MPV) SetVolume(level float64) error {
	return m.Set("volume", max(0, min(1, level))*100)
}

func (m *MPV) SetMuted(muted bool) error {
	return m.Set("mute", muted)
}

func (m *MPV) SetPlaybackRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("playback rate must be positive, got %v", rate)
	}
	return m.Set("speed", rate)
}

// ShowText draws text over the video for d. An empty text clears the overlay.
func (m *MPV) ShowText(text string, d time.Duration) error {
	if !m.running() {
		return ErrNotRunning
	}
	_, err := m.sendCommand("show-text", text, d.Milliseconds())
	return err
}

// Screenshot saves the current video frame, without the OSD, to path.
func (m *MPV) Screenshot(path string) error {
	if !m.running() {
		return ErrNotRunning
	}
	_, err := m.sendCommand("screenshot-to-file", path, "video")
	return err
}

// Set a property.
func (m *MPV) Set(property string, value any) error {
	if !m.running() {
		return ErrNotRunning
	}
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// TimePos returns the current playback position in seconds.
func (m *MPV) TimePos() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.signalStop()

	// without a listener there is no watcher to close the stream
	if m.listener == nil {
		m.closeNotifications()
	}

	if !m.running() {
		return nil
	}

	// try a graceful quit first
	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}
	return val, nil
}

// sanitizeMediaTarget turns a reference into something safe to hand to loadfile.
// file:// references become local paths; only http(s) is accepted among the other schemes.
func sanitizeMediaTarget(ref media.Ref) (string, error) {
	l := strings.TrimSpace(ref.String())
	if l == "" {
		return "", fmt.Errorf("empty reference")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in reference")
	}

	if strings.HasPrefix(l, "file://") {
		return filepath.Clean(ref.Path()), nil
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("reference must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens a title onto one line.
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
