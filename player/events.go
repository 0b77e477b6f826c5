package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/reel-player/reel/log"
	"github.com/sirupsen/logrus"
)

// observed lists the properties mpv reports through property-change events.
var observed = []string{"time-pos", "duration", "pause", "eof-reached"}

// EventListener holds a persistent IPC connection and turns mpv events into notifications.
// mpv delivers property changes only to the client that asked for them, so observers are
// registered on the same connection the events are read from.
type EventListener struct {
	socketPath string
	emit       func(Notification)

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	done      chan struct{}
}

// NewEventListener creates a listener for socketPath. emit is called from the read loop.
func NewEventListener(socketPath string, emit func(Notification)) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		emit:       emit,
		done:       make(chan struct{}),
	}
}

// Start connects, registers the observers and starts the read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			_ = conn.Close()
			return err
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop(conn)

	log.WithFields(logrus.Fields{"socket": el.socketPath}).Infof("mpv event listener started, observing %v", observed)
	return nil
}

// Done is closed when the read loop exits, either through Stop or because mpv went away.
func (el *EventListener) Done() <-chan struct{} {
	return el.done
}

// Stop closes the connection, which ends the read loop.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.conn != nil {
		_ = el.conn.Close()
		el.conn = nil
	}
}

func (el *EventListener) readLoop(conn net.Conn) {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
		close(el.done)
	}()

	var t translator
	r := bufio.NewReader(conn)

	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Debugf("event listener stopped: %v", err)
			}
			return
		}

		var event map[string]any
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		if n, ok := t.translate(event); ok {
			el.emit(n)
		}
	}
}

// translator maps raw mpv events onto notifications for one playback session.
// Property changes carry no playlist entry, so they are attributed to the file started last.
type translator struct {
	ended bool
	entry Entry
}

// entryOf reads the playlist_entry_id mpv attaches to file events and loadfile replies.
func entryOf(data any) Entry {
	fields, ok := data.(map[string]any)
	if !ok {
		return 0
	}
	id, _ := fields["playlist_entry_id"].(float64)
	return Entry(id)
}

func (t *translator) translate(event map[string]any) (Notification, bool) {
	n, ok := t.translateKind(event)
	if ok && n.Entry == 0 {
		n.Entry = t.entry
	}
	return n, ok
}

func (t *translator) translateKind(event map[string]any) (Notification, bool) {
	name, _ := event["event"].(string)

	switch name {
	case "start-file":
		t.ended = false
		t.entry = entryOf(event)
		return Notification{Kind: LoadStart}, true

	case "file-loaded":
		return Notification{Kind: CanPlay}, true

	case "end-file":
		entry := entryOf(event)
		switch reason, _ := event["reason"].(string); reason {
		case "eof":
			n, ok := t.end()
			n.Entry = entry
			return n, ok
		case "error":
			msg, _ := event["file_error"].(string)
			if msg == "" {
				msg = "playback failed"
			}
			return Notification{Kind: Error, Entry: entry, Reason: msg}, true
		}

	case "property-change":
		data := event["data"]

		switch event["name"] {
		case "time-pos":
			if v, ok := data.(float64); ok {
				return Notification{Kind: TimeUpdate, Seconds: v}, true
			}
		case "duration":
			if v, ok := data.(float64); ok && v > 0 {
				return Notification{Kind: LoadedMetadata, Seconds: v}, true
			}
		case "pause":
			if v, ok := data.(bool); ok {
				return Notification{Kind: Paused, Paused: v}, true
			}
		case "eof-reached":
			if v, ok := data.(bool); ok && v {
				return t.end()
			}
		}
	}

	return Notification{}, false
}

// end reports Ended once per file; with keep-open both eof-reached and end-file fire.
func (t *translator) end() (Notification, bool) {
	if t.ended {
		return Notification{}, false
	}
	t.ended = true
	return Notification{Kind: Ended}, true
}
