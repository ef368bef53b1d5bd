// Package watchdog reports service state to systemd.
//
// READY=1 is sent once the heartbeat listener is bound, WATCHDOG=1 pings
// keep a WatchdogSec= unit alive, and STOPPING=1 marks shutdown. Outside
// systemd (no NOTIFY_SOCKET) every call is a no-op.
package watchdog

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// notifyFunc matches daemon.SdNotify.
type notifyFunc func(unsetEnvironment bool, state string) (bool, error)

type Notifier struct {
	notify   notifyFunc
	interval time.Duration
	running  atomic.Bool
}

// New returns a Notifier. The ping interval is half of WATCHDOG_USEC, or
// zero when the unit has no watchdog.
func New() *Notifier {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		slog.Warn("invalid systemd watchdog settings", "error", err)
		interval = 0
	}
	return &Notifier{notify: daemon.SdNotify, interval: interval / 2}
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(false, state)
	if err != nil {
		slog.Warn("systemd notify failed", "state", state, "error", err)
		return
	}
	if sent {
		slog.Debug("systemd notified", "state", state)
	}
}

// Ready signals that the service is accepting heartbeats.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Stopping signals the start of shutdown.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

// StartPinger sends watchdog pings until ctx is done or the returned stop
// function is called. A second call while running is a no-op.
func (n *Notifier) StartPinger(ctx context.Context) func() {
	if n.interval <= 0 {
		return func() {}
	}
	if !n.running.CompareAndSwap(false, true) {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n.send(daemon.SdNotifyWatchdog)
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
		n.running.Store(false)
	}
}
