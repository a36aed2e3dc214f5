package link

import (
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cansat-link/groundstation/internal/ledger"
	"github.com/cansat-link/groundstation/internal/metrics"
	"github.com/cansat-link/groundstation/internal/protocol/xbee"
)

func newTestDriver(t *testing.T) (*Driver, *ledger.Ledger) {
	t.Helper()
	m := metrics.NewLinkMetrics(prometheus.NewRegistry())
	led := ledger.New(zap.NewNop(), m, xbee.ContainerAddr, 0)
	d := NewDriver(zap.NewNop(), m, led, DriverConfig{SendPoll: 5 * time.Millisecond})
	t.Cleanup(d.Close)
	return d, led
}

func attachPipe(t *testing.T, d *Driver) net.Conn {
	t.Helper()
	local, remote := net.Pipe()
	d.Attach(NewConnTransport(local, 20*time.Millisecond, time.Second))
	t.Cleanup(func() { remote.Close() })
	return remote
}

func waitEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event channel closed while waiting for %s", kind)
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event within deadline", kind)
		}
	}
}

func readFrame(t *testing.T, conn net.Conn) xbee.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var acc []byte
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		require.NoError(t, err)
		acc = append(acc, buf[:n]...)
		f, _, err := xbee.Decode(acc)
		if err == nil {
			return f
		}
		require.ErrorIs(t, err, xbee.ErrTruncated)
	}
}

func TestDriver_TelemetryFlow(t *testing.T) {
	d, _ := newTestDriver(t)
	remote := attachPipe(t, d)
	ch := d.Events()

	_, err := remote.Write(telemetryFrame(goldenLine))
	require.NoError(t, err)

	ev := waitEvent(t, ch, KindTelemetry)
	assert.Equal(t, goldenLine, ev.Record.Format())
}

func TestDriver_CommandRoundTrip(t *testing.T) {
	d, led := newTestDriver(t)
	remote := attachPipe(t, d)
	ch := d.Events()

	d.Submit("CMD,1047,CX,ON")

	f := readFrame(t, remote)
	require.Equal(t, byte(xbee.TypeTxRequest), f.Type)
	id := f.Payload[0]
	assert.Equal(t, []byte("CMD,1047,CX,ON"), f.Payload[4:])

	_, err := remote.Write(statusFrame(id, 0x00))
	require.NoError(t, err)

	waitEvent(t, ch, KindStatus)
	require.Eventually(t, func() bool {
		cmds := led.Snapshot()
		return len(cmds) == 1 && cmds[0].State == ledger.StateAcked
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDriver_AttachSupersedes(t *testing.T) {
	d, _ := newTestDriver(t)

	oldRemote := attachPipe(t, d)
	gen1 := d.Generation()
	newRemote := attachPipe(t, d)
	require.Greater(t, d.Generation(), gen1)

	// The superseded transport is closed from the driver side.
	require.NoError(t, oldRemote.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err := oldRemote.Read(buf)
	assert.Error(t, err)

	ch := d.Events()
	_, err = newRemote.Write(statusFrame(1, 0x00))
	require.NoError(t, err)
	waitEvent(t, ch, KindStatus)
}

func TestDriver_FatalClosesEventsAndFlushes(t *testing.T) {
	d, _ := newTestDriver(t)
	remote := attachPipe(t, d)
	ch := d.Events()

	partial := telemetryFrame(goldenLine)[:15]
	_, err := remote.Write(partial)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	remote.Close()

	var flushed bool
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				assert.True(t, flushed, "buffered bytes must flush before close")
				return
			}
			if ev.Kind == KindInvalid {
				assert.Equal(t, partial, ev.Bytes)
				flushed = true
			}
		case <-deadline:
			t.Fatal("event channel did not close after transport loss")
		}
	}
}
