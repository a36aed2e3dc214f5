// Command generator plays the modem side of the link for bench testing: it
// listens for the ground station, streams synthetic telemetry frames with
// optional injected noise, and acknowledges transmit requests with a success
// status.
package main

import (
	"flag"
	"math"
	"math/rand"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/cansat-link/groundstation/internal/link"
	"github.com/cansat-link/groundstation/internal/protocol/xbee"
	"github.com/cansat-link/groundstation/internal/telemetry"
)

func main() {
	addr := flag.String("addr", ":7777", "listen address")
	team := flag.Uint("team", 1047, "team id for generated records")
	interval := flag.Duration("interval", time.Second, "telemetry interval")
	noise := flag.Float64("noise", 0.1, "probability of mangling a telemetry frame")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("listen error", zap.Error(err))
	}
	logger.Info("generator listening", zap.String("addr", *addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Fatal("accept error", zap.Error(err))
		}
		logger.Info("station connected", zap.String("remote", conn.RemoteAddr().String()))
		serve(conn, logger, uint16(*team), *interval, *noise)
		logger.Info("station disconnected")
	}
}

// serve streams telemetry and acks commands until the connection drops.
func serve(conn net.Conn, logger *zap.Logger, team uint16, interval time.Duration, noise float64) {
	defer conn.Close()
	done := make(chan struct{})

	// command side: decode transmit requests and answer each with success
	go func() {
		defer close(done)
		resync := link.NewResynchronizer(0)
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				for _, ev := range resync.Feed(buf[:n]) {
					if ev.Kind != link.KindReceived || ev.Frame.Type != xbee.TypeTxRequest {
						continue
					}
					if len(ev.Frame.Payload) < 4 {
						continue
					}
					id := ev.Frame.Payload[0]
					logger.Info("command received",
						zap.Uint8("frame_id", id), zap.ByteString("text", ev.Frame.Payload[4:]))
					status := xbee.Frame{Type: xbee.TypeTxStatus, Payload: []byte{id, 0x00}}
					if _, err := conn.Write(status.Encode()); err != nil {
						return
					}
				}
			}
			if err != nil {
				return
			}
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	flight := newFlight(team)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		wire := telemetryWire(flight.next(rng))
		if rng.Float64() < noise {
			wire = mangle(rng, wire)
		}
		if _, err := conn.Write(wire); err != nil {
			return
		}
	}
}

func telemetryWire(rec telemetry.Record) []byte {
	payload := append([]byte{0x00, 0x01, 0x28, 0x00}, []byte(rec.Format())...)
	return xbee.Frame{Type: xbee.TypeRxPacket, Payload: payload}.Encode()
}

// mangle corrupts a frame the way the radio does: flip a byte, or strip the
// framing and leave the text adrift in garbage.
func mangle(rng *rand.Rand, wire []byte) []byte {
	if rng.Intn(2) == 0 {
		out := append([]byte{}, wire...)
		out[rng.Intn(len(out))] ^= 1 << rng.Intn(8)
		return out
	}
	out := []byte{0x02, byte(rng.Intn(0x20))}
	out = append(out, wire[3:len(wire)-1]...)
	out = append(out, 0x03)
	return out
}

// flight synthesises a plausible container telemetry sequence.
type flight struct {
	team    uint16
	packets uint32
	start   time.Time
}

func newFlight(team uint16) *flight {
	return &flight{team: team, start: time.Now()}
}

func (f *flight) next(rng *rand.Rand) telemetry.Record {
	f.packets++
	elapsed := time.Since(f.start).Seconds()
	now := time.Now().UTC()
	daySec := float64(now.Hour()*3600+now.Minute()*60+now.Second()) + float64(now.Nanosecond())/1e9

	// simple ascent-then-descent altitude profile
	alt := 700*math.Sin(math.Min(elapsed/120, 1)*math.Pi) + rng.Float64()*3

	state := "ASCENT"
	if elapsed > 60 {
		state = "DESCENT"
	}
	hs, pc := telemetry.HeatShieldNotDeployed, telemetry.ParachuteNotDeployed
	if elapsed > 60 {
		hs = telemetry.HeatShieldDeployed
	}
	if elapsed > 90 {
		pc = telemetry.ParachuteDeployed
	}

	return &telemetry.Container{
		TeamID:       f.team,
		MissionTime:  telemetry.MissionTimeFromSeconds(daySec),
		PacketCount:  f.packets,
		Mode:         telemetry.ModeFlight,
		State:        state,
		Altitude:     alt,
		HsDeployed:   hs,
		PcDeployed:   pc,
		MastRaised:   telemetry.MastNotRaised,
		Temperature:  21 + rng.Float64()*3,
		Voltage:      5.2 - elapsed/3600,
		GpsTime:      telemetry.GpsTime{H: uint8(now.Hour()), M: uint8(now.Minute()), S: uint8(now.Second())},
		GpsAltitude:  600 + alt,
		GpsLatitude:  37.2249 + rng.Float64()*0.0004,
		GpsLongitude: -80.4249 - rng.Float64()*0.0004,
		GpsSats:      uint8(8 + rng.Intn(6)),
		TiltX:        rng.Float64()*10 - 5,
		TiltY:        rng.Float64()*10 - 5,
		CmdEcho:      "CXON",
	}
}
