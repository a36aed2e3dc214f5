// Package command builds the text command strings sent to the container:
// every command is "CMD,<team>,<verb>[,args...]" and is echoed back in the
// container's CmdEcho telemetry field with the commas stripped.
package command

import (
	"fmt"
	"time"

	"github.com/cansat-link/groundstation/internal/telemetry"
)

// SimMode selects the simulation-control argument of the SIM command.
// Activation requires ENABLE first; the container enforces the order.
type SimMode string

const (
	SimDisable  SimMode = "DISABLE"
	SimEnable   SimMode = "ENABLE"
	SimActivate SimMode = "ACTIVATE"
)

// Action is a one-shot auxiliary verb.
type Action string

const (
	ActionEnable  Action = "ENABLE"
	ActionDisable Action = "DISABLE"
	ActionFlag    Action = "FLAG"
	ActionBeacon  Action = "BEACON"
)

// Target addresses a SETSTATE override at the container or the probe.
type Target string

const (
	TargetContainer Target = "C"
	TargetProbe     Target = "P"
)

// State is a flight-state override value.
type State string

const (
	StateAscent     State = "ASCENT"
	StateWaitDeploy State = "WAIT_DEPLOY"
	StateWaitPara   State = "WAIT_PARA"
	StateWaitGnd    State = "WAIT_GND"
	StateOnGround   State = "ON_GROUND"
)

// Mechanism names an actuator addressed by the OPTIONAL command family. The
// verb joins mechanism and action with a dot, not a comma.
type Mechanism string

const (
	MechSound Mechanism = "SOUND"
	MechCam   Mechanism = "CAM"
	MechFlap  Mechanism = "FLAP"
	MechHs    Mechanism = "HS"
	MechChute Mechanism = "CHUTE"
	MechProbe Mechanism = "PROBE"
	MechFlag  Mechanism = "FLAG"
)

// Builder produces command strings for one team id.
type Builder struct {
	TeamID uint16
}

func (b Builder) prefix() string {
	return fmt.Sprintf("CMD,%d", b.TeamID)
}

// TelemetryEnable builds CX: switch container telemetry on or off.
func (b Builder) TelemetryEnable(on bool) string {
	return fmt.Sprintf("%s,CX,%s", b.prefix(), onOff(on))
}

// SetTime builds ST with an explicit clock value.
func (b Builder) SetTime(t telemetry.GpsTime) string {
	return fmt.Sprintf("%s,ST,%s", b.prefix(), t)
}

// SetTimeUTC builds ST from a wall-clock instant.
func (b Builder) SetTimeUTC(t time.Time) string {
	u := t.UTC()
	return b.SetTime(telemetry.GpsTime{
		H: uint8(u.Hour()),
		M: uint8(u.Minute()),
		S: uint8(u.Second()),
	})
}

// SetTimeGPS builds ST,GPS: take the clock from the GPS receiver.
func (b Builder) SetTimeGPS() string {
	return fmt.Sprintf("%s,ST,GPS", b.prefix())
}

// SeaLevelPascals is standard sea-level pressure, the usual starting point
// for a SIMP sweep.
const SeaLevelPascals uint32 = 101325

// Simulation builds SIM with the given mode.
func (b Builder) Simulation(m SimMode) string {
	return fmt.Sprintf("%s,SIM,%s", b.prefix(), m)
}

// SimulatedPressure builds SIMP: one barometric sample, in pascals.
func (b Builder) SimulatedPressure(pascals uint32) string {
	return fmt.Sprintf("%s,SIMP,%d", b.prefix(), pascals)
}

// Calibrate builds CAL: zero the altitude reference at the launch pad.
func (b Builder) Calibrate() string {
	return fmt.Sprintf("%s,CAL", b.prefix())
}

// Reset builds OPTIONAL,RESET: reboot the container processor.
func (b Builder) Reset() string {
	return fmt.Sprintf("%s,OPTIONAL,RESET", b.prefix())
}

// TakeAction builds OPTIONAL,ACTION with a one-shot verb.
func (b Builder) TakeAction(a Action) string {
	return fmt.Sprintf("%s,OPTIONAL,ACTION,%s", b.prefix(), a)
}

// SetState builds OPTIONAL,SETSTATE: force a flight-state transition.
func (b Builder) SetState(t Target, s State) string {
	return fmt.Sprintf("%s,OPTIONAL,SETSTATE,%s,%s", b.prefix(), t, s)
}

// MechanismEnable builds OPTIONAL,<mech>.ON / .OFF.
func (b Builder) MechanismEnable(m Mechanism, on bool) string {
	return fmt.Sprintf("%s,OPTIONAL,%s.%s", b.prefix(), m, onOff(on))
}

// MechanismOpen builds OPTIONAL,<mech>.OPEN / .CLOSE.
func (b Builder) MechanismOpen(m Mechanism, open bool) string {
	state := "CLOSE"
	if open {
		state = "OPEN"
	}
	return fmt.Sprintf("%s,OPTIONAL,%s.%s", b.prefix(), m, state)
}

// ProbeRelease builds OPTIONAL,PROBE.RELEASE / .HOLD.
func (b Builder) ProbeRelease(release bool) string {
	state := "HOLD"
	if release {
		state = "RELEASE"
	}
	return fmt.Sprintf("%s,OPTIONAL,PROBE.%s", b.prefix(), state)
}

// FlagRaise builds OPTIONAL,FLAG.RAISE / .STOP.
func (b Builder) FlagRaise(raise bool) string {
	state := "STOP"
	if raise {
		state = "RAISE"
	}
	return fmt.Sprintf("%s,OPTIONAL,FLAG.%s", b.prefix(), state)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
