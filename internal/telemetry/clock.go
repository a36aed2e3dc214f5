package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errClockRange = errors.New("clock field out of range")

// CsUnknown marks a mission time whose centisecond field was absent from the
// transmitted record.
const CsUnknown = 0xFF

// MissionTime is the payload-local clock carried in telemetry records:
// hh:mm:ss with an optional centisecond suffix.
type MissionTime struct {
	H, M, S uint8
	Cs      uint8
}

// ParseMissionTime reads hh:mm:ss or hh:mm:ss.cc.
func ParseMissionTime(s string) (MissionTime, error) {
	hh, rest, ok := strings.Cut(s, ":")
	if !ok {
		return MissionTime{}, fmt.Errorf("mission time %q: missing separator", s)
	}
	mm, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return MissionTime{}, fmt.Errorf("mission time %q: missing separator", s)
	}
	ss, cc, hasCs := strings.Cut(rest, ".")

	t := MissionTime{Cs: CsUnknown}
	for _, part := range []struct {
		s   string
		dst *uint8
	}{{hh, &t.H}, {mm, &t.M}, {ss, &t.S}} {
		v, err := strconv.ParseUint(part.s, 10, 8)
		if err != nil {
			return MissionTime{}, fmt.Errorf("mission time %q: %w", s, err)
		}
		*part.dst = uint8(v)
	}
	if hasCs {
		v, err := strconv.ParseUint(cc, 10, 8)
		if err != nil {
			return MissionTime{}, fmt.Errorf("mission time %q: %w", s, err)
		}
		t.Cs = uint8(v)
	}
	if !t.valid() {
		return MissionTime{}, fmt.Errorf("mission time %q: %w", s, errClockRange)
	}
	return t, nil
}

func (t MissionTime) valid() bool {
	return t.H < 24 && t.M < 60 && t.S < 60 && (t.Cs < 100 || t.Cs == CsUnknown)
}

func (t MissionTime) String() string {
	if t.Cs < 100 {
		return fmt.Sprintf("%02d:%02d:%02d.%02d", t.H, t.M, t.S, t.Cs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.H, t.M, t.S)
}

// Seconds converts the clock to total seconds since midnight, for time-series
// ordering. An unknown centisecond field contributes zero.
func (t MissionTime) Seconds() float64 {
	sec := float64(t.H)*3600 + float64(t.M)*60 + float64(t.S)
	if t.Cs < 100 {
		sec += float64(t.Cs) / 100
	}
	return sec
}

// MissionTimeFromSeconds builds a clock value back out of a seconds-since-
// midnight figure.
func MissionTimeFromSeconds(sec float64) MissionTime {
	return MissionTime{
		H:  uint8(int(sec/3600) % 24),
		M:  uint8(int(sec/60) % 60),
		S:  uint8(int(sec) % 60),
		Cs: uint8(int(sec*100) % 100),
	}
}

// GpsTime is the satellite-derived clock: hh:mm:ss, never with centiseconds.
type GpsTime struct {
	H, M, S uint8
}

// ParseGpsTime reads hh:mm:ss and rejects a sub-second suffix.
func ParseGpsTime(s string) (GpsTime, error) {
	t, err := ParseMissionTime(s)
	if err != nil {
		return GpsTime{}, err
	}
	if t.Cs != CsUnknown {
		return GpsTime{}, fmt.Errorf("gps time %q: unexpected sub-second field", s)
	}
	return GpsTime{H: t.H, M: t.M, S: t.S}, nil
}

func (t GpsTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.H, t.M, t.S)
}

// Seconds converts the clock to total seconds since midnight.
func (t GpsTime) Seconds() float64 {
	return float64(t.H)*3600 + float64(t.M)*60 + float64(t.S)
}
