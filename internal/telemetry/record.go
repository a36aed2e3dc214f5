// Package telemetry implements the comma-separated telemetry text format
// transmitted by the container and the tethered payload: parsing, exact
// re-formatting, and the single-letter state code tables.
package telemetry

import (
	"fmt"
	"strconv"
	"strings"
)

// Family identifies which transmitter produced a record.
type Family string

const (
	FamilyContainer Family = "container"
	FamilyPayload   Family = "payload"
)

// Record is one parsed telemetry line of either family. Format must
// reproduce the transmitted text exactly.
type Record interface {
	Format() string
	Family() Family
	Time() MissionTime
}

const (
	containerFields = 19
	payloadFields   = 9

	// familyIndex is the position of the discriminator: the container's
	// mode letter, or the literal payload marker.
	familyIndex = 3
	payloadMark = "T"
)

// FieldCountError reports a line with the wrong number of comma-separated
// fields for its family.
type FieldCountError struct {
	Fam  Family
	Got  int
	Want int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("%s record: %d fields, want %d", e.Fam, e.Got, e.Want)
}

// FieldError reports a field that failed to parse, by position.
type FieldError struct {
	Index int
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %d: %v", e.Index, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// CodeError reports a letter-code field whose value is not in its table.
type CodeError struct {
	Index int
	Value string
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("field %d: unknown code %q", e.Index, e.Value)
}

// Container is the 19-field record transmitted by the container.
type Container struct {
	TeamID       uint16
	MissionTime  MissionTime
	PacketCount  uint32
	Mode         Mode
	State        string
	Altitude     float64
	HsDeployed   HeatShield
	PcDeployed   Parachute
	MastRaised   Mast
	Temperature  float64
	Voltage      float64
	GpsTime      GpsTime
	GpsAltitude  float64
	GpsLatitude  float64
	GpsLongitude float64
	GpsSats      uint8
	TiltX        float64
	TiltY        float64
	CmdEcho      string
}

func (c *Container) Family() Family    { return FamilyContainer }
func (c *Container) Time() MissionTime { return c.MissionTime }

// Format reproduces the transmitted line, including each field's precision.
func (c *Container) Format() string {
	return fmt.Sprintf("%d,%s,%d,%s,%s,%.1f,%s,%s,%s,%.1f,%.1f,%s,%.1f,%.4f,%.4f,%d,%.2f,%.2f,%s",
		c.TeamID, c.MissionTime, c.PacketCount, c.Mode, c.State, c.Altitude,
		c.HsDeployed, c.PcDeployed, c.MastRaised, c.Temperature, c.Voltage,
		c.GpsTime, c.GpsAltitude, c.GpsLatitude, c.GpsLongitude, c.GpsSats,
		c.TiltX, c.TiltY, c.CmdEcho)
}

// TetheredPayload is the 9-field record transmitted by the released payload.
type TetheredPayload struct {
	TeamID        uint16
	MissionTime   MissionTime
	PacketCount   uint32
	Altitude      float64
	Temperature   float64
	Voltage       float64
	Released      TpReleased
	SoftwareState string
}

func (p *TetheredPayload) Family() Family    { return FamilyPayload }
func (p *TetheredPayload) Time() MissionTime { return p.MissionTime }

// Format reproduces the transmitted line.
func (p *TetheredPayload) Format() string {
	return fmt.Sprintf("%d,%s,%d,%s,%.1f,%.1f,%.1f,%s,%s",
		p.TeamID, p.MissionTime, p.PacketCount, payloadMark,
		p.Altitude, p.Temperature, p.Voltage, p.Released, p.SoftwareState)
}

// ParseRecord parses one telemetry line, choosing the family by the
// discriminator field.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, ",")
	if len(fields) <= familyIndex {
		return nil, &FieldCountError{Fam: FamilyContainer, Got: len(fields), Want: containerFields}
	}
	if fields[familyIndex] == payloadMark {
		rec, err := parsePayload(fields)
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	rec, err := parseContainer(fields)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func parseContainer(fields []string) (*Container, error) {
	if len(fields) != containerFields {
		return nil, &FieldCountError{Fam: FamilyContainer, Got: len(fields), Want: containerFields}
	}
	p := &fieldParser{fields: fields}
	c := &Container{
		TeamID:       uint16(p.uint(0, 16)),
		MissionTime:  p.missionTime(1),
		PacketCount:  uint32(p.uint(2, 32)),
		Mode:         code(p, 3, modeText),
		State:        fields[4],
		Altitude:     p.float(5),
		HsDeployed:   code(p, 6, heatShieldText),
		PcDeployed:   code(p, 7, parachuteText),
		MastRaised:   code(p, 8, mastText),
		Temperature:  p.float(9),
		Voltage:      p.float(10),
		GpsTime:      p.gpsTime(11),
		GpsAltitude:  p.float(12),
		GpsLatitude:  p.float(13),
		GpsLongitude: p.float(14),
		GpsSats:      uint8(p.uint(15, 8)),
		TiltX:        p.float(16),
		TiltY:        p.float(17),
		CmdEcho:      fields[18],
	}
	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

func parsePayload(fields []string) (*TetheredPayload, error) {
	if len(fields) != payloadFields {
		return nil, &FieldCountError{Fam: FamilyPayload, Got: len(fields), Want: payloadFields}
	}
	p := &fieldParser{fields: fields}
	tp := &TetheredPayload{
		TeamID:        uint16(p.uint(0, 16)),
		MissionTime:   p.missionTime(1),
		PacketCount:   uint32(p.uint(2, 32)),
		Altitude:      p.float(4),
		Temperature:   p.float(5),
		Voltage:       p.float(6),
		Released:      code(p, 7, tpReleasedText),
		SoftwareState: fields[8],
	}
	if p.err != nil {
		return nil, p.err
	}
	return tp, nil
}

// fieldParser accumulates the first field-level error so record constructors
// can read positionally without per-field error plumbing.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) uint(i, bits int) uint64 {
	v, err := strconv.ParseUint(p.fields[i], 10, bits)
	if err != nil && p.err == nil {
		p.err = &FieldError{Index: i, Err: err}
	}
	return v
}

func (p *fieldParser) float(i int) float64 {
	v, err := strconv.ParseFloat(p.fields[i], 64)
	if err != nil && p.err == nil {
		p.err = &FieldError{Index: i, Err: err}
	}
	return v
}

func (p *fieldParser) missionTime(i int) MissionTime {
	v, err := ParseMissionTime(p.fields[i])
	if err != nil && p.err == nil {
		p.err = &FieldError{Index: i, Err: err}
	}
	return v
}

func (p *fieldParser) gpsTime(i int) GpsTime {
	v, err := ParseGpsTime(p.fields[i])
	if err != nil && p.err == nil {
		p.err = &FieldError{Index: i, Err: err}
	}
	return v
}

func code[T ~byte](p *fieldParser, i int, table map[T]string) T {
	v, ok := lookupCode(table, p.fields[i])
	if !ok && p.err == nil {
		p.err = &CodeError{Index: i, Value: p.fields[i]}
	}
	return v
}
