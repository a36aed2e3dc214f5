package link

import (
	"strconv"
	"strings"

	"github.com/cansat-link/groundstation/internal/telemetry"
)

// Salvager recovers telemetry text from bytes that failed framing. Link noise
// frequently mangles only the framing bytes and leaves the embedded text
// payload intact, so the scanner looks for printable runs containing the
// team's record prefix.
type Salvager struct {
	marker string
}

// NewSalvager creates a salvager keyed to one team id.
func NewSalvager(teamID uint16) *Salvager {
	return &Salvager{marker: strconv.FormatUint(uint64(teamID), 10) + ","}
}

// Scan extracts every telemetry record hiding in b, in the order found. It
// never fails; a run that does not parse simply yields nothing.
func (s *Salvager) Scan(b []byte) []telemetry.Record {
	var recs []telemetry.Record
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := string(b[start:end])
		start = -1
		idx := strings.Index(run, s.marker)
		if idx < 0 {
			return
		}
		if rec, err := telemetry.ParseRecord(run[idx:]); err == nil {
			recs = append(recs, rec)
		}
	}
	for i, c := range b {
		if c >= 0x20 && c <= 0x7E {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(b))
	return recs
}
