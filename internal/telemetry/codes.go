package telemetry

// Single-letter state codes carried in container records. Each type keeps its
// wire letter as the underlying value so formatting is a table lookup.

// Mode distinguishes flight telemetry from simulation playback.
type Mode byte

const (
	ModeFlight     Mode = 'F'
	ModeSimulation Mode = 'S'
)

var modeText = map[Mode]string{
	ModeFlight:     "F",
	ModeSimulation: "S",
}

func (m Mode) String() string { return modeText[m] }

// HeatShield reports whether the probe heat shield has deployed.
type HeatShield byte

const (
	HeatShieldDeployed    HeatShield = 'P'
	HeatShieldNotDeployed HeatShield = 'N'
)

var heatShieldText = map[HeatShield]string{
	HeatShieldDeployed:    "P",
	HeatShieldNotDeployed: "N",
}

func (h HeatShield) String() string { return heatShieldText[h] }

// Parachute reports whether the parachute has deployed.
type Parachute byte

const (
	ParachuteDeployed    Parachute = 'C'
	ParachuteNotDeployed Parachute = 'N'
)

var parachuteText = map[Parachute]string{
	ParachuteDeployed:    "C",
	ParachuteNotDeployed: "N",
}

func (p Parachute) String() string { return parachuteText[p] }

// Mast reports whether the flag mast has been raised.
type Mast byte

const (
	MastRaised    Mast = 'M'
	MastNotRaised Mast = 'N'
)

var mastText = map[Mast]string{
	MastRaised:    "M",
	MastNotRaised: "N",
}

func (m Mast) String() string { return mastText[m] }

// TpReleased reports whether the tethered payload has been let go.
type TpReleased byte

const (
	TpHeld        TpReleased = 'N'
	TpWasReleased TpReleased = 'R'
)

var tpReleasedText = map[TpReleased]string{
	TpHeld:        "N",
	TpWasReleased: "R",
}

func (r TpReleased) String() string { return tpReleasedText[r] }

// lookupCode reverses a code table: the wire letter back to its typed value.
func lookupCode[T ~byte](table map[T]string, s string) (T, bool) {
	for code, text := range table {
		if text == s {
			return code, true
		}
	}
	var zero T
	return zero, false
}
