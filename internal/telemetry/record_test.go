package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenContainer = "1047,15:12:02.99,123,F,YEETED,356.2,P,C,N,37.8,5.1,15:12:03,1623.3,37.2249,-80.4249,14,2.36,-5.49,CXON"

func TestParseContainer_Golden(t *testing.T) {
	rec, err := ParseRecord(goldenContainer)
	require.NoError(t, err)

	c, ok := rec.(*Container)
	require.True(t, ok)
	assert.Equal(t, &Container{
		TeamID:       1047,
		MissionTime:  MissionTime{H: 15, M: 12, S: 2, Cs: 99},
		PacketCount:  123,
		Mode:         ModeFlight,
		State:        "YEETED",
		Altitude:     356.2,
		HsDeployed:   HeatShieldDeployed,
		PcDeployed:   ParachuteDeployed,
		MastRaised:   MastNotRaised,
		Temperature:  37.8,
		Voltage:      5.1,
		GpsTime:      GpsTime{H: 15, M: 12, S: 3},
		GpsAltitude:  1623.3,
		GpsLatitude:  37.2249,
		GpsLongitude: -80.4249,
		GpsSats:      14,
		TiltX:        2.36,
		TiltY:        -5.49,
		CmdEcho:      "CXON",
	}, c)
	assert.Equal(t, FamilyContainer, c.Family())
}

func TestContainer_FormatRoundTrip(t *testing.T) {
	lines := []string{
		goldenContainer,
		"1047,15:12:02,124,S,ASCENT,10.0,N,N,N,21.5,5.2,15:12:03,1260.1,37.2250,-80.4250,9,0.00,-0.10,CAL",
	}
	for _, line := range lines {
		rec, err := ParseRecord(line)
		require.NoError(t, err)
		assert.Equal(t, line, rec.Format())
	}
}

func TestParsePayload_RoundTrip(t *testing.T) {
	line := "1047,15:12:04.10,17,T,102.4,26.0,4.9,R,RELEASED"
	rec, err := ParseRecord(line)
	require.NoError(t, err)

	p, ok := rec.(*TetheredPayload)
	require.True(t, ok)
	assert.Equal(t, uint16(1047), p.TeamID)
	assert.Equal(t, MissionTime{H: 15, M: 12, S: 4, Cs: 10}, p.MissionTime)
	assert.Equal(t, uint32(17), p.PacketCount)
	assert.Equal(t, 102.4, p.Altitude)
	assert.Equal(t, TpWasReleased, p.Released)
	assert.Equal(t, "RELEASED", p.SoftwareState)
	assert.Equal(t, FamilyPayload, p.Family())
	assert.Equal(t, line, p.Format())
}

func TestParseRecord_Errors(t *testing.T) {
	var countErr *FieldCountError
	_, err := ParseRecord("1047,15:12:02.99,123,F,YEETED")
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, FamilyContainer, countErr.Fam)
	assert.Equal(t, 5, countErr.Got)

	_, err = ParseRecord("1047,15:12:04.10,17,T,102.4")
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, FamilyPayload, countErr.Fam)

	var codeErr *CodeError
	_, err = ParseRecord("1047,15:12:02.99,123,X,YEETED,356.2,P,C,N,37.8,5.1,15:12:03,1623.3,37.2249,-80.4249,14,2.36,-5.49,CXON")
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 3, codeErr.Index)
	assert.Equal(t, "X", codeErr.Value)

	var fieldErr *FieldError
	_, err = ParseRecord("1047,15:12:02.99,123,F,YEETED,oops,P,C,N,37.8,5.1,15:12:03,1623.3,37.2249,-80.4249,14,2.36,-5.49,CXON")
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, 5, fieldErr.Index)

	_, err = ParseRecord("1047,25:12:02.99,123,F,YEETED,356.2,P,C,N,37.8,5.1,15:12:03,1623.3,37.2249,-80.4249,14,2.36,-5.49,CXON")
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, 1, fieldErr.Index)
}

func TestCodeTables_Exhaustive(t *testing.T) {
	for m, s := range modeText {
		got, ok := lookupCode(modeText, s)
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	for h, s := range heatShieldText {
		got, ok := lookupCode(heatShieldText, s)
		assert.True(t, ok)
		assert.Equal(t, h, got)
	}
	for p, s := range parachuteText {
		got, ok := lookupCode(parachuteText, s)
		assert.True(t, ok)
		assert.Equal(t, p, got)
	}
	for m, s := range mastText {
		got, ok := lookupCode(mastText, s)
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	for r, s := range tpReleasedText {
		got, ok := lookupCode(tpReleasedText, s)
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}
}
