package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayNightColors(t *testing.T) {
	dn := NewDayNight()
	assert.Equal(t, dayKeys[0].colors, dn.Colors())

	dn.Time = 0.11
	assert.InDelta(t, 0.17, dn.Colors().Zenith.R, tol)

	dn.Time = 0.89
	assert.InDelta(t, 0.16, dn.Colors().Zenith.R, tol, "last key blends back to noon")
}

func TestDayNightUpdate(t *testing.T) {
	dn := NewDayNight()
	dn.Update(60)
	assert.InDelta(t, 0.5, dn.Time, tol)
	dn.Update(90)
	assert.InDelta(t, 0.25, dn.Time, tol)

	dn.Active = false
	dn.Update(30)
	assert.InDelta(t, 0.25, dn.Time, tol)
}

func TestDayNightTimeOfDay(t *testing.T) {
	for time, want := range map[float32]string{
		0:    "12:00 PM",
		0.25: "06:00 PM",
		0.5:  "12:00 AM",
		0.75: "06:00 AM",
	} {
		assert.Equal(t, want, (&DayNight{Time: time}).TimeOfDay())
	}
}

func TestDayNightAttach(t *testing.T) {
	r, b := newTestRenderer(t)
	sky, err := NewSkyGradient(r, DefaultSkyColors())
	require.NoError(t, err)

	dn := &DayNight{Time: 0.5, Period: 120}
	dn.Attach(sky)

	s := NewScene()
	s.AddCamera(newTestCamera())
	s.AddNode(sky)
	s.Update(1)
	require.NoError(t, s.Frame(r))
	require.Len(t, b.Draws, 1)

	loc, ok := b.UniformLocation(b.Draws[0].Program, "zenith")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{0.02, 0.03, 0.10}, b.Draws[0].Uniforms[loc], tol)
}
