package scene

import (
	"fmt"

	"solo-engine/core"
)

type dayKey struct {
	t      float32
	colors SkyColors
}

// dayKeys are ordered by time of day and wrap from the last to the first.
var dayKeys = []dayKey{
	{0.00, SkyColors{ // noon
		Zenith:  core.Color{R: 0.20, G: 0.42, B: 0.90, A: 1},
		Horizon: core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1},
		Ground:  core.Color{R: 0.12, G: 0.10, B: 0.08, A: 1},
	}},
	{0.22, SkyColors{ // golden hour
		Zenith:  core.Color{R: 0.14, G: 0.20, B: 0.60, A: 1},
		Horizon: core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1},
		Ground:  core.Color{R: 0.08, G: 0.07, B: 0.06, A: 1},
	}},
	{0.30, SkyColors{ // dusk
		Zenith:  core.Color{R: 0.08, G: 0.10, B: 0.28, A: 1},
		Horizon: core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1},
		Ground:  core.Color{R: 0.04, G: 0.03, B: 0.04, A: 1},
	}},
	{0.50, SkyColors{ // midnight
		Zenith:  core.Color{R: 0.02, G: 0.03, B: 0.10, A: 1},
		Horizon: core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1},
		Ground:  core.Color{R: 0.01, G: 0.01, B: 0.02, A: 1},
	}},
	{0.70, SkyColors{ // pre-dawn
		Zenith:  core.Color{R: 0.06, G: 0.08, B: 0.25, A: 1},
		Horizon: core.Color{R: 0.40, G: 0.18, B: 0.24, A: 1},
		Ground:  core.Color{R: 0.03, G: 0.03, B: 0.04, A: 1},
	}},
	{0.78, SkyColors{ // sunrise
		Zenith:  core.Color{R: 0.12, G: 0.18, B: 0.55, A: 1},
		Horizon: core.Color{R: 0.88, G: 0.45, B: 0.22, A: 1},
		Ground:  core.Color{R: 0.08, G: 0.06, B: 0.05, A: 1},
	}},
}

// DayNight animates the colors of a gradient sky over a day.
type DayNight struct {
	Time   float32 // 0 noon, 0.25 sunset, 0.5 midnight, 0.75 sunrise
	Period float32 // seconds per day
	Active bool
}

func NewDayNight() *DayNight {
	return &DayNight{Period: 120, Active: true}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active || dn.Period <= 0 {
		return
	}
	dn.Time += dt / dn.Period
	for dn.Time >= 1 {
		dn.Time--
	}
}

// Colors interpolates the sky colors at the current time.
func (dn *DayNight) Colors() SkyColors {
	t := dn.Time
	n := len(dayKeys)
	i := n - 1
	for j, k := range dayKeys {
		if k.t <= t {
			i = j
		}
	}
	a, b := dayKeys[i], dayKeys[(i+1)%n]
	end := b.t
	if i == n-1 {
		end = 1
	}
	local := (t - a.t) / (end - a.t)
	return SkyColors{
		Zenith:  lerpColor(a.colors.Zenith, b.colors.Zenith, local),
		Horizon: lerpColor(a.colors.Horizon, b.colors.Horizon, local),
		Ground:  lerpColor(a.colors.Ground, b.colors.Ground, local),
	}
}

// Attach advances the cycle on every update of sky, a node built by
// NewSkyGradient, and pushes the colors to its material.
func (dn *DayNight) Attach(sky *Node) {
	prev := sky.OnUpdate
	sky.OnUpdate = func(n *Node, dt float32) {
		if prev != nil {
			prev(n, dt)
		}
		dn.Update(dt)
		if n.Renderer == nil {
			return
		}
		_ = applySkyColors(n.Renderer.Material(0), dn.Colors())
	}
}

// TimeOfDay formats Time as a 12-hour clock reading, noon at zero.
func (dn *DayNight) TimeOfDay() string {
	hours := dn.Time*24 + 12
	h := int(hours) % 24
	m := int((hours - float32(int(hours))) * 60)
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%02d:%02d %s", display, m, period)
}
