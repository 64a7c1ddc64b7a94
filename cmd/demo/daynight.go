package main

import (
	"fmt"

	"github.com/chewxy/math32"

	"jelly/math"
	"jelly/renderer"
	"jelly/scene"
)

// dayPalette holds the light values for one key time of day.
type dayPalette struct {
	t         float32 // normalised time 0..1
	sun       math.Vec3
	intensity float32
	ambient   math.Vec3
}

// palettes is ordered by t and wraps (0 == 1).
var palettes = []dayPalette{
	{t: 0.00, sun: math.NewVec3(1.00, 0.98, 0.92), intensity: 1.20, ambient: math.NewVec3(0.16, 0.18, 0.26)}, // noon
	{t: 0.22, sun: math.NewVec3(1.00, 0.65, 0.25), intensity: 0.90, ambient: math.NewVec3(0.10, 0.12, 0.20)}, // golden hour
	{t: 0.30, sun: math.NewVec3(0.70, 0.40, 0.55), intensity: 0.25, ambient: math.NewVec3(0.06, 0.07, 0.14)}, // dusk
	{t: 0.50, sun: math.NewVec3(0.40, 0.45, 0.65), intensity: 0.12, ambient: math.NewVec3(0.03, 0.04, 0.09)}, // moonlight
	{t: 0.70, sun: math.NewVec3(0.75, 0.42, 0.60), intensity: 0.20, ambient: math.NewVec3(0.06, 0.07, 0.14)}, // pre-dawn
	{t: 0.78, sun: math.NewVec3(1.00, 0.60, 0.28), intensity: 0.70, ambient: math.NewVec3(0.09, 0.10, 0.17)}, // sunrise
}

// DayNight drives the directional light and ambient term through a day.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool
}

func NewDayNight() *DayNight {
	return &DayNight{Speed: 120, Active: true}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Speed
	if dn.Time >= 1 {
		dn.Time -= 1
	}
}

func lerp3(a, b math.Vec3, t float32) math.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// samplePalette interpolates between the two keys surrounding t.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	a, b := palettes[n-1], palettes[0]
	span := 1 - a.t + b.t
	local := t - a.t
	if local < 0 {
		local += 1
	}
	for i := 0; i < n-1; i++ {
		if t >= palettes[i].t && t < palettes[i+1].t {
			a, b = palettes[i], palettes[i+1]
			span = b.t - a.t
			local = t - a.t
			break
		}
	}
	f := local / span
	return dayPalette{
		t:         t,
		sun:       lerp3(a.sun, b.sun, f),
		intensity: a.intensity + (b.intensity-a.intensity)*f,
		ambient:   lerp3(a.ambient, b.ambient, f),
	}
}

// Apply points sun along the current sun direction and pushes the palette
// colours. sun may be nil.
func (dn *DayNight) Apply(r *renderer.Renderer, sun *scene.Light) {
	p := samplePalette(dn.Time)
	s, c := math32.Sincos(dn.Time * 2 * math32.Pi)
	if sun != nil {
		sun.SetLocalDirection(math.NewVec3(s, -c, 0.35).Normalize())
		sun.SetColor(p.sun.Mul(p.intensity))
	}
	r.SetAmbientLight(p.ambient)
}

// TimeOfDayStr returns a clock label for the current time.
func (dn *DayNight) TimeOfDayStr() string {
	// Time 0 is noon.
	hours := math32.Mod(dn.Time*24+12, 24)
	h := int(hours)
	m := int((hours - float32(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}
