package scene

import (
	"github.com/chewxy/math32"

	"jelly/math"
)

type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	}
	return "unknown"
}

// Light is positioned relative to the Renderable it is attached to. Its
// world position and direction are refreshed during world-transform
// propagation whenever the light or its node changed.
type Light struct {
	typ LightType

	localPosition  math.Vec3
	localDirection math.Vec3
	worldPosition  math.Vec3
	worldDirection math.Vec3
	dirty          bool

	color     math.Vec3
	constant  float32
	linear    float32
	quadratic float32

	innerCutoff float32
	outerCutoff float32
}

// NewLight returns a white light pointing down +Z with no attenuation.
// A new light is dirty so its world fields are computed on the next
// propagation.
func NewLight(t LightType) Light {
	return Light{
		typ:            t,
		localDirection: math.Vec3Front,
		worldDirection: math.Vec3Front,
		dirty:          true,
		color:          math.Vec3One,
		innerCutoff:    math32.Pi / 12,
		outerCutoff:    math32.Pi / 9,
	}
}

func (l *Light) Type() LightType { return l.typ }

// SetColor sets the RGB intensity. Values above 1 are allowed.
func (l *Light) SetColor(c math.Vec3) *Light {
	l.color = c
	return l
}

func (l *Light) Color() math.Vec3 { return l.color }

func (l *Light) SetLocalPosition(p math.Vec3) *Light {
	l.localPosition = p
	l.dirty = true
	return l
}

func (l *Light) LocalPosition() math.Vec3 { return l.localPosition }

func (l *Light) SetLocalDirection(d math.Vec3) *Light {
	l.localDirection = d
	l.dirty = true
	return l
}

func (l *Light) LocalDirection() math.Vec3 { return l.localDirection }

func (l *Light) WorldPosition() math.Vec3 { return l.worldPosition }

func (l *Light) WorldDirection() math.Vec3 { return l.worldDirection }

// SetAttenuation sets the constant, linear and quadratic falloff terms.
func (l *Light) SetAttenuation(constant, linear, quadratic float32) *Light {
	l.constant, l.linear, l.quadratic = constant, linear, quadratic
	return l
}

func (l *Light) Attenuation() (constant, linear, quadratic float32) {
	return l.constant, l.linear, l.quadratic
}

// SetCutoff sets the inner and outer cone half-angles of a spot light in
// radians. Intensity fades between the two.
func (l *Light) SetCutoff(inner, outer float32) *Light {
	l.innerCutoff, l.outerCutoff = inner, outer
	return l
}

func (l *Light) Cutoff() (inner, outer float32) {
	return l.innerCutoff, l.outerCutoff
}

func (l *Light) IsDirty() bool { return l.dirty }

func (l *Light) updateWorldTransform(m math.Mat4) {
	l.worldPosition = m.MulPoint(l.localPosition)
	l.worldDirection = m.MulDir(l.localDirection)
	l.dirty = false
}
