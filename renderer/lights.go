package renderer

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"jelly/gpu"
	"jelly/math"
	"jelly/scene"
)

// Sizes of the light arrays in the geometry shader.
const (
	MaxPointLights = 4
	MaxSpotLights  = 4
)

// ErrTooManyLights is returned by Render when a frame carries more point or
// spot lights than the shader has slots for. The extra lights are ignored.
var ErrTooManyLights = errors.New("too many lights")

// lightSlots assigns shader slots for one frame. Counters start at zero
// every frame; prevPoint and prevSpot remember how many slots the last
// frame filled so the leftovers can be switched off.
type lightSlots struct {
	sh *gpu.Shader

	point, spot         int
	prevPoint, prevSpot int
	directional         *scene.Light
	dropped             int
}

func (s *lightSlots) reset() {
	s.prevPoint, s.prevSpot = s.point, s.spot
	s.point, s.spot = 0, 0
	s.directional = nil
	s.dropped = 0
}

func pointUniform(i int, field string) string {
	return fmt.Sprintf("u_PointLights[%d].%s", i, field)
}

func spotUniform(i int, field string) string {
	return fmt.Sprintf("u_SpotLights[%d].%s", i, field)
}

// add writes l into the next free slot of its type. A directional light
// only replaces the previous one; the last one seen wins.
func (s *lightSlots) add(l *scene.Light) {
	switch l.Type() {
	case scene.LightDirectional:
		s.directional = l

	case scene.LightPoint:
		if s.point >= MaxPointLights {
			s.dropped++
			return
		}
		i := s.point
		s.point++
		c, lin, q := l.Attenuation()
		s.sh.SetVec3(pointUniform(i, "position"), l.WorldPosition())
		s.sh.SetVec3(pointUniform(i, "color"), l.Color())
		s.sh.SetFloat(pointUniform(i, "constant"), c)
		s.sh.SetFloat(pointUniform(i, "linear"), lin)
		s.sh.SetFloat(pointUniform(i, "quadratic"), q)

	case scene.LightSpot:
		if s.spot >= MaxSpotLights {
			s.dropped++
			return
		}
		i := s.spot
		s.spot++
		c, lin, q := l.Attenuation()
		inner, outer := l.Cutoff()
		s.sh.SetVec3(spotUniform(i, "position"), l.WorldPosition())
		s.sh.SetVec3(spotUniform(i, "direction"), l.WorldDirection())
		s.sh.SetVec3(spotUniform(i, "color"), l.Color())
		s.sh.SetFloat(spotUniform(i, "constant"), c)
		s.sh.SetFloat(spotUniform(i, "linear"), lin)
		s.sh.SetFloat(spotUniform(i, "quadratic"), q)
		s.sh.SetFloat(spotUniform(i, "innerCutoff"), math32.Cos(inner))
		s.sh.SetFloat(spotUniform(i, "outerCutoff"), math32.Cos(outer))
	}
}

// finish writes the directional light and zeroes slots filled last frame
// but not this one. Without a directional light a black one is written.
func (s *lightSlots) finish() error {
	if d := s.directional; d != nil {
		s.sh.SetVec3(uniformDirLightDirection, d.WorldDirection())
		s.sh.SetVec3(uniformDirLightColor, d.Color())
	} else {
		s.sh.SetVec3(uniformDirLightColor, math.Vec3Zero)
	}

	for i := s.point; i < s.prevPoint; i++ {
		s.sh.SetVec3(pointUniform(i, "color"), math.Vec3Zero)
	}
	for i := s.spot; i < s.prevSpot; i++ {
		s.sh.SetVec3(spotUniform(i, "color"), math.Vec3Zero)
	}

	if s.dropped > 0 {
		return fmt.Errorf("%w: %d ignored (limits %d point, %d spot)",
			ErrTooManyLights, s.dropped, MaxPointLights, MaxSpotLights)
	}
	return nil
}
