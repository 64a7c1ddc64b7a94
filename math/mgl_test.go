package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// toMGL reinterprets m as the column-major, column-vector matrix GL sees.
func toMGL(m Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[4*i+j] = m[i][j]
		}
	}
	return out
}

func TestMatchesMathGL(t *testing.T) {
	const eps = 1e-4
	eye := mgl32.Vec3{3, 4, 5}
	target := mgl32.Vec3{0, 1, 0}
	up := mgl32.Vec3{0, 1, 0}

	model := Mat4TRS(NewVec3(1, -2, 3), QuaternionFromAxisAngle(NewVec3(0, 1, 1), 1.1), NewVec3(2, 1, 0.5))

	cases := []struct {
		name string
		got  Mat4
		want mgl32.Mat4
	}{
		{"perspective", Mat4Perspective(1.2, 4.0/3.0, 0.1, 50), mgl32.Perspective(1.2, 4.0/3.0, 0.1, 50)},
		{"ortho", Mat4Orthographic(0, 800, 600, 0, -1, 1), mgl32.Ortho(0, 800, 600, 0, -1, 1)},
		{"lookat", Mat4LookAt(NewVec3(3, 4, 5), NewVec3(0, 1, 0), Vec3Up), mgl32.LookAtV(eye, target, up)},
		{"rotation x", Mat4RotationX(0.7), mgl32.HomogRotate3DX(0.7)},
		{"rotation y", Mat4RotationY(0.7), mgl32.HomogRotate3DY(0.7)},
		{"rotation z", Mat4RotationZ(0.7), mgl32.HomogRotate3DZ(0.7)},
		{"translation", Mat4Translation(NewVec3(1, 2, 3)), mgl32.Translate3D(1, 2, 3)},
		{"scale", Mat4Scale(NewVec3(1, 2, 3)), mgl32.Scale3D(1, 2, 3)},
		{"inverse", model.Inverse(), toMGL(model).Inv()},
		// a.Mul(b) applies a first, which GL writes as B·A.
		{"mul", Mat4RotationX(0.3).Mul(Mat4Translation(NewVec3(0, 0, -5))),
			mgl32.Translate3D(0, 0, -5).Mul4(mgl32.HomogRotate3DX(0.3))},
	}
	for _, tc := range cases {
		if got := toMGL(tc.got); !got.ApproxEqualThreshold(tc.want, eps) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNormalMatrixMatchesMathGL(t *testing.T) {
	model := Mat4Scale(NewVec3(3, 1, 0.5)).Mul(Mat4RotationY(0.4))
	got := model.NormalMatrix()
	want := toMGL(model).Mat3().Inv().Transpose()

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if d := got[i][j] - want[3*i+j]; d > 1e-4 || d < -1e-4 {
				t.Fatalf("normal matrix [%d][%d]: got %v, want %v", i, j, got[i][j], want[3*i+j])
			}
		}
	}
}
