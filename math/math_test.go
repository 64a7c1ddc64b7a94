package math

import (
	"math"
	"testing"
)

const tolerance = float32(1e-4)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if got := v1.Add(v2); got != NewVec3(5, 7, 9) {
		t.Errorf("Add: expected (5,7,9), got %v", got)
	}
	if got := v2.Sub(v1); got != NewVec3(3, 3, 3) {
		t.Errorf("Sub: expected (3,3,3), got %v", got)
	}
	if got := v1.Mul(2); got != NewVec3(2, 4, 6) {
		t.Errorf("Mul: expected (2,4,6), got %v", got)
	}
	if got := v1.Dot(v2); got != 32 {
		t.Errorf("Dot: expected 32, got %v", got)
	}

	// Right x Up = Front in a right-handed system
	if got := Vec3Right.Cross(Vec3Up); got != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := NewVec3(3, 0, 0).Normalize()
	if n != NewVec3(1, 0, 0) {
		t.Errorf("Normalize: expected (1,0,0), got %v", n)
	}
	if Vec3Zero.Normalize() != Vec3Zero {
		t.Error("Normalize: zero vector must stay zero")
	}
}

func TestMat4Multiplication(t *testing.T) {
	a := Mat4Translation(NewVec3(1, 0, 0))
	b := Mat4Translation(NewVec3(0, 2, 0))

	got := a.Mul(b).Translation()
	if got != NewVec3(1, 2, 0) {
		t.Errorf("Mul: expected translation (1,2,0), got %v", got)
	}
	if Mat4Identity().Mul(a) != a {
		t.Error("Mul: identity must be neutral")
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}
	if got := m.MulPoint(Vec3Zero); got != translation {
		t.Errorf("MulPoint: expected %v, got %v", translation, got)
	}
	if got := m.MulDir(Vec3Front); got != Vec3Front {
		t.Errorf("MulDir: translation must not move directions, got %v", got)
	}
}

func TestMat4TRSOrder(t *testing.T) {
	// scale 2, rotate 90° about Z, then translate (1,1,0): (1,0,0) -> (2,0,0) -> (0,2,0) -> (1,3,0)
	m := Mat4TRS(NewVec3(1, 1, 0), QuaternionFromAxisAngle(NewVec3(0, 0, 1), math.Pi/2), Splat3(2))
	got := m.MulPoint(Vec3Right)
	if !got.ApproxEqual(NewVec3(1, 3, 0), tolerance) {
		t.Errorf("TRS: expected (1,3,0), got %v", got)
	}
}

func TestMat4Inverse(t *testing.T) {
	m := Mat4TRS(NewVec3(4, -2, 7), QuaternionFromAxisAngle(NewVec3(1, 1, 0), 0.7), NewVec3(1, 2, 3))
	if !m.Mul(m.Inverse()).ApproxEqual(Mat4Identity(), tolerance) {
		t.Errorf("Inverse: m * m^-1 is not identity")
	}
}

func TestMat3Inverse(t *testing.T) {
	m := Mat3{
		{2, 0, 1},
		{1, 3, 0},
		{0, 1, 4},
	}
	if !m.Mul(m.Inverse()).ApproxEqual(Mat3Identity(), tolerance) {
		t.Errorf("Inverse: m * m^-1 is not identity")
	}
}

func TestNormalMatrix(t *testing.T) {
	// Non-uniform scale: a surface tilted 45° in XY must keep its normal
	// perpendicular to the transformed surface.
	model := Mat4Scale(NewVec3(4, 1, 1))
	tangent := NewVec3(1, -1, 0)
	normal := NewVec3(1, 1, 0)

	tT := model.MulDir(tangent)
	nT := normal.MulMat3(model.NormalMatrix())
	if d := tT.Dot(nT); math.Abs(float64(d)) > 1e-4 {
		t.Errorf("NormalMatrix: transformed normal not perpendicular (dot=%v)", d)
	}

	// Pure rotation: the normal matrix equals the rotation.
	rot := QuaternionFromAxisAngle(Vec3Up, 0.3).ToMat4()
	if !rot.NormalMatrix().ApproxEqual(rot.Upper3(), tolerance) {
		t.Error("NormalMatrix: rotation should map to itself")
	}
}

func TestMat4WithoutTranslation(t *testing.T) {
	m := Mat4RotationY(0.5).Mul(Mat4Translation(NewVec3(3, 4, 5)))
	s := m.WithoutTranslation()
	if s.Translation() != Vec3Zero {
		t.Errorf("WithoutTranslation: expected zero translation, got %v", s.Translation())
	}
	if s.Upper3() != m.Upper3() {
		t.Error("WithoutTranslation: rotation block changed")
	}
}

func TestQuaternionRotation(t *testing.T) {
	// 90 degree rotation around Y takes +X to -Z
	q := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))
	result := q.RotateVector(Vec3Right)
	if !result.ApproxEqual(Vec3Back, tolerance) {
		t.Errorf("Quaternion rotation: expected approximately (0,0,-1), got %v", result)
	}

	// The matrix form agrees with RotateVector.
	viaMat := q.ToMat4().MulDir(Vec3Right)
	if !viaMat.ApproxEqual(result, tolerance) {
		t.Errorf("ToMat4: expected %v, got %v", result, viaMat)
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	m := Mat4LookAt(eye, Vec3Zero, Vec3Up)

	// The view matrix should transform the eye position to origin
	if got := m.MulPoint(eye); !got.ApproxEqual(Vec3Zero, tolerance) {
		t.Errorf("LookAt: expected eye to transform to origin, got %v", got)
	}
}

func TestMat4Perspective(t *testing.T) {
	m := Mat4Perspective(float32(math.Pi/4), 16.0/9.0, 0.1, 100)

	// A point on the near plane maps to NDC depth -1, the far plane to +1.
	near := m.MulVec(NewVec4(0, 0, -0.1, 1)).ToVec3DivW()
	far := m.MulVec(NewVec4(0, 0, -100, 1)).ToVec3DivW()
	if math.Abs(float64(near.Z+1)) > 1e-3 || math.Abs(float64(far.Z-1)) > 1e-3 {
		t.Errorf("Perspective: expected depth -1..1, got near=%v far=%v", near.Z, far.Z)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4RotationX(0.3)
	m2 := Mat4Translation(NewVec3(1, 2, 3))

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}
