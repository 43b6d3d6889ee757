package math

import "testing"

func TestMat4InverseOfTranslation(t *testing.T) {
	tr := NewMat4Translation(NewVec3(0, 0, 30))
	inv := tr.Inverse()

	want := NewMat4Translation(NewVec3(0, 0, -30))
	if !inv.Compare(want, 1e-5) {
		t.Fatalf("Inverse() = %v, want %v", inv.Data, want.Data)
	}
	if got := tr.Mul(inv); !got.Compare(NewMat4Identity(), 1e-5) {
		t.Errorf("m * inverse(m) = %v, want identity", got.Data)
	}
}

func TestMat4InverseOfRotation(t *testing.T) {
	r := NewMat4EulerXYZ(0.3, -1.1, 2.0)
	if got := r.Mul(r.Inverse()); !got.Compare(NewMat4Identity(), 1e-5) {
		t.Errorf("r * inverse(r) = %v, want identity", got.Data)
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4EulerY(0.7).Mul(NewMat4Translation(NewVec3(4, -2, 9)))
	if got := m.Mul(NewMat4Identity()); !got.Compare(m, 0) {
		t.Errorf("m * I = %v, want %v", got.Data, m.Data)
	}
	if got := NewMat4Identity().Mul(m); !got.Compare(m, 0) {
		t.Errorf("I * m = %v, want %v", got.Data, m.Data)
	}
}

func TestMat4Orthographic(t *testing.T) {
	// Top-left origin, y grows downwards.
	o := NewMat4Orthographic(0, 800, 600, 0, -100, 100)

	topLeft := NewVec3(0, 0, 0).Transform(o)
	if !topLeft.Compare(NewVec3(-1, 1, 0), 1e-6) {
		t.Errorf("top-left maps to %+v, want (-1,1,0)", topLeft)
	}
	bottomRight := NewVec3(800, 600, 0).Transform(o)
	if !bottomRight.Compare(NewVec3(1, -1, 0), 1e-6) {
		t.Errorf("bottom-right maps to %+v, want (1,-1,0)", bottomRight)
	}
}

func TestMat4Perspective(t *testing.T) {
	fov := DegToRad(90)
	p := NewMat4Perspective(fov, 2, 0.1, 1000)
	if kabs(p.Data[5]-1) > 1e-6 {
		t.Errorf("Data[5] = %v, want 1 for a 90 degree fov", p.Data[5])
	}
	if kabs(p.Data[0]-0.5) > 1e-6 {
		t.Errorf("Data[0] = %v, want 0.5 for aspect 2", p.Data[0])
	}
	if p.Data[11] != -1 {
		t.Errorf("Data[11] = %v, want -1", p.Data[11])
	}
}
