package math

import "testing"

func TestVec3CrossIsOrthogonal(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(-4, 0.5, 2)
	c := a.Cross(b)
	if d := c.Dot(a); kabs(d) > 1e-5 {
		t.Errorf("cross . a = %v, want 0", d)
	}
	if d := c.Dot(b); kabs(d) > 1e-5 {
		t.Errorf("cross . b = %v, want 0", d)
	}
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 4, 12).Normalized()
	if l := v.Length(); kabs(l-1) > 1e-6 {
		t.Errorf("length = %v, want 1", l)
	}
	if !v.Compare(NewVec3(3.0/13, 4.0/13, 12.0/13), 1e-6) {
		t.Errorf("normalized = %+v", v)
	}

	zero := NewVec3Zero().Normalized()
	if IsFinite(zero.X) {
		t.Errorf("normalizing a zero vector should not yield a finite value, got %+v", zero)
	}
}

func TestVec3Transform(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	got := NewVec3(1, 1, 1).Transform(m)
	if !got.Compare(NewVec3(2, 3, 4), K_FLOAT_EPSILON) {
		t.Errorf("Transform() = %+v, want (2,3,4)", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0.5, 0.5},
		{7, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, 0, 1); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := Clamp(12, 1, 10); got != 10 {
		t.Errorf("Clamp(int) = %v, want 10", got)
	}
}
