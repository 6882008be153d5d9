package math

import (
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Scale(t *testing.T) {
	v := Vec3{1, -2, 4}
	got := v.Scale(0.5)
	want := Vec3{0.5, -1, 2}
	if got != want {
		t.Errorf("Vec3.Scale() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	got := v.Length()
	want := float32(7)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3ApproxEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		eps  float32
		want bool
	}{
		{"identical", Vec3{1, 2, 3}, Vec3{1, 2, 3}, 0, true},
		{"within eps", Vec3{1, 2, 3}, Vec3{1.0005, 2, 2.9995}, 0.001, true},
		{"outside eps", Vec3{1, 2, 3}, Vec3{1.01, 2, 3}, 0.001, false},
		{"negative side", Vec3{-1, 0, 0}, Vec3{1, 0, 0}, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.ApproxEqual(tt.b, tt.eps); got != tt.want {
				t.Errorf("ApproxEqual(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.eps, got, tt.want)
			}
		})
	}
}

func TestAddScaled(t *testing.T) {
	dst := []Vec3{{1, 1, 1}, {0, 0, 0}, {5, 5, 5}}
	src := []Vec3{{2, 0, 0}, {0, 4, 0}}

	AddScaled(dst, src, 0.5)

	want := []Vec3{{2, 1, 1}, {0, 2, 0}, {5, 5, 5}}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestArrayRoundTrip(t *testing.T) {
	v := Vec3{1.5, -2, 3}
	if got := FromArray(v.Array()); got != v {
		t.Errorf("FromArray(Array()) = %v, want %v", got, v)
	}
}
