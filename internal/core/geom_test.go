package core

import "testing"

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected Rect
	}{
		{
			name:     "overlapping rects",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(5, 5, 10, 10),
			expected: NewRect(5, 5, 5, 5),
		},
		{
			name:     "non-overlapping horizontal",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(15, 0, 10, 10),
			expected: Rect{},
		},
		{
			name:     "adjacent vertical (no overlap)",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(0, 10, 10, 10),
			expected: Rect{},
		},
		{
			name:     "contained rect",
			a:        NewRect(0, 0, 20, 20),
			b:        NewRect(5, 5, 5, 5),
			expected: NewRect(5, 5, 5, 5),
		},
		{
			name:     "negative origin clipped",
			a:        NewRect(-4, -4, 8, 8),
			b:        NewRect(0, 0, 80, 24),
			expected: NewRect(0, 0, 4, 4),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.a.Intersect(tc.b)
			if result != tc.expected {
				t.Errorf("Intersect() = %+v, expected %+v", result, tc.expected)
			}
			// Also test symmetry
			if reverse := tc.b.Intersect(tc.a); reverse != tc.expected {
				t.Errorf("Intersect() (reversed) = %+v, expected %+v", reverse, tc.expected)
			}
			if result.Empty() != (tc.expected == Rect{}) {
				t.Errorf("Empty() = %v for %+v", result.Empty(), result)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"outside left", 5, 15, false},
		{"outside bottom", 15, 30, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := r.Contains(tc.x, tc.y); result != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, result, tc.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},   // within range
		{-5, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
	}

	for _, tc := range tests {
		if result := Clamp(tc.val, tc.lo, tc.hi); result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected float64
	}{
		{0.5, 0.0, 1.0, 0.5},
		{-0.2, 0.0, 1.0, 0.0},
		{1.3, 0.0, 1.0, 1.0},
	}

	for _, tc := range tests {
		if result := ClampF(tc.val, tc.lo, tc.hi); result != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.lo, tc.hi, result, tc.expected)
		}
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(10, 20, 0.5); got != 15 {
		t.Errorf("Lerp(10, 20, 0.5) = %f, expected 15", got)
	}
	if got := Lerp(10, 20, 0); got != 10 {
		t.Errorf("Lerp(10, 20, 0) = %f, expected 10", got)
	}
}

func TestFillPathContainsPoint(t *testing.T) {
	tri := FillPath{Points: []PointF{{0, 10}, {10, 10}, {5, 0}}}

	if !tri.ContainsPoint(5, 8) {
		t.Error("point near the base should be inside the triangle")
	}
	if tri.ContainsPoint(1, 1) {
		t.Error("point in the top-left corner should be outside the triangle")
	}

	b := tri.Bounds()
	if b.X != 0 || b.Y != 0 || b.W != 10 || b.H != 10 {
		t.Errorf("Bounds() = %+v, expected {0 0 10 10}", b)
	}
}
