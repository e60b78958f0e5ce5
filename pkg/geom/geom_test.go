package geom

import "testing"

func TestSidePoint(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 40, H: 60}
	tests := []struct {
		side   Side
		offset float64
		want   Point
	}{
		{Top, 0, Pt(20, 0)},
		{Top, 12, Pt(32, 0)},
		{Bottom, -12, Pt(8, 60)},
		{Left, 0, Pt(0, 30)},
		{Left, 12, Pt(0, 42)},
		{Right, -12, Pt(40, 18)},
	}
	for _, tt := range tests {
		if got := SidePoint(r, tt.side, tt.offset); !got.Eq(tt.want) {
			t.Errorf("SidePoint(%s, %g) = %s, want %s", tt.side, tt.offset, got, tt.want)
		}
	}
}

func TestStemPoint(t *testing.T) {
	p := Pt(10, 10)
	tests := []struct {
		side Side
		want Point
	}{
		{Top, Pt(10, -10)},
		{Bottom, Pt(10, 30)},
		{Left, Pt(-10, 10)},
		{Right, Pt(30, 10)},
	}
	for _, tt := range tests {
		if got := StemPoint(p, tt.side, 20); !got.Eq(tt.want) {
			t.Errorf("StemPoint(%s) = %s, want %s", tt.side, got, tt.want)
		}
	}
}

func TestSideGeometry(t *testing.T) {
	for _, s := range Sides {
		if s.Opposite().Opposite() != s {
			t.Errorf("%s.Opposite().Opposite() = %s", s, s.Opposite().Opposite())
		}
		if s.NormalAxis() == s.Tangent() {
			t.Errorf("%s: normal and tangent share axis %s", s, s.Tangent())
		}
		dx, dy := s.Normal()
		ox, oy := s.Opposite().Normal()
		if dx != -ox || dy != -oy {
			t.Errorf("%s: normal (%g,%g) is not opposite of (%g,%g)", s, dx, dy, ox, oy)
		}
	}
}

func TestParseSide(t *testing.T) {
	for _, s := range Sides {
		got, err := ParseSide(s.String())
		if err != nil || got != s {
			t.Errorf("ParseSide(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseSide("north"); err == nil {
		t.Error("ParseSide(north) succeeded, want error")
	}

	var s Side
	if err := s.UnmarshalText([]byte("left")); err != nil || s != Left {
		t.Errorf("UnmarshalText(left) = %v, %v", s, err)
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 40, H: 60}
	if r.Center() != Pt(30, 50) {
		t.Errorf("Center() = %s", r.Center())
	}
	e := r.Expand(5)
	if e != (Rect{X: 5, Y: 15, W: 50, H: 70}) {
		t.Errorf("Expand(5) = %+v", e)
	}
	if !r.Contains(Pt(10, 20)) {
		t.Error("Contains(corner) = false, want true")
	}
	if r.ContainsStrict(Pt(10, 20)) {
		t.Error("ContainsStrict(corner) = true, want false")
	}
	if got := r.SideLength(Top); got != 40 {
		t.Errorf("SideLength(top) = %g, want 40", got)
	}
	if got := r.SideLength(Left); got != 60 {
		t.Errorf("SideLength(left) = %g, want 60", got)
	}
	u := r.Union(Rect{X: 0, Y: 0, W: 5, H: 5})
	if u != (Rect{X: 0, Y: 0, W: 50, H: 80}) {
		t.Errorf("Union() = %+v", u)
	}
}

func TestBounds(t *testing.T) {
	if got := Bounds(nil); got != (Rect{}) {
		t.Errorf("Bounds(nil) = %+v", got)
	}
	got := Bounds([]Point{Pt(3, 4), Pt(-1, 10), Pt(5, 0)})
	if got != (Rect{X: -1, Y: 0, W: 6, H: 10}) {
		t.Errorf("Bounds() = %+v", got)
	}
}
