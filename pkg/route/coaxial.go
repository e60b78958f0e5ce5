package route

import (
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// coaxial collects the contiguous run of waypoints around start that share
// start's coordinate on axis a. Moving the whole run along a keeps every
// segment axis-aligned. The scan is iterative and walks at most len(pts)
// points in each direction; ok is false when the run would leave [lo, hi],
// which callers use to protect the far stem and port.
func coaxial(pts []geom.Point, start int, a geom.Axis, lo, hi int) (run []int, ok bool) {
	if start < lo || start > hi {
		return nil, false
	}
	v := pts[start].Coord(a)
	run = append(run, start)
	for j := start - 1; j >= 0 && sameCoord(pts[j].Coord(a), v); j-- {
		if j < lo {
			return nil, false
		}
		run = append(run, j)
	}
	for j := start + 1; j < len(pts) && sameCoord(pts[j].Coord(a), v); j++ {
		if j > hi {
			return nil, false
		}
		run = append(run, j)
	}
	return run, true
}

// shiftRun moves pts[start] and its coaxial run by delta along a.
func shiftRun(pts []geom.Point, start int, a geom.Axis, delta float64, lo, hi int) bool {
	run, ok := coaxial(pts, start, a, lo, hi)
	if !ok {
		return false
	}
	for _, j := range run {
		pts[j] = pts[j].WithCoord(a, pts[j].Coord(a)+delta)
	}
	return true
}
