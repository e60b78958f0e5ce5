package route

import "fmt"

// Default tunables. They are empirical values for icons around 40-64px and
// are exposed through [Options] and the config file rather than hard-coded.
const (
	// DefaultStemLen is the length of the perpendicular leg at each end.
	DefaultStemLen = 20.0

	// DefaultPortGap is the minimum tangential distance between two ports
	// sharing one icon side.
	DefaultPortGap = 12.0

	// DefaultObstacleMargin expands every obstacle before hit testing, so
	// a connector skimming an icon boundary still counts as a hit.
	DefaultObstacleMargin = 6.0

	// DefaultSideInset keeps ports away from icon corners.
	DefaultSideInset = 6.0

	// DefaultElbowPitch is the spacing between aligned elbows.
	DefaultElbowPitch = 12.0

	// DefaultLoosenessThreshold is the elbow spread above which a group is
	// considered deliberately spread out and left alone.
	DefaultLoosenessThreshold = 48.0

	// DefaultMinShift is the smallest post-processing move worth applying.
	DefaultMinShift = 1.0
)

// Options controls the routing search and the post-processing passes.
// The zero value is not useful; start from [DefaultOptions].
type Options struct {
	StemLen            float64 `json:"stemLen" toml:"stem_len" yaml:"stem_len"`
	PortGap            float64 `json:"portGap" toml:"port_gap" yaml:"port_gap"`
	ObstacleMargin     float64 `json:"obstacleMargin" toml:"obstacle_margin" yaml:"obstacle_margin"`
	SideInset          float64 `json:"sideInset" toml:"side_inset" yaml:"side_inset"`
	ElbowPitch         float64 `json:"elbowPitch" toml:"elbow_pitch" yaml:"elbow_pitch"`
	LoosenessThreshold float64 `json:"loosenessThreshold" toml:"looseness_threshold" yaml:"looseness_threshold"`
	MinShift           float64 `json:"minShift" toml:"min_shift" yaml:"min_shift"`

	// CenterPorts enables the port re-centering pass.
	CenterPorts bool `json:"centerPorts" toml:"center_ports" yaml:"center_ports"`
	// AlignElbows enables the elbow alignment pass.
	AlignElbows bool `json:"alignElbows" toml:"align_elbows" yaml:"align_elbows"`
}

// DefaultOptions returns the tunables used by the editor.
func DefaultOptions() Options {
	return Options{
		StemLen:            DefaultStemLen,
		PortGap:            DefaultPortGap,
		ObstacleMargin:     DefaultObstacleMargin,
		SideInset:          DefaultSideInset,
		ElbowPitch:         DefaultElbowPitch,
		LoosenessThreshold: DefaultLoosenessThreshold,
		MinShift:           DefaultMinShift,
		CenterPorts:        true,
		AlignElbows:        true,
	}
}

// SetDefaults fills zero-valued numeric fields with their defaults.
// The post-processing switches are left untouched.
func (o *Options) SetDefaults() {
	if o.StemLen == 0 {
		o.StemLen = DefaultStemLen
	}
	if o.PortGap == 0 {
		o.PortGap = DefaultPortGap
	}
	if o.ObstacleMargin == 0 {
		o.ObstacleMargin = DefaultObstacleMargin
	}
	if o.SideInset == 0 {
		o.SideInset = DefaultSideInset
	}
	if o.ElbowPitch == 0 {
		o.ElbowPitch = DefaultElbowPitch
	}
	if o.LoosenessThreshold == 0 {
		o.LoosenessThreshold = DefaultLoosenessThreshold
	}
	if o.MinShift == 0 {
		o.MinShift = DefaultMinShift
	}
}

// Validate rejects tunables the search cannot work with.
func (o Options) Validate() error {
	checks := []struct {
		name  string
		value float64
		min   float64
	}{
		{"stem_len", o.StemLen, 1},
		{"port_gap", o.PortGap, 1},
		{"obstacle_margin", o.ObstacleMargin, 0},
		{"side_inset", o.SideInset, 0},
		{"elbow_pitch", o.ElbowPitch, 1},
		{"looseness_threshold", o.LoosenessThreshold, 0},
		{"min_shift", o.MinShift, 0},
	}
	for _, c := range checks {
		if c.value < c.min {
			return fmt.Errorf("%s must be >= %g, got %g", c.name, c.min, c.value)
		}
	}
	return nil
}
