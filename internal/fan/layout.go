package fan

import "math"

type Slot int

const (
	SlotLeft Slot = iota
	SlotRight
	SlotCenter
)

func (s Slot) String() string {
	switch s {
	case SlotLeft:
		return "left"
	case SlotRight:
		return "right"
	default:
		return "center"
	}
}

const (
	sideRotation = 8.0
	sideOffsetX  = 45.0
	sideOffsetY  = 10.0
	sideScale    = 0.85
	sideOpacity  = 0.6
)

// Placement is where one card sits in the fan for the current frame.
type Placement struct {
	Index      int
	Slot       Slot
	TranslateX float64
	TranslateY float64
	Rotation   float64
	Scale      float64
	Opacity    float64
}

// Layout returns at most three placements in paint order: left, right,
// then center on top.
func (f *Fan[T]) Layout() []Placement {
	n := len(f.items)
	if n == 0 {
		return nil
	}
	focus := f.safeFocus()
	out := make([]Placement, 0, 3)

	switch {
	case n == 1:
	case n == 2:
		other := 1 - focus
		if other < focus {
			out = append(out, f.side(other, SlotLeft))
		} else {
			out = append(out, f.side(other, SlotRight))
		}
	default:
		out = append(out,
			f.side((focus-1+n)%n, SlotLeft),
			f.side((focus+1)%n, SlotRight),
		)
	}
	return append(out, f.center(focus))
}

func (f *Fan[T]) side(index int, slot Slot) Placement {
	p := Placement{Index: index, Slot: slot, TranslateY: sideOffsetY, Opacity: sideOpacity}

	var shift float64
	if slot == SlotLeft {
		p.Rotation = -sideRotation
		p.TranslateX = -sideOffsetX
		shift = interpolate(f.dx, []float64{-100, 0, 100}, []float64{-20, 0, -10})
	} else {
		p.Rotation = sideRotation
		p.TranslateX = sideOffsetX
		shift = interpolate(f.dx, []float64{-100, 0, 100}, []float64{10, 0, 20})
	}
	p.TranslateX += shift
	p.Scale = interpolate(math.Abs(f.dx), []float64{0, 100}, []float64{sideScale, sideScale + 0.05})
	return p
}

func (f *Fan[T]) center(index int) Placement {
	half := f.width / 2
	return Placement{
		Index:      index,
		Slot:       SlotCenter,
		TranslateX: f.dx,
		TranslateY: f.dy,
		Rotation:   interpolate(f.dx, []float64{-half, 0, half}, []float64{-15, 0, 15}),
		Scale:      interpolate(math.Abs(f.dy), []float64{0, 150}, []float64{1, 0.9}),
		Opacity:    interpolate(f.dy, []float64{-200, 0}, []float64{0.5, 1}),
	}
}

// interpolate maps x through the piecewise linear curve (in, out), clamping
// outside the input range. in must be ascending.
func interpolate(x float64, in, out []float64) float64 {
	if x <= in[0] {
		return out[0]
	}
	last := len(in) - 1
	if x >= in[last] {
		return out[last]
	}
	for i := 1; i <= last; i++ {
		if x <= in[i] {
			t := (x - in[i-1]) / (in[i] - in[i-1])
			return out[i-1] + t*(out[i]-out[i-1])
		}
	}
	return out[last]
}
