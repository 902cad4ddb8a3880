package backend

// Paint is a gradient or image fill source.
// This is a sealed interface; only types in this package implement it.
type Paint interface {
	paintMarker()
}

// LinearGradient blends Inner at (SX, SY) into Outer at (EX, EY).
type LinearGradient struct {
	SX, SY, EX, EY float64
	Inner, Outer   Color
}

// BoxGradient is a feathered rounded rectangle, useful for drop shadows.
// Inner fills the rectangle and fades to Outer across Feather pixels.
type BoxGradient struct {
	X, Y, W, H   float64
	Radius       float64
	Feather      float64
	Inner, Outer Color
}

// RadialGradient blends Inner at InnerRadius into Outer at OuterRadius
// around (CX, CY).
type RadialGradient struct {
	CX, CY                   float64
	InnerRadius, OuterRadius float64
	Inner, Outer             Color
}

// ImagePattern repeats Image with its top-left corner at (OX, OY), scaled
// to W×H and rotated by Angle radians.
type ImagePattern struct {
	OX, OY, W, H float64
	Angle        float64
	Alpha        float64
	Image        Image
}

func (LinearGradient) paintMarker() {}
func (BoxGradient) paintMarker()    {}
func (RadialGradient) paintMarker() {}
func (ImagePattern) paintMarker()   {}
