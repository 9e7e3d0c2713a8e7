package common

const (
	BaseWidth  = 960
	BaseHeight = 720

	// PixelsPerMeter scales the top-down arena view.
	PixelsPerMeter = 8.0
)
