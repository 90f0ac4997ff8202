package vis

// Camera maps world coordinates (metres, y up) to screen pixels.
type Camera struct {
	OffsetX float32
	OffsetY float32
	Zoom    float32
}

// NewCamera returns a camera at the default view.
func NewCamera() *Camera {
	return &Camera{OffsetX: 100, OffsetY: 100, Zoom: 60}
}

// Reset restores the default view.
func (c *Camera) Reset() {
	c.OffsetX = 100
	c.OffsetY = 100
	c.Zoom = 60
}

// WorldToScreen converts world coordinates to screen coordinates. The y
// axis flips so world-up renders upward.
func (c *Camera) WorldToScreen(worldX, worldY float64) (float32, float32) {
	return float32(worldX)*c.Zoom + c.OffsetX, -float32(worldY)*c.Zoom + c.OffsetY
}

// Fit positions the camera so the world box (xmin..xmax, ymin..ymax) fills
// the screen area with a margin.
func (c *Camera) Fit(xmin, xmax, ymin, ymax float64, screenW, screenH float32) {
	const margin = 40
	spanX := float32(xmax - xmin)
	spanY := float32(ymax - ymin)
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}
	zx := (screenW - 2*margin) / spanX
	zy := (screenH - 2*margin) / spanY
	c.Zoom = zx
	if zy < zx {
		c.Zoom = zy
	}
	c.OffsetX = margin - float32(xmin)*c.Zoom
	c.OffsetY = screenH - margin + float32(ymin)*c.Zoom
}
