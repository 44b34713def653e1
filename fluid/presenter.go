package fluid

import "github.com/pthm-cable/dyeflow/device"

// presenter draws the dye field to the visible surface.
type presenter struct {
	dev device.Device
}

func (p *presenter) render(fs *FieldSet, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.dev.Present(device.Display{Source: fs.Dye.Read()}, width, height)
}
