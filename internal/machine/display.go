package machine

import "strings"

// Display resolution in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the monochrome frame buffer, indexed as [y][x].
type Display [DisplayHeight][DisplayWidth]bool

// Pixel returns whether the pixel at the position is on.
// Positions outside of the display are reported as off.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return d[y][x]
}

func (d *Display) clear() {
	*d = Display{}
}

// drawSprite XORs the sprite onto the display. The start position wraps
// around the display edges, the sprite itself is clipped at the edges.
// It returns whether any pixel was turned off.
func (d *Display) drawSprite(x, y uint8, sprite []byte) bool {
	startX := int(x) % DisplayWidth
	startY := int(y) % DisplayHeight
	collision := false

	for row, bits := range sprite {
		py := startY + row
		if py >= DisplayHeight {
			break
		}

		for bit := range 8 {
			px := startX + bit
			if px >= DisplayWidth {
				break
			}
			if bits&(0x80>>bit) == 0 {
				continue
			}

			if d[py][px] {
				collision = true
			}
			d[py][px] = !d[py][px]
		}
	}

	return collision
}

// String renders the display as text, '#' for pixels that are on.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow(DisplayHeight * (DisplayWidth + 1))
	for y := range DisplayHeight {
		for x := range DisplayWidth {
			if d[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
