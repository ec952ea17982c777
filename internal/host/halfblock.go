package host

import "github.com/retroenv/chip8vm/internal/machine"

// Characters that show two vertically stacked pixels in one text cell.
const (
	UpperHalf = '▀'
	LowerHalf = '▄'
	FullBlock = '█'
	Empty     = ' '
)

// HalfBlock returns the character that shows the two pixels.
func HalfBlock(upper, lower bool) rune {
	switch {
	case upper && lower:
		return FullBlock
	case upper:
		return UpperHalf
	case lower:
		return LowerHalf
	default:
		return Empty
	}
}

// HalfBlockRows returns the display as text lines, each line shows two
// pixel rows.
func HalfBlockRows(d *machine.Display) []string {
	rows := make([]string, 0, machine.DisplayHeight/2)
	line := make([]rune, machine.DisplayWidth)
	for y := 0; y < machine.DisplayHeight; y += 2 {
		for x := range machine.DisplayWidth {
			line[x] = HalfBlock(d.Pixel(x, y), d.Pixel(x, y+1))
		}
		rows = append(rows, string(line))
	}
	return rows
}
