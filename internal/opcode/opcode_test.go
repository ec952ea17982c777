package opcode

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode_Fields(t *testing.T) {
	ins := Decode(0xD12A)

	assert.Equal(t, uint16(0xD12A), ins.Raw)
	assert.Equal(t, Drw, ins.Op)
	assert.Equal(t, uint16(0x12A), ins.NNN)
	assert.Equal(t, uint8(0x2A), ins.NN)
	assert.Equal(t, uint8(0xA), ins.N)
	assert.Equal(t, uint8(0x1), ins.X)
	assert.Equal(t, uint8(0x2), ins.Y)
}

func TestDecode_Ops(t *testing.T) {
	tests := []struct {
		raw  uint16
		want Op
	}{
		{0x0123, Sys},
		{0x00E0, Cls},
		{0x00EE, Ret},
		{0x1234, Jp},
		{0x2345, Call},
		{0x3A12, SeByte},
		{0x4B34, SneByte},
		{0x5120, SeReg},
		{0x5121, Unknown},
		{0x6A05, LdByte},
		{0x7001, AddByte},
		{0x8120, LdReg},
		{0x8121, Or},
		{0x8122, And},
		{0x8123, Xor},
		{0x8124, AddReg},
		{0x8125, Sub},
		{0x8126, Shr},
		{0x8127, Subn},
		{0x812E, Shl},
		{0x8128, Unknown},
		{0x812F, Unknown},
		{0x9120, SneReg},
		{0x9121, Unknown},
		{0xA123, LdI},
		{0xB123, JpV0},
		{0xC1FF, Rnd},
		{0xD015, Drw},
		{0xE19E, Skp},
		{0xE1A1, Sknp},
		{0xE100, Unknown},
		{0xF107, LdVxDT},
		{0xF10A, LdKey},
		{0xF115, LdDTVx},
		{0xF118, LdSTVx},
		{0xF11E, AddI},
		{0xF129, LdFont},
		{0xF133, LdBCD},
		{0xF155, LdStore},
		{0xF165, LdLoad},
		{0xF1FF, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.raw).Op)
		})
	}
}

func TestDecode_CoversAllOps(t *testing.T) {
	seen := map[Op]bool{}
	for raw := range 0x10000 {
		ins := Decode(uint16(raw))
		assert.True(t, ins.Op < Count)
		seen[ins.Op] = true
	}
	assert.Len(t, seen, int(Count))
}

func TestOp_String(t *testing.T) {
	for op := Unknown; op < Count; op++ {
		assert.NotEmpty(t, op.String())
	}
	assert.Equal(t, "8XY4", AddReg.String())
	assert.Equal(t, "Op(200)", Op(200).String())
	assert.Equal(t, "00E0 (00E0)", Decode(0x00E0).String())
}
