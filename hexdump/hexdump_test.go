package hexdump

import (
	"strings"
	"testing"

	"gofreeze/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/stretchr/testify/require"
)

func sample() []byte {
	return []byte{
		0x10, 0x00, 0x20, 0x00, 0x00, 0x00, 0x00, 0x00,
		'A', 'B', 'C', 'D', 0x00, 0x00, 0x80, 0x3f,
		0xff, 0x01, 0x02, 0x03,
	}
}

func TestPlainDump(t *testing.T) {
	mm := []memory_map.MemoryMapItem{
		{Address: 0x200000, Size: 0x1000, Perms: "rw-p", Path: "/lib/libgame.so"},
	}

	got := String(sample(), Options{Base: 0x1000, Mark: 0x100c, MarkSize: 4, MemoryMap: mm})

	want := "0000000000001000  10 00 20 00 00 00 00 00 | 41 42 43 44 00 00 80 3F  |.. .....ABCD...?| ->0x200010(libgame.so+0x10)\n" +
		"0000000000001010  ff 01 02 03" + strings.Repeat(" ", 38) + "  |....|\n"
	require.Equal(t, want, got)
}

func TestPlainDumpWithoutMap(t *testing.T) {
	got := String(sample()[:8], Options{Base: 0x1000})
	require.NotContains(t, got, "->")
	require.True(t, strings.HasPrefix(got, "0000000000001000  10 00 20 00 00 00 00 00"))
}

func TestColorDump(t *testing.T) {
	got := String(sample(), Options{Base: 0x1000, Mark: 0x100c, MarkSize: 4, Color: true})
	require.Contains(t, got, "\033[30m\033[43m80\033[0m")
	require.Contains(t, got, "\033[90m00\033[0m")
}

func TestColorDumpUsesPalette(t *testing.T) {
	got := String(sample(), Options{Base: 0x1000, Mark: 0x100c, MarkSize: 4, Color: true})
	require.Contains(t, got, coloransi.Foreground(coloransi.Cyan, "0000000000001000"))
	require.Contains(t, got, coloransi.Foreground(coloransi.Green, "41"))
	require.Contains(t, got, coloransi.Color(coloransi.Black, coloransi.Yellow, "3f"))

	custom := DefaultPalette
	custom.Hex = coloransi.Magenta
	got = String(sample(), Options{Base: 0x1000, Color: true, Palette: custom})
	require.Contains(t, got, coloransi.Foreground(coloransi.Magenta, "41"))
	require.NotContains(t, got, coloransi.Foreground(coloransi.Green, "41"))
}

func TestEmpty(t *testing.T) {
	require.Empty(t, String(nil, Options{}))
}
