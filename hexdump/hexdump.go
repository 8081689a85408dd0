// Package hexdump renders memory around a resolved address: sixteen bytes
// per line with an ASCII column, the target bytes highlighted, and words that
// point into mapped memory annotated with the region they land in.
package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"gofreeze/process/memory_map"
)

const bytesPerLine = 16

// full width of the hex column: two halves of eight "xx" joined by spaces
// plus the " | " divider
const hexWidth = 2*(8*3-1) + 3

// Options controls a dump.
type Options struct {
	// Base is the address of data[0].
	Base uint64

	// Mark and MarkSize select the highlighted bytes.
	Mark     uint64
	MarkSize int

	// MemoryMap enables pointer annotations when set.
	MemoryMap []memory_map.MemoryMapItem

	// Color enables ANSI colors, drawn from Palette or DefaultPalette.
	Color   bool
	Palette Palette
}

// String returns the dump of data as a string.
func String(data []byte, opts Options) string {
	var buf bytes.Buffer
	Write(&buf, data, opts)
	return buf.String()
}

// Write dumps data to w.
func Write(w io.Writer, data []byte, opts Options) {
	for offset := 0; offset < len(data); offset += bytesPerLine {
		end := min(offset+bytesPerLine, len(data))
		writeLine(w, data[offset:end], opts.Base+uint64(offset), opts)
	}
}

func (o Options) marked(addr uint64) bool {
	return o.MarkSize > 0 && addr >= o.Mark && addr < o.Mark+uint64(o.MarkSize)
}

func writeLine(w io.Writer, line []byte, addr uint64, opts Options) {
	p := newPainter(opts)

	fmt.Fprint(w, p.fg(p.Offset, fmt.Sprintf("%016x", addr)), "  ")

	for i, b := range line {
		if i == 8 {
			fmt.Fprint(w, " | ")
		} else if i > 0 {
			fmt.Fprint(w, " ")
		}

		hex := fmt.Sprintf("%02x", b)
		switch {
		case opts.marked(addr + uint64(i)):
			if opts.Color {
				hex = p.mark(hex)
			} else {
				hex = strings.ToUpper(hex)
			}
		case b == 0:
			hex = p.fg(p.Zero, hex)
		default:
			hex = p.fg(p.Hex, hex)
		}
		fmt.Fprint(w, hex)
	}

	fmt.Fprint(w, strings.Repeat(" ", hexWidth-visibleWidth(len(line))))

	fmt.Fprint(w, "  |")
	for _, b := range line {
		c := rune(b)
		switch {
		case b == 0:
			fmt.Fprint(w, p.fg(p.Zero, "."))
		case c > unicode.MaxASCII || !unicode.IsPrint(c):
			fmt.Fprint(w, p.fg(p.NonPrintable, "."))
		default:
			fmt.Fprint(w, string(c))
		}
	}
	fmt.Fprint(w, "|")

	if len(opts.MemoryMap) > 0 {
		for i := 0; i+8 <= len(line); i += 8 {
			ptr := binary.LittleEndian.Uint64(line[i : i+8])
			if note, ok := pointerNote(ptr, opts.MemoryMap); ok {
				fmt.Fprint(w, " ", p.fg(p.Pointer, note))
			}
		}
	}

	fmt.Fprintln(w)
}

// visibleWidth is the printed width of n hex bytes without color codes.
func visibleWidth(n int) int {
	switch {
	case n == 0:
		return 0
	case n <= 8:
		return n*3 - 1
	default:
		return (8*3 - 1) + 3 + (n-8)*3 - 1
	}
}

// pointerNote describes ptr if it falls inside a mapped region.
func pointerNote(ptr uint64, mm []memory_map.MemoryMapItem) (string, bool) {
	if ptr == 0 {
		return "", false
	}

	item := memory_map.Lookup(ptr, mm)
	if item == nil {
		return "", false
	}

	where := item.Perms
	if item.Path != "" {
		where = fmt.Sprintf("%s+0x%x", filepath.Base(item.Path), ptr-item.Address)
	}
	return fmt.Sprintf("->0x%x(%s)", ptr, where), true
}
