package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// GS ! size bytes.
const (
	FontNormal = 0x00
	FontDouble = 0x11
	FontWide   = 0x10
	FontTall   = 0x01
)

// Paper widths in characters.
const (
	Width58mm = 32
	Width80mm = 48
)

var (
	cmdInit       = []byte{ESC, '@'}
	cmdPartialCut = []byte{GS, 'V', 0x01}
)

// Document builds an ESC/POS job line by line. Widths count runes, not bytes,
// so product names with accents still line up.
type Document struct {
	buf   bytes.Buffer
	width int
}

func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	d.buf.Write(cmdInit)
	return d
}

// Reset drops everything written so far and re-initialises the printer.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.buf.Write(cmdInit)
	return d
}

func (d *Document) LineFeed() *Document {
	return d.FeedLines(1)
}

func (d *Document) FeedLines(n int) *Document {
	d.buf.Write(bytes.Repeat([]byte{LF}, max(n, 0)))
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) TextF(format string, args ...any) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator fills one line with char.
func (d *Document) Separator(char byte) *Document {
	return d.Text(strings.Repeat(string(char), d.width))
}

// KeyValue prints key on the left and value flush right, e.g. "Due:      12.50".
func (d *Document) KeyValue(key, value string) *Document {
	return d.columns(key, value)
}

// ItemLine prints "2x Widget        20.00". The name is cut so the total
// always stays on the same line.
func (d *Document) ItemLine(qty decimal.Decimal, name, total string) *Document {
	prefix := Quantity(qty) + "x "
	room := max(d.width-runeLen(prefix)-runeLen(total)-1, 1)
	return d.columns(prefix+truncate(name, room), total)
}

func (d *Document) PartialCut() *Document {
	d.buf.Write(cmdPartialCut)
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// columns writes left and right on one line with at least one space between.
func (d *Document) columns(left, right string) *Document {
	gap := max(d.width-runeLen(left)-runeLen(right), 1)
	return d.Text(left + strings.Repeat(" ", gap) + right)
}

// Money formats an amount with two decimals.
func Money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Quantity drops trailing zeros so "2.000" prints as "2".
func Quantity(qty decimal.Decimal) string {
	return qty.String()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncate(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
