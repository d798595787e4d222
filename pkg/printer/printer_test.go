package printer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("None", "", "")
	require.NoError(t, err)
	assert.False(t, p.IsConnected())
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("network", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("bluetooth", "", "")
	assert.Error(t, err)
}

func TestItemLineKeepsTotalOnOneLine(t *testing.T) {
	doc := NewDocument(32)
	doc.Reset()
	doc.ItemLine(decimal.RequireFromString("2.000"), strings.Repeat("Long product name ", 4), "1234.50")

	line := strings.TrimSuffix(string(doc.Bytes()[2:]), "\n")
	assert.Len(t, line, 32)
	assert.True(t, strings.HasPrefix(line, "2x Long"))
	assert.True(t, strings.HasSuffix(line, " 1234.50"))
}

func TestKeyValuePadsToWidth(t *testing.T) {
	doc := NewDocument(20)
	doc.KeyValue("Due:", Money(decimal.RequireFromString("12.5")))

	assert.True(t, bytes.HasSuffix(doc.Bytes(), []byte("Due:           12.50\n")))
}

func TestMoneyAndQuantity(t *testing.T) {
	assert.Equal(t, "26.09", Money(decimal.RequireFromString("26.0869565")))
	assert.Equal(t, "1.5", Quantity(decimal.RequireFromString("1.500")))
}

func TestItemLineCountsRunes(t *testing.T) {
	doc := NewDocument(20).Reset()
	doc.ItemLine(decimal.NewFromInt(1), "Café crème", "5.00")

	line := strings.TrimSuffix(string(doc.Bytes()[len(cmdInit):]), "\n")
	assert.Equal(t, 20, runeLen(line))
	assert.True(t, strings.HasPrefix(line, "1x Café crème"))
}

func TestFeedAndCut(t *testing.T) {
	doc := NewDocument(Width80mm).FeedLines(2).PartialCut()
	assert.True(t, bytes.HasSuffix(doc.Bytes(), []byte{LF, LF, GS, 'V', 0x01}))
}
