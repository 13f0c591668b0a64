package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func optionsTable3() Table {
	return NewTable(
		[]string{"Board-Pin", "MCU-Pin", "Comment", "ALT0-Module", "ALT0-Function", "ALT1-Module", "ALT1-Function"},
		[][]string{
			{"J1.1", "P0_1", "", "UART0", "TX", "SPI1", "MOSI"},
			{"J1.2", "P0_2", "5V tolerant", "UART0", "RX", "N/A", "N/A"},
			{"J1.3", "P0_3", "", "GPIO", "IO", "GPIO", "IO"},
			{"J1.4", "P0_4", "", "N/C", "", "SPI1", "MISO"},
		},
	)
}

func TestBuild_DedupAndCandidates(t *testing.T) {
	c, err := Build(optionsTable3())
	require.NoError(t, err)

	assert.Equal(t, []string{"UART0", "GPIO", "SPI1"}, c.Modules())
	assert.Equal(t, []string{"TX", "RX", "IO", "MOSI", "MISO"}, c.Functions())
	assert.Len(t, c.Pins(), 4)
	assert.Equal(t, "5V tolerant", c.Pin(1).Comment)

	// GPIO/IO appears twice on J1.3: one pair, two candidates.
	assert.Len(t, c.ModFuncs(), 5)
	assert.Equal(t, 6, c.NumCandidates())
	gpio, ok := c.ModuleKey("GPIO")
	require.True(t, ok)
	io, ok := c.FunctionKey("IO")
	require.True(t, ok)
	mf, ok := c.ModFuncKey(gpio, io)
	require.True(t, ok)
	assert.Equal(t, []int{3, 4}, c.CandidatesForModFunc(mf))
	assert.Equal(t, []int{3, 4}, c.CandidatesForPin(2))
	assert.Equal(t, []int{5}, c.CandidatesForPin(3))
}

func TestBuild_NoSentinels(t *testing.T) {
	c, err := Build(optionsTable3())
	require.NoError(t, err)
	for _, name := range append(c.Modules(), c.Functions()...) {
		assert.False(t, IsSentinel(name), "sentinel %q leaked", name)
	}
	seen := map[string]bool{}
	for _, name := range c.Modules() {
		assert.False(t, seen[name], "duplicate module %q", name)
		seen[name] = true
	}
}

func TestBuild_CandidateCountMatchesSlots(t *testing.T) {
	raw := optionsTable3()
	layout, err := ParseLayout(raw.Header)
	require.NoError(t, err)
	slots := 0
	for _, row := range raw.Rows {
		for _, alt := range layout.Alts {
			if !IsSentinel(row[alt.Module]) && !IsSentinel(row[alt.Function]) {
				slots++
			}
		}
	}
	c, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, slots, c.NumCandidates())
}

func TestBuild_SlotsInHeaderOrder(t *testing.T) {
	raw := NewTable(
		[]string{"Board-Pin", "MCU-Pin", "ALT1-Module", "ALT1-Function", "ALT0-Module", "ALT0-Function"},
		[][]string{{"J1.1", "P0_1", "SPI1", "MOSI", "UART0", "TX"}},
	)
	c, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, "J1.1 - P0_1 - SPI1 - MOSI", c.Label(0))
	assert.Equal(t, "J1.1 - P0_1 - UART0 - TX", c.Label(1))
}

func TestBuild_FormatErrors(t *testing.T) {
	cases := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{name: "empty header", header: nil},
		{name: "missing board pin", header: []string{"MCU-Pin", "ALT0-Module", "ALT0-Function"}},
		{name: "missing mcu pin", header: []string{"Board-Pin", "ALT0-Module", "ALT0-Function"}},
		{name: "module without function", header: []string{"Board-Pin", "MCU-Pin", "ALT0-Module"}},
		{name: "function without module", header: []string{"Board-Pin", "MCU-Pin", "ALT3-Function"}},
		{name: "duplicate column", header: []string{"Board-Pin", "MCU-Pin", "ALT0-Module", "ALT0-Module", "ALT0-Function"}},
		{
			name:   "row too wide",
			header: []string{"Board-Pin", "MCU-Pin"},
			rows:   [][]string{{"J1.1", "P0_1", "extra"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Build(NewTable(tc.header, tc.rows))
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, ErrFormat))
			var fe *FormatError
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestBuild_PadsShortRows(t *testing.T) {
	raw := NewTable(
		[]string{"Board-Pin", "MCU-Pin", "ALT0-Module", "ALT0-Function", "ALT1-Module", "ALT1-Function"},
		[][]string{{" J1.1 ", "P0_1", "UART0", "TX"}, {"", "", "", ""}},
	)
	c, err := Build(raw)
	require.NoError(t, err)
	assert.Len(t, c.Pins(), 1)
	assert.Equal(t, "J1.1", c.Pin(0).BoardPin)
	assert.Equal(t, 1, c.NumCandidates())
}

func TestResolveLabel(t *testing.T) {
	c, err := Build(optionsTable3())
	require.NoError(t, err)

	key, err := c.ResolveLabel("J1.1 - P0_1 - SPI1 - MOSI")
	require.NoError(t, err)
	assert.Equal(t, 1, key)

	key, err = c.ResolveLabel("Pin>C3@SPI>> J1.1 - P0_1 - SPI1 - MOSI")
	require.NoError(t, err)
	assert.Equal(t, 1, key)

	for _, bad := range []string{
		"J1.1 - P0_1 - SPI1",
		"J9.9 - P0_1 - SPI1 - MOSI",
		"J1.1 - P0_1 - CAN0 - MOSI",
		"J1.1 - P0_1 - SPI1 - SCK",
		"J1.2 - P0_2 - SPI1 - MOSI",
	} {
		_, err := c.ResolveLabel(bad)
		assert.ErrorIs(t, err, ErrUnresolvedLabel, bad)
	}
}

func TestStripConflictPrefix(t *testing.T) {
	assert.Equal(t, "a - b - c - d", StripConflictPrefix("Func>C3>> a - b - c - d"))
	assert.Equal(t, "a - b - c - d", StripConflictPrefix("a - b - c - d"))
	assert.Equal(t, "x", StripConflictPrefix("Pin>A1>> Pin>B2>> x"))
}
