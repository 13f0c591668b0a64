package board

import (
	"errors"
	"strings"
)

// Default board metadata.
const (
	DefaultVendor    = "ACME"
	DefaultLongName  = "Plank"
	DefaultShortName = "PLK"
	DefaultRevision  = "A"
)

// ErrInvalidName is returned for metadata that cannot be used in an adapter name.
var ErrInvalidName = errors.New("board: invalid name")

// Board describes one printed circuit board.
type Board struct {
	Vendor    string `yaml:"vendor" json:"vendor"`
	LongName  string `yaml:"longname" json:"longname"`
	ShortName string `yaml:"shortname" json:"shortname"`
	Revision  string `yaml:"revision" json:"revision"`
}

// WithDefaults fills empty fields with the default metadata.
func (b Board) WithDefaults() Board {
	if b.Vendor == "" {
		b.Vendor = DefaultVendor
	}
	if b.LongName == "" {
		b.LongName = DefaultLongName
	}
	if b.ShortName == "" {
		b.ShortName = DefaultShortName
	}
	if b.Revision == "" {
		b.Revision = DefaultRevision
	}
	return b
}

// Adapter joins a base board and an MCU board.
type Adapter struct {
	Revision  string `yaml:"revision" json:"revision"`
	Baseboard Board  `yaml:"baseboard" json:"baseboard"`
	MCUBoard  Board  `yaml:"mcuboard" json:"mcuboard"`
}

// WithDefaults fills empty fields of the adapter and both boards.
func (a Adapter) WithDefaults() Adapter {
	if a.Revision == "" {
		a.Revision = DefaultRevision
	}
	a.Baseboard = a.Baseboard.WithDefaults()
	a.MCUBoard = a.MCUBoard.WithDefaults()
	return a
}

// Name identifies the adapter in file names and storage keys.
func (a Adapter) Name() string {
	return strings.Join([]string{
		"Adapter",
		a.Revision,
		a.Baseboard.Vendor,
		a.Baseboard.ShortName,
		a.Baseboard.Revision,
		a.MCUBoard.Vendor,
		a.MCUBoard.ShortName,
		a.MCUBoard.Revision,
	}, "_")
}

// Title is the report heading.
func (a Adapter) Title() string {
	return "Adapter for " + a.MCUBoard.Vendor + " " + a.MCUBoard.LongName + " on " + a.Baseboard.Vendor + " " + a.Baseboard.LongName
}

// Validate rejects metadata containing path separators.
func (a Adapter) Validate() error {
	for _, part := range []string{a.Revision, a.Baseboard.Vendor, a.Baseboard.ShortName, a.Baseboard.Revision, a.MCUBoard.Vendor, a.MCUBoard.ShortName, a.MCUBoard.Revision} {
		if strings.ContainsAny(part, `/\`) || part == ".." {
			return errors.Join(ErrInvalidName, errors.New(part))
		}
	}
	return nil
}
