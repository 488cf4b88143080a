package types

// Partition is one decoded partition-table slot, primary or logical.
// Geometry accessors return the packed CHS triplet rendered as
// "cylinder/head/sector".
type Partition interface {
	Name() string
	Bootable() bool
	IsUsed() bool
	IsExtended() bool
	GetStartSector() uint64
	GetSize() uint64
	GetType() byte
	TypeLabel() string
	StartGeometry() string
	EndGeometry() string
}
