package world

// BlockID identifies a block material. Zero is empty space.
type BlockID uint16

const (
	BlockAir BlockID = iota
	BlockStone
	BlockDirt
	BlockGrass
)

// Solid reports whether the block occupies space.
func (b BlockID) Solid() bool {
	return b != BlockAir
}
