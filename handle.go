package handletable

import "fmt"

// Field widths and limits of the handle layout. Instance occupies the low
// bits, index the middle, generation the top two. These never change:
// handles may be persisted or cross process boundaries.
const (
	InstanceBits   = 6
	IndexBits      = 24
	GenerationBits = 2

	// InstanceMax, IndexMax and GenerationMax are the largest values
	// each field can encode.
	InstanceMax   = (1 << InstanceBits) - 1
	IndexMax      = (1 << IndexBits) - 1
	GenerationMax = (1 << GenerationBits) - 1
)

const (
	instanceShift   = 0
	indexShift      = InstanceBits
	generationShift = InstanceBits + IndexBits

	instanceMask   = InstanceMax << instanceShift
	indexMask      = IndexMax << indexShift
	generationMask = GenerationMax << generationShift
)

// Handle is an opaque reference to one slot in a table.
// The zero handle is reserved and always invalid: every issued handle
// carries a generation of at least 1.
type Handle uint32

// NewHandle packs index, generation and instance into a handle. Each
// value is truncated to its field width; no other validation is applied,
// so callers must supply in-range values.
func NewHandle(index uint32, generation, instance uint8) Handle {
	h := (index << indexShift) & indexMask
	h |= (uint32(generation) << generationShift) & generationMask
	h |= (uint32(instance) << instanceShift) & instanceMask
	return Handle(h)
}

// Index returns the slot position encoded in h.
func (h Handle) Index() uint32 {
	return (uint32(h) & indexMask) >> indexShift
}

// Generation returns the anti-reuse counter encoded in h.
func (h Handle) Generation() uint8 {
	return uint8((uint32(h) & generationMask) >> generationShift)
}

// Instance returns the caller-assigned sub-tag encoded in h.
func (h Handle) Instance() uint8 {
	return uint8((uint32(h) & instanceMask) >> instanceShift)
}

// String returns the handle in hexadecimal form, as it appears in logs.
func (h Handle) String() string {
	return fmt.Sprintf("0x%08x", uint32(h))
}
