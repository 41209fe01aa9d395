package defaults

// Header tag and magic as written by the firmware's parameter subsystem.
const (
	// Tag is the ASCII marker at the start of the defaults block.
	Tag = "PARMDEF"

	// TagSlotSize is the space the tag occupies, including its NUL terminator.
	TagSlotSize = 8
)

// Magic is the constant that must follow the tag slot.
var Magic = [8]byte{0x55, 0x37, 0xf4, 0xa0, 0x38, 0x5d, 0x48, 0x5b}

// Field offsets relative to the start of the tag. These match the producer's
// struct layout and must not be derived from field sizes.
const (
	MagicOffset     = TagSlotSize
	MaxLengthOffset = 16
	LengthOffset    = 18
	PayloadOffset   = 20

	// HeaderSize is the number of bytes preceding the payload.
	HeaderSize = PayloadOffset
)
