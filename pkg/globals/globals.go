// Package globals reads and writes the global data file which holds game
// metadata, stage collision data, and the script library functions.
package globals

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-restruct/restruct"
)

// HeaderSize is the size of the file header in bytes.
const HeaderSize = 0x18

// NumLibs is the number of library functions in the file.
const NumLibs = 376

// FileHeader is the header of a globals file. Partition offsets are relative
// to the end of the header.
type FileHeader struct {
	// MetadataOffset is the offset of the metadata partition. The metadata
	// partition always comes first, so this is zero in a valid file.
	MetadataOffset uint32 `struct:"uint32"`
	// MetadataSize is the size of the metadata partition.
	MetadataSize uint32 `struct:"uint32"`
	// CollisionOffset is the offset of the collision partition.
	CollisionOffset uint32 `struct:"uint32"`
	// CollisionSize is the size of the collision partition.
	CollisionSize uint32 `struct:"uint32"`
	// LibsOffset is the offset of the libs partition.
	LibsOffset uint32 `struct:"uint32"`
	// LibsSize is the size of the libs partition.
	LibsSize uint32 `struct:"uint32"`
}

// SetMetadata records the metadata partition's absolute start and end.
func (h *FileHeader) SetMetadata(start, end uint32) {
	h.MetadataOffset = start - HeaderSize
	h.MetadataSize = end - start
}

// SetCollision records the collision partition's absolute start and end.
func (h *FileHeader) SetCollision(start, end uint32) {
	h.CollisionOffset = start - HeaderSize
	h.CollisionSize = end - start
}

// SetLibs records the libs partition's absolute start and end.
func (h *FileHeader) SetLibs(start, end uint32) {
	h.LibsOffset = start - HeaderSize
	h.LibsSize = end - start
}

// Metadata returns the metadata partition's absolute offset and size.
func (h *FileHeader) Metadata() (offset, size uint32) {
	return h.MetadataOffset + HeaderSize, h.MetadataSize
}

// Collision returns the collision partition's absolute offset and size.
func (h *FileHeader) Collision() (offset, size uint32) {
	return h.CollisionOffset + HeaderSize, h.CollisionSize
}

// Libs returns the libs partition's absolute offset and size.
func (h *FileHeader) Libs() (offset, size uint32) {
	return h.LibsOffset + HeaderSize, h.LibsSize
}

// ReadHeader reads and validates a file header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	data := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read globals header: %w", err)
	}
	header := &FileHeader{}
	if err := restruct.Unpack(data, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("unpack globals header: %w", err)
	}
	// Can we reliably check anything else here?
	if header.MetadataOffset != 0 {
		return nil, fmt.Errorf("invalid globals header")
	}
	return header, nil
}

// Write writes the header.
func (h *FileHeader) Write(w io.Writer) error {
	data, err := restruct.Pack(binary.LittleEndian, h)
	if err != nil {
		return fmt.Errorf("pack globals header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write globals header: %w", err)
	}
	return nil
}

// LibTable is the table of entry point offsets for the script library
// functions. Offsets are relative to the start of the libs partition.
type LibTable struct {
	EntryPoints []uint32 `struct:"[376]uint32"`
}

// NewLibTable constructs an empty table with every entry point zeroed.
func NewLibTable() *LibTable {
	return &LibTable{EntryPoints: make([]uint32, NumLibs)}
}

// ReadLibTable reads a library entry point table.
func ReadLibTable(r io.Reader) (*LibTable, error) {
	data := make([]byte, NumLibs*4)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read lib table: %w", err)
	}
	table := &LibTable{}
	if err := restruct.Unpack(data, binary.LittleEndian, table); err != nil {
		return nil, fmt.Errorf("unpack lib table: %w", err)
	}
	return table, nil
}

// Write writes the table.
func (t *LibTable) Write(w io.Writer) error {
	if len(t.EntryPoints) != NumLibs {
		return fmt.Errorf("lib table must have %d entry points, got %d", NumLibs, len(t.EntryPoints))
	}
	data, err := restruct.Pack(binary.LittleEndian, t)
	if err != nil {
		return fmt.Errorf("pack lib table: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write lib table: %w", err)
	}
	return nil
}
