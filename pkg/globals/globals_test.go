package globals

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	header := &FileHeader{}
	header.SetMetadata(0x18, 0x100)
	header.SetCollision(0x100, 0x300)
	header.SetLibs(0x300, 0x1000)

	var buf bytes.Buffer
	if err := header.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != HeaderSize {
		t.Fatalf("header is %d bytes, want %d", buf.Len(), HeaderSize)
	}

	read, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if *read != *header {
		t.Errorf("ReadHeader() = %+v, want %+v", read, header)
	}
}

func TestReadHeaderInvalid(t *testing.T) {
	header := &FileHeader{MetadataOffset: 4}
	var buf bytes.Buffer
	if err := header.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := ReadHeader(&buf); err == nil {
		t.Error("ReadHeader should reject a nonzero metadata offset")
	}
}

func TestLibTableRoundTrip(t *testing.T) {
	table := NewLibTable()
	for i := range table.EntryPoints {
		table.EntryPoints[i] = uint32(i * 8)
	}

	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != NumLibs*4 {
		t.Fatalf("table is %d bytes, want %d", buf.Len(), NumLibs*4)
	}

	read, err := ReadLibTable(&buf)
	if err != nil {
		t.Fatalf("ReadLibTable: %v", err)
	}
	for i, offset := range read.EntryPoints {
		if offset != uint32(i*8) {
			t.Fatalf("EntryPoints[%d] = %d, want %d", i, offset, i*8)
		}
	}
}

func TestLibTableWrongSize(t *testing.T) {
	table := &LibTable{EntryPoints: make([]uint32, 3)}
	var buf bytes.Buffer
	if err := table.Write(&buf); err == nil {
		t.Error("Write should reject a short table")
	}
}
