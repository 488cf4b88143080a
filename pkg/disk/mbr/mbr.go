package mbr

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/masahiro331/go-mbr-parser/pkg/disk/parttype"
	"github.com/masahiro331/go-mbr-parser/pkg/disk/types"
	"golang.org/x/xerrors"
)

const (
	// SectorSize is the size of a classic boot sector.
	SectorSize = 512

	// Signature16 is the boot signature read as a little-endian uint16,
	// i.e. the raw bytes 0x55 0xAA at offsets 510-511.
	Signature16 = 0xAA55

	// Bootable is the conventional "active" boot indicator value.
	Bootable = 0x80

	bootCodeSize    = 446
	entrySize       = 16
	tableOffset     = 446
	signatureOffset = 510
)

/*
# Master Boot Record Spec
Master Boot Record always 512 bytes.
+------------------------+------+
|         Name           | Byte |
+------------------------+------+
| Boot Code              | 446  |
| Partition 1            | 16   |
| Partition 2            | 16   |
| Partition 3            | 16   |
| Partition 4            | 16   |
| Boot Record Signature  | 2    |
+------------------------+------+

# Partition Spec
+-------------------+------+----------------------------------------------------------+
|        Name       | Byte |                        Description                       |
+-------------------+------+----------------------------------------------------------+
| Boot Indicator    | 1    | 0x80 means active/bootable, 0x00 inactive                |
| Starting CHS      | 3    | Starting sector of the partition in Cylinder Head Sector |
| Partition Type    | 1    | Partition system the slot claims to contain              |
| Ending CHS        | 3    | Ending sector of the partition in Cylinder Head Sector   |
| Starting Sector   | 4    | First sector of the partition in absolute LBA            |
| Partition Size    | 4    | Partition size in sectors                                |
+-------------------+------+----------------------------------------------------------+

ref: https://www.ijais.org/research/volume10/number8/sadi-2016-ijais-451541.pdf
*/
var (
	InvalidSize      = xerrors.New("invalid master boot record size")
	InvalidSignature = xerrors.New("invalid master boot record signature")
)

type MasterBootRecord struct {
	BootCode   [446]byte
	Partitions [4]Partition
	Signature  uint16
}

type Partition struct {
	BootIndicator byte
	StartCHS      CHS
	Type          byte
	EndCHS        CHS
	StartSector   uint32
	Size          uint32

	index int
}

// Decode parses one 512-byte boot sector. It is all-or-nothing: a wrong
// buffer length or a missing 0x55 0xAA signature returns a classified
// error and no partial result. All four slots are decoded in table order,
// empty ones included.
func Decode(sector []byte) (*MasterBootRecord, error) {
	if len(sector) != SectorSize {
		return nil, xerrors.Errorf("sector must be %d bytes, got %d: %w", SectorSize, len(sector), InvalidSize)
	}

	signature := binary.LittleEndian.Uint16(sector[signatureOffset:])
	if signature != Signature16 {
		return nil, xerrors.Errorf("signature 0x%04X: %w", signature, InvalidSignature)
	}

	mbr := MasterBootRecord{Signature: signature}
	copy(mbr.BootCode[:], sector[:bootCodeSize])
	for i := 0; i < len(mbr.Partitions); i++ {
		offset := tableOffset + i*entrySize
		mbr.Partitions[i] = decodePartition(sector[offset:offset+entrySize], i)
	}

	return &mbr, nil
}

// decodePartition extracts one 16-byte table entry. Offsets are fixed by
// the on-disk format, never derived.
func decodePartition(entry []byte, index int) Partition {
	p := Partition{
		BootIndicator: entry[0],
		Type:          entry[4],
		StartSector:   binary.LittleEndian.Uint32(entry[8:12]),
		Size:          binary.LittleEndian.Uint32(entry[12:16]),
		index:         index,
	}
	copy(p.StartCHS[:], entry[1:4])
	copy(p.EndCHS[:], entry[5:8])
	return p
}

// NewMasterBootRecord reads exactly one sector from reader and decodes it.
// The read is a single contiguous 512-byte acquisition, never streamed.
func NewMasterBootRecord(reader io.Reader) (*MasterBootRecord, error) {
	buf := make([]byte, SectorSize)
	n, err := io.ReadFull(reader, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, xerrors.Errorf("short read of %d bytes: %w", n, InvalidSize)
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to read master boot record: %w", err)
	}
	return Decode(buf)
}

func (m *MasterBootRecord) GetPartitions() []types.Partition {
	ps := make([]types.Partition, 0, len(m.Partitions))
	for _, p := range m.Partitions {
		ps = append(ps, p)
	}
	return ps
}

// UsedPartitions returns the slots whose type code is not 0x00, in table
// order. Filtering for display belongs to presentation; this is for
// callers that walk the table.
func (m *MasterBootRecord) UsedPartitions() []Partition {
	var ps []Partition
	for _, p := range m.Partitions {
		if p.IsUsed() {
			ps = append(ps, p)
		}
	}
	return ps
}

// ExtendedPartitions returns the slots that anchor an extended partition
// chain.
func (m *MasterBootRecord) ExtendedPartitions() []Partition {
	var ps []Partition
	for _, p := range m.Partitions {
		if p.IsExtended() {
			ps = append(ps, p)
		}
	}
	return ps
}

// IsProtective reports whether slot 0 carries the GPT protective type
// 0xEE. Recognition only; GPT structures are not decoded here.
func (m *MasterBootRecord) IsProtective() bool {
	return m.Partitions[0].Type == 0xEE
}

func (p Partition) Name() string {
	return fmt.Sprintf("p%d", p.index+1)
}

// Bootable reports the conventional 0x80 flag. Other indicator values are
// surfaced as-is through BootIndicator.
func (p Partition) Bootable() bool {
	return p.BootIndicator == Bootable
}

func (p Partition) IsUsed() bool {
	return p.Type != 0x00
}

func (p Partition) IsExtended() bool {
	return p.Type == 0x05 || p.Type == 0x0F || p.Type == 0x85
}

func (p Partition) TypeLabel() string {
	return parttype.Resolve(p.Type)
}

func (p Partition) GetType() byte {
	return p.Type
}

func (p Partition) GetStartSector() uint64 {
	return uint64(p.StartSector)
}

func (p Partition) GetSize() uint64 {
	return uint64(p.Size)
}

// EndSector returns the first sector past the partition, 0 for empty
// slots.
func (p Partition) EndSector() uint64 {
	if !p.IsUsed() {
		return 0
	}
	return uint64(p.StartSector) + uint64(p.Size)
}

func (p Partition) StartGeometry() string {
	return p.StartCHS.String()
}

func (p Partition) EndGeometry() string {
	return p.EndCHS.String()
}
