// Package testing builds synthetic disk images for tests. Sectors are
// assembled in memory and handed back behind a seeker, so tests never
// touch real devices.
package testing

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

const sectorSize = 512

// PartitionSpec describes one 16-byte table entry to place in a built
// sector.
type PartitionSpec struct {
	Boot     byte
	StartCHS [3]byte
	Type     byte
	EndCHS   [3]byte
	Start    uint32
	Sectors  uint32
}

// BootSector returns a 512-byte sector carrying a valid boot signature
// and the given entries in table slots 0..3. Missing slots stay zeroed.
func BootSector(t *testing.T, entries ...PartitionSpec) []byte {
	t.Helper()
	require.LessOrEqual(t, len(entries), 4, "a partition table has 4 slots")

	sector := make([]byte, sectorSize)
	for i, e := range entries {
		w := bytewriter.New(sector[446+i*16 : 446+(i+1)*16])
		require.NoError(t, binary.Write(w, binary.LittleEndian, e.Boot))
		require.NoError(t, binary.Write(w, binary.LittleEndian, e.StartCHS))
		require.NoError(t, binary.Write(w, binary.LittleEndian, e.Type))
		require.NoError(t, binary.Write(w, binary.LittleEndian, e.EndCHS))
		require.NoError(t, binary.Write(w, binary.LittleEndian, e.Start))
		require.NoError(t, binary.Write(w, binary.LittleEndian, e.Sectors))
	}
	sector[510] = 0x55
	sector[511] = 0xAA
	return sector
}

// Image assembles an in-memory image of totalSectors sectors, placing
// each given sector at its number, and returns a seekable stream over
// it.
func Image(t *testing.T, totalSectors uint64, sectors map[uint64][]byte) io.ReadWriteSeeker {
	t.Helper()

	image := make([]byte, totalSectors*sectorSize)
	for number, sector := range sectors {
		require.Len(t, sector, sectorSize)
		require.Less(t, number, totalSectors, "sector beyond image end")
		copy(image[number*sectorSize:], sector)
	}
	return bytesextra.NewReadWriteSeeker(image)
}
