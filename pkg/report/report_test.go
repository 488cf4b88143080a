package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/masahiro331/go-mbr-parser/pkg/disk"
	"github.com/masahiro331/go-mbr-parser/pkg/report"
	diskimage "github.com/masahiro331/go-mbr-parser/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodedDisk(t *testing.T, sector []byte) *disk.Disk {
	t.Helper()
	image := diskimage.Image(t, 4, map[uint64][]byte{0: sector})
	d, err := disk.Inspect(image, disk.Options{PrimaryOnly: true})
	require.NoError(t, err)
	return d
}

func twoPartitionDisk(t *testing.T) *disk.Disk {
	return decodedDisk(t, diskimage.BootSector(t,
		diskimage.PartitionSpec{Boot: 0x80, Type: 0x83, Start: 2048, Sectors: 4096},
		diskimage.PartitionSpec{Type: 0x07, Start: 8192, Sectors: 2048},
	))
}

func TestTextHidesEmptySlots(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Text(&buf, twoPartitionDisk(t), report.Options{}))

	out := buf.String()
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "Linux")
	assert.Contains(t, out, "p2")
	assert.Contains(t, out, "NTFS")
	assert.NotContains(t, out, "p3")
	assert.NotContains(t, out, "Empty")
	// header + two rows
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 3)
}

func TestTextShowEmpty(t *testing.T) {
	var buf bytes.Buffer
	opts := report.Options{ShowEmpty: true}
	require.NoError(t, report.Text(&buf, twoPartitionDisk(t), opts))

	out := buf.String()
	for _, name := range []string{"p1", "p2", "p3", "p4"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Empty")
}

func TestTextBootMarker(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Text(&buf, twoPartitionDisk(t), report.Options{}))

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines[1], "*")
	assert.NotContains(t, lines[2], "*")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.JSON(&buf, twoPartitionDisk(t), report.Options{}))

	var doc struct {
		Signature  string `json:"signature"`
		Protective bool   `json:"protective"`
		Partitions []struct {
			Name        string `json:"name"`
			Bootable    bool   `json:"bootable"`
			Type        string `json:"type"`
			Label       string `json:"label"`
			StartSector uint64 `json:"start_sector"`
			Sectors     uint64 `json:"sectors"`
			SizeBytes   uint64 `json:"size_bytes"`
		} `json:"partitions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "0xAA55", doc.Signature)
	assert.False(t, doc.Protective)
	require.Len(t, doc.Partitions, 2)

	p := doc.Partitions[0]
	assert.Equal(t, "p1", p.Name)
	assert.True(t, p.Bootable)
	assert.Equal(t, "0x83", p.Type)
	assert.Equal(t, "Linux", p.Label)
	assert.Equal(t, uint64(2048), p.StartSector)
	assert.Equal(t, uint64(4096), p.Sectors)
	assert.Equal(t, uint64(4096*512), p.SizeBytes)
}

func TestJSONSectorSizeConversion(t *testing.T) {
	var buf bytes.Buffer
	opts := report.Options{SectorSize: 4096}
	require.NoError(t, report.JSON(&buf, twoPartitionDisk(t), opts))

	var doc struct {
		Partitions []struct {
			SizeBytes uint64 `json:"size_bytes"`
		} `json:"partitions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.NotEmpty(t, doc.Partitions)
	assert.Equal(t, uint64(4096*4096), doc.Partitions[0].SizeBytes)
}

func TestBootcode(t *testing.T) {
	sector := diskimage.BootSector(t)
	for i := 0; i < 446; i++ {
		sector[i] = byte(i % 251)
	}
	d := decodedDisk(t, sector)

	var buf bytes.Buffer
	require.NoError(t, report.Bootcode(&buf, d))
	assert.Equal(t, sector[:446], buf.Bytes())
}
