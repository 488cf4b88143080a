// Package report renders a decoded partition layout. Display policy
// lives here: which slots are shown, how sizes are converted, how the
// structure serializes. The decoder never makes those calls.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/masahiro331/go-mbr-parser/pkg/disk"
	"github.com/masahiro331/go-mbr-parser/pkg/disk/types"
	"github.com/samber/lo"
	"golang.org/x/xerrors"
)

type Options struct {
	// ShowEmpty includes unused table slots in the output.
	ShowEmpty bool
	// SectorSize converts sector counts to bytes for display. It has no
	// influence on decoding, which is sector-size agnostic.
	SectorSize uint64
}

func (o Options) sectorSize() uint64 {
	if o.SectorSize == 0 {
		return 512
	}
	return o.SectorSize
}

func (o Options) visible(d *disk.Disk) []types.Partition {
	return lo.Filter(d.AllPartitions(), func(p types.Partition, _ int) bool {
		return o.ShowEmpty || p.IsUsed()
	})
}

// Text writes an aligned table of the partition layout.
func Text(w io.Writer, d *disk.Disk, opts Options) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "NAME\tBOOT\tTYPE\tLABEL\tSTART CHS\tEND CHS\tSTART LBA\tSECTORS\tSIZE\n")
	for _, p := range opts.visible(d) {
		boot := ""
		if p.Bootable() {
			boot = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t0x%02X\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.Name(), boot, p.GetType(), p.TypeLabel(),
			p.StartGeometry(), p.EndGeometry(),
			p.GetStartSector(), p.GetSize(),
			humanSize(p.GetSize()*opts.sectorSize()))
	}

	if err := tw.Flush(); err != nil {
		return xerrors.Errorf("failed to flush table: %w", err)
	}
	return nil
}

type jsonPartition struct {
	Name        string `json:"name"`
	Bootable    bool   `json:"bootable"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	StartCHS    string `json:"start_chs"`
	EndCHS      string `json:"end_chs"`
	StartSector uint64 `json:"start_sector"`
	Sectors     uint64 `json:"sectors"`
	SizeBytes   uint64 `json:"size_bytes"`
}

type jsonDisk struct {
	Signature  string          `json:"signature"`
	Protective bool            `json:"protective"`
	Partitions []jsonPartition `json:"partitions"`
}

// JSON writes the layout as one structural document.
func JSON(w io.Writer, d *disk.Disk, opts Options) error {
	doc := jsonDisk{
		Signature:  fmt.Sprintf("0x%04X", d.Primary.Signature),
		Protective: d.Primary.IsProtective(),
		Partitions: lo.Map(opts.visible(d), func(p types.Partition, _ int) jsonPartition {
			return jsonPartition{
				Name:        p.Name(),
				Bootable:    p.Bootable(),
				Type:        fmt.Sprintf("0x%02X", p.GetType()),
				Label:       p.TypeLabel(),
				StartCHS:    p.StartGeometry(),
				EndCHS:      p.EndGeometry(),
				StartSector: p.GetStartSector(),
				Sectors:     p.GetSize(),
				SizeBytes:   p.GetSize() * opts.sectorSize(),
			}
		}),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return xerrors.Errorf("failed to encode layout: %w", err)
	}
	return nil
}

// Bootcode writes the raw 446 boot-code bytes, uninterpreted.
func Bootcode(w io.Writer, d *disk.Disk) error {
	if _, err := w.Write(d.Primary.BootCode[:]); err != nil {
		return xerrors.Errorf("failed to write boot code: %w", err)
	}
	return nil
}

func humanSize(n uint64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
