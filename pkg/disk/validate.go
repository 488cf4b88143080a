package disk

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/masahiro331/go-mbr-parser/pkg/disk/mbr"
)

// Validate runs advisory diagnostics over an already-decoded layout.
// Decoding never gates on these: a table can be structurally valid and
// still carry every finding below. All findings are accumulated; the
// result is nil when the table is clean.
func Validate(d *Disk) error {
	var result *multierror.Error

	bootable := 0
	used := d.Primary.UsedPartitions()
	for _, p := range d.Primary.Partitions {
		if p.BootIndicator != 0x00 && p.BootIndicator != mbr.Bootable {
			result = multierror.Append(result, fmt.Errorf(
				"%s: boot indicator 0x%02X is neither 0x00 nor 0x80", p.Name(), p.BootIndicator))
		}
		if p.Bootable() {
			bootable++
		}
		if !p.IsUsed() {
			continue
		}
		if p.Size == 0 {
			result = multierror.Append(result, fmt.Errorf(
				"%s: used slot has zero size", p.Name()))
		}
		if p.StartSector == 0 {
			result = multierror.Append(result, fmt.Errorf(
				"%s: used slot starts at sector 0 inside the boot sector", p.Name()))
		}
	}
	if bootable > 1 {
		result = multierror.Append(result, fmt.Errorf(
			"%d slots are marked bootable, at most one expected", bootable))
	}

	for i := 0; i < len(used); i++ {
		for j := i + 1; j < len(used); j++ {
			if overlaps(used[i], used[j]) {
				result = multierror.Append(result, fmt.Errorf(
					"%s and %s overlap", used[i].Name(), used[j].Name()))
			}
		}
	}

	return result.ErrorOrNil()
}

func overlaps(a, b mbr.Partition) bool {
	if a.Size == 0 || b.Size == 0 {
		return false
	}
	return a.GetStartSector() < b.EndSector() && b.GetStartSector() < a.EndSector()
}
