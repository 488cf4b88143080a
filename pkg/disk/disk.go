package disk

import (
	"fmt"
	"io"

	"github.com/masahiro331/go-mbr-parser/pkg/disk/mbr"
	"github.com/masahiro331/go-mbr-parser/pkg/disk/types"
	"golang.org/x/xerrors"
)

// maxChainLength bounds the number of extended boot records followed per
// chain. Real disks stay far below this; anything longer is corrupt.
const maxChainLength = 128

var (
	ChainLoop    = xerrors.New("extended partition chain loops")
	ChainTooLong = xerrors.New("extended partition chain too long")
)

type Options struct {
	// PrimaryOnly stops after sector 0: extended partition chains are
	// recognized but not followed.
	PrimaryOnly bool
}

// Disk is the decoded partition layout of one device or image: the
// primary table at sector 0 plus every extended boot record chain behind
// it.
type Disk struct {
	Primary *mbr.MasterBootRecord
	Chains  []Chain
}

// Chain is one walked extended partition: the primary slot that anchors
// it, its absolute start sector, and the extended boot records in walk
// order.
type Chain struct {
	Slot    int
	Start   uint64
	Records []Record
}

// Record is one extended boot record together with the absolute sector it
// was read from. Logical entries inside it hold sectors relative to that
// position.
type Record struct {
	Sector uint64
	Table  *mbr.MasterBootRecord
}

// Logical is a partition found inside an extended chain. Start sectors
// are resolved to absolute disk positions during the walk.
type Logical struct {
	Number        int
	AbsoluteStart uint64
	Entry         mbr.Partition
}

// Inspect decodes the partition layout of rs. Sector 0 is decoded first;
// unless opts.PrimaryOnly is set, every extended primary slot is followed
// through its chain of extended boot records.
//
// Extended chain addressing: an extended entry inside an EBR holds a
// sector relative to the primary extended partition, while a logical
// entry holds a sector relative to the EBR carrying it.
func Inspect(rs io.ReadSeeker, opts Options) (*Disk, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, xerrors.Errorf("failed to seek to sector 0: %w", err)
	}
	primary, err := mbr.NewMasterBootRecord(rs)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode sector 0: %w", err)
	}

	d := Disk{Primary: primary}
	if opts.PrimaryOnly {
		return &d, nil
	}

	for slot, p := range primary.Partitions {
		if !p.IsExtended() {
			continue
		}
		chain, err := walkChain(rs, slot, p.GetStartSector())
		if err != nil {
			return nil, xerrors.Errorf("failed to walk extended chain at slot %d: %w", slot, err)
		}
		d.Chains = append(d.Chains, chain)
	}
	return &d, nil
}

// walkChain follows one extended partition starting at absolute sector
// start. The first EBR sits at the extended partition itself; each
// further hop is the EBR's extended entry, relative to start.
func walkChain(rs io.ReadSeeker, slot int, start uint64) (Chain, error) {
	chain := Chain{Slot: slot, Start: start}
	visited := make(map[uint64]struct{})

	next, more := uint64(0), true
	for more {
		if len(chain.Records) >= maxChainLength {
			return Chain{}, xerrors.Errorf("gave up after %d records: %w", maxChainLength, ChainTooLong)
		}
		sector := start + next
		if _, ok := visited[sector]; ok {
			return Chain{}, xerrors.Errorf("sector %d visited twice: %w", sector, ChainLoop)
		}
		visited[sector] = struct{}{}

		if _, err := rs.Seek(int64(sector)*mbr.SectorSize, io.SeekStart); err != nil {
			return Chain{}, xerrors.Errorf("failed to seek to sector %d: %w", sector, err)
		}
		table, err := mbr.NewMasterBootRecord(rs)
		if err != nil {
			return Chain{}, xerrors.Errorf("failed to decode extended boot record at sector %d: %w", sector, err)
		}
		chain.Records = append(chain.Records, Record{Sector: sector, Table: table})

		more = false
		for _, p := range table.Partitions {
			if p.IsExtended() && p.IsUsed() {
				next, more = p.GetStartSector(), true
				break
			}
		}
	}
	return chain, nil
}

// LogicalPartitions flattens every chain into logical partitions with
// absolute start sectors, numbered from 5 the way OS partition naming
// does.
func (d *Disk) LogicalPartitions() []Logical {
	var ls []Logical
	number := 5
	for _, chain := range d.Chains {
		for _, rec := range chain.Records {
			for _, p := range rec.Table.Partitions {
				if !p.IsUsed() || p.IsExtended() {
					continue
				}
				ls = append(ls, Logical{
					Number:        number,
					AbsoluteStart: rec.Sector + p.GetStartSector(),
					Entry:         p,
				})
				number++
			}
		}
	}
	return ls
}

// AllPartitions returns the four primary slots followed by the logical
// partitions, table and walk order preserved. Nothing is re-sorted.
func (d *Disk) AllPartitions() []types.Partition {
	ps := d.Primary.GetPartitions()
	for _, l := range d.LogicalPartitions() {
		ps = append(ps, l)
	}
	return ps
}

func (l Logical) Name() string {
	return fmt.Sprintf("p%d", l.Number)
}

func (l Logical) Bootable() bool {
	return l.Entry.Bootable()
}

func (l Logical) IsUsed() bool {
	return l.Entry.IsUsed()
}

func (l Logical) IsExtended() bool {
	return l.Entry.IsExtended()
}

// GetStartSector returns the absolute disk sector, not the EBR-relative
// value stored on disk.
func (l Logical) GetStartSector() uint64 {
	return l.AbsoluteStart
}

func (l Logical) GetSize() uint64 {
	return l.Entry.GetSize()
}

func (l Logical) GetType() byte {
	return l.Entry.GetType()
}

func (l Logical) TypeLabel() string {
	return l.Entry.TypeLabel()
}

func (l Logical) StartGeometry() string {
	return l.Entry.StartGeometry()
}

func (l Logical) EndGeometry() string {
	return l.Entry.EndGeometry()
}
