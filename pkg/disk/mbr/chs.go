package mbr

import "fmt"

/*
# CHS packing
Cylinder/head/sector addresses are packed into 3 bytes per field.
+------+------+--------------------------------+
| Byte | Bits | Description                    |
+------+------+--------------------------------+
| 0    | 7:0  | Head                           |
| 1    | 5:0  | Sector (1-indexed on disk)     |
| 1    | 7:6  | Cylinder bits 9:8              |
| 2    | 7:0  | Cylinder bits 7:0              |
+------+------+--------------------------------+
*/
type CHS [3]byte

func (c CHS) Head() uint8 {
	return c[0]
}

// Sector returns the raw 6-bit sector field. The on-disk convention is
// 1-indexed and the value is surfaced without renormalizing.
func (c CHS) Sector() uint8 {
	return c[1] & 0x3F
}

// Cylinder returns the 10-bit cylinder number. The two high bits live in
// the top of the sector byte.
func (c CHS) Cylinder() uint16 {
	return uint16(c[1]&0xC0)<<2 | uint16(c[2])
}

func (c CHS) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Cylinder(), c.Head(), c.Sector())
}
