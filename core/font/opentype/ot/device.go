package ot

import "fmt"

// Device tables hold size-specific adjustments of a positioning value, or, in
// variable fonts, a reference into the item variation store.
//
// Hinting devices store one signed delta per ppem size in the range
// StartSize…StartSize+len(Deltas)-1. On the wire the deltas are packed into
// uint16 words, using 2, 4 or 8 bits per delta (delta formats 1, 2, 3). The
// packing is chosen when writing and is not part of the model.
type Device struct {
	StartSize  uint16 // smallest ppem size to correct
	Deltas     []int8 // one delta per ppem size, starting at StartSize
	Variation  bool   // true for VariationIndex tables
	OuterIndex uint16 // delta-set outer index, if Variation is set
	InnerIndex uint16 // delta-set inner index, if Variation is set
}

// Delta formats of device tables
const (
	DeltaLocal2Bit     uint16 = 0x0001
	DeltaLocal4Bit     uint16 = 0x0002
	DeltaLocal8Bit     uint16 = 0x0003
	DeltaVariationIndx uint16 = 0x8000
)

// IsEmpty returns true for a device table which does not adjust anything,
// i.e. a nil device or a hinting device with zero deltas only.
func (d *Device) IsEmpty() bool {
	if d == nil {
		return true
	}
	if d.Variation {
		return false
	}
	for _, v := range d.Deltas {
		if v != 0 {
			return false
		}
	}
	return true
}

// DeltaFormat returns the narrowest packing which is able to hold all deltas.
func (d *Device) DeltaFormat() uint16 {
	if d.Variation {
		return DeltaVariationIndx
	}
	format := DeltaLocal2Bit
	for _, v := range d.Deltas {
		switch {
		case v < -8 || v > 7:
			return DeltaLocal8Bit
		case v < -2 || v > 1:
			format = DeltaLocal4Bit
		}
	}
	return format
}

func (d *Device) String() string {
	if d == nil {
		return "<no device>"
	}
	if d.Variation {
		return fmt.Sprintf("VariationIndex(%d,%d)", d.OuterIndex, d.InnerIndex)
	}
	return fmt.Sprintf("Device(%d:%v)", d.StartSize, d.Deltas)
}

// Node creates a table node for the device table.
func (d *Device) Node() *Node {
	n := NewNode("Device")
	format := d.DeltaFormat()
	if format == DeltaVariationIndx {
		return n.U16(d.OuterIndex).U16(d.InnerIndex).U16(format)
	}
	end := d.StartSize
	if len(d.Deltas) > 0 {
		end = d.StartSize + uint16(len(d.Deltas)) - 1
	}
	n.U16(d.StartSize).U16(end).U16(format)
	bits := 1 << format // 2, 4, 8
	perWord := 16 / bits
	mask := uint16(1)<<bits - 1
	var word uint16
	for i, v := range d.Deltas {
		shift := 16 - bits*(i%perWord+1)
		word |= (uint16(v) & mask) << shift
		if i%perWord == perWord-1 {
			n.U16(word)
			word = 0
		}
	}
	if len(d.Deltas)%perWord != 0 {
		n.U16(word)
	}
	return n
}

// ParseDevice reads a device or VariationIndex table at the current position
// of r.
func ParseDevice(r *Reader) (*Device, error) {
	hdr, err := r.U16Array(3)
	if err != nil {
		return nil, Truncated("Device", err)
	}
	start, end, format := hdr[0], hdr[1], hdr[2]
	switch format {
	case DeltaVariationIndx:
		return &Device{Variation: true, OuterIndex: start, InnerIndex: end}, nil
	case DeltaLocal2Bit, DeltaLocal4Bit, DeltaLocal8Bit:
	default:
		return nil, Malformed("Device", format, "")
	}
	if end < start {
		return nil, Malformed("Device", format,
			fmt.Sprintf("end size %d before start size %d", end, start))
	}
	count := int(end) - int(start) + 1
	bits := 1 << format
	perWord := 16 / bits
	words, err := r.U16Array((count + perWord - 1) / perWord)
	if err != nil {
		return nil, Truncated("Device", err)
	}
	d := &Device{StartSize: start, Deltas: make([]int8, count)}
	for i := range d.Deltas {
		shift := 16 - bits*(i%perWord+1)
		v := int16(words[i/perWord]<<(16-bits-shift)) >> (16 - bits) // sign extension
		d.Deltas[i] = int8(v)
	}
	tracer().Debugf("device table sizes %d…%d, format %d", start, end, format)
	return d, nil
}
