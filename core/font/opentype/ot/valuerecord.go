package ot

import (
	"fmt"
	"math/bits"
	"strings"
)

// ValueFormat is a set of flags, stating which fields are present in a
// value record.
type ValueFormat uint16

// Fields of value records
const (
	XPlacement ValueFormat = 1 << iota // horizontal adjustment for placement
	YPlacement                         // vertical adjustment for placement
	XAdvance                           // horizontal adjustment for advance
	YAdvance                           // vertical adjustment for advance
	XPlaDevice                         // device table for horizontal placement
	YPlaDevice                         // device table for vertical placement
	XAdvDevice                         // device table for horizontal advance
	YAdvDevice                         // device table for vertical advance

	valueFormatReserved ValueFormat = 0xFF00
)

var valueFormatNames = []string{"XPlacement", "YPlacement", "XAdvance", "YAdvance",
	"XPlaDevice", "YPlaDevice", "XAdvDevice", "YAdvDevice"}

func (vf ValueFormat) String() string {
	if vf == 0 {
		return "0"
	}
	var b strings.Builder
	for i, name := range valueFormatNames {
		if vf&(1<<i) != 0 {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			b.WriteString(name)
		}
	}
	if vf&valueFormatReserved != 0 {
		fmt.Fprintf(&b, "|0x%04x", uint16(vf&valueFormatReserved))
	}
	return b.String()
}

// Size returns the number of bytes a value record of this format occupies.
func (vf ValueFormat) Size() int {
	return 2 * bits.OnesCount16(uint16(vf&^valueFormatReserved))
}

// Check returns an error if vf has reserved bits set.
func (vf ValueFormat) Check() error {
	if vf&valueFormatReserved != 0 {
		return Malformed("ValueFormat", uint16(vf), "reserved flag bits set")
	}
	return nil
}

// ValueRecord describes all the variables and values used to adjust the
// position of a glyph or set of glyphs.
//
// Format holds the set of fields the record carries explicitly. A field may be
// carried with a zero value, i.e. a record of format XAdvance with XAdvance = 0
// is different from a record of format 0 on the wire, but not in its effect.
type ValueRecord struct {
	Format     ValueFormat
	XPlacement int16
	YPlacement int16
	XAdvance   int16
	YAdvance   int16
	XPlaDevice *Device
	YPlaDevice *Device
	XAdvDevice *Device
	YAdvDevice *Device
}

func (vr ValueRecord) String() string {
	f := vr.MinimalFormat()
	if f == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	fields := []int16{vr.XPlacement, vr.YPlacement, vr.XAdvance, vr.YAdvance}
	for i, v := range fields {
		if f&(1<<i) != 0 {
			fmt.Fprintf(&b, " %s=%d", valueFormatNames[i], v)
		}
	}
	for i, d := range vr.devices() {
		if f&(XPlaDevice<<i) != 0 {
			fmt.Fprintf(&b, " %s=%s", valueFormatNames[4+i], d)
		}
	}
	b.WriteString(" }")
	return b.String()
}

func (vr ValueRecord) devices() [4]*Device {
	return [4]*Device{vr.XPlaDevice, vr.YPlaDevice, vr.XAdvDevice, vr.YAdvDevice}
}

// MinimalFormat returns the format containing exactly the fields of vr which
// differ from their neutral value (zero scalars, empty devices).
func (vr ValueRecord) MinimalFormat() ValueFormat {
	var f ValueFormat
	if vr.XPlacement != 0 {
		f |= XPlacement
	}
	if vr.YPlacement != 0 {
		f |= YPlacement
	}
	if vr.XAdvance != 0 {
		f |= XAdvance
	}
	if vr.YAdvance != 0 {
		f |= YAdvance
	}
	for i, d := range vr.devices() {
		if !d.IsEmpty() {
			f |= XPlaDevice << i
		}
	}
	return f
}

// Simplify returns a copy of vr which carries only non-neutral fields.
// Empty devices are dropped. Simplify is idempotent.
func (vr ValueRecord) Simplify() ValueRecord {
	if vr.XPlaDevice.IsEmpty() {
		vr.XPlaDevice = nil
	}
	if vr.YPlaDevice.IsEmpty() {
		vr.YPlaDevice = nil
	}
	if vr.XAdvDevice.IsEmpty() {
		vr.XAdvDevice = nil
	}
	if vr.YAdvDevice.IsEmpty() {
		vr.YAdvDevice = nil
	}
	vr.Format = vr.MinimalFormat()
	return vr
}

// HighestFormat returns the smallest format able to represent every
// non-neutral field of every record. For no records it returns 0.
func HighestFormat(records ...ValueRecord) ValueFormat {
	var f ValueFormat
	for _, vr := range records {
		f |= vr.MinimalFormat()
	}
	return f
}

// ReadValueRecord reads a value record of the given format at the current
// position of r. Device offsets are resolved against r.Base(), which has to
// be the start of the table containing the value record.
// The Format of the returned record is the format read.
func ReadValueRecord(r *Reader, format ValueFormat) (ValueRecord, error) {
	vr := ValueRecord{Format: format}
	if err := format.Check(); err != nil {
		return vr, err
	}
	scalars := []*int16{&vr.XPlacement, &vr.YPlacement, &vr.XAdvance, &vr.YAdvance}
	for i, field := range scalars {
		if format&(1<<i) == 0 {
			continue
		}
		v, err := r.I16()
		if err != nil {
			return vr, Truncated("ValueRecord", err)
		}
		*field = v
	}
	devices := []**Device{&vr.XPlaDevice, &vr.YPlaDevice, &vr.XAdvDevice, &vr.YAdvDevice}
	for i, field := range devices {
		if format&(XPlaDevice<<i) == 0 {
			continue
		}
		offset, err := r.U16()
		if err != nil {
			return vr, Truncated("ValueRecord", err)
		}
		if offset == 0 {
			continue
		}
		err = r.Follow(offset, func(r *Reader) error {
			d, err := ParseDevice(r)
			*field = d
			return err
		})
		if err != nil {
			return vr, Truncated("Device", err)
		}
	}
	return vr, nil
}

// Write appends vr to node n, using the given format. Fields of vr not
// contained in format are not written; fields contained in format but neutral
// in vr are written as zero or as NULL offsets. Device tables become child
// nodes of n.
func (vr ValueRecord) Write(n *Node, format ValueFormat) {
	scalars := []int16{vr.XPlacement, vr.YPlacement, vr.XAdvance, vr.YAdvance}
	for i, v := range scalars {
		if format&(1<<i) != 0 {
			n.I16(v)
		}
	}
	for i, d := range vr.devices() {
		if format&(XPlaDevice<<i) == 0 {
			continue
		}
		if d.IsEmpty() {
			n.Link16(nil)
		} else {
			n.Link16(d.Node())
		}
	}
}
