package ot

// Reading bytes from a font's binary representation

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data.
// We use it throughout this module to navigate a table's binary data.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// --- Read cursor -----------------------------------------------------------

// Reader is a read cursor over the binary data of an OpenType table.
//
// Offsets in OpenType are counted from the start of an enclosing table.
// Reader therefore keeps a stack of table base positions. Table parsers
// call Push when they start reading a table containing offsets and Pop when
// they are done. Follow resolves an offset against the current base and
// temporarily moves the cursor to the linked table.
//
// A Reader must not be shared between goroutines.
type Reader struct {
	data  binarySegm
	pos   int
	bases []int
}

// NewReader creates a read cursor positioned at the start of b. The base of
// the outermost table is position 0.
func NewReader(b []byte) *Reader {
	return &Reader{data: b, bases: make([]int, 0, 8)}
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of bytes from the current position to the end
// of data.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Push makes the current position the base for subsequent offsets.
func (r *Reader) Push() {
	r.bases = append(r.bases, r.pos)
}

// Pop restores the base position which was active before the last Push.
func (r *Reader) Pop() {
	if len(r.bases) == 0 {
		tracer().Errorf("reader: pop on empty base stack")
		return
	}
	r.bases = r.bases[:len(r.bases)-1]
}

// Base returns the start of the enclosing table, i.e. the position offsets
// are counted from.
func (r *Reader) Base() int {
	if len(r.bases) == 0 {
		return 0
	}
	return r.bases[len(r.bases)-1]
}

// Peek16 returns the uint16 at the current position without consuming it.
func (r *Reader) Peek16() (uint16, error) {
	return r.data.u16(r.pos)
}

// U16 reads an uint16 and advances the cursor.
func (r *Reader) U16() (uint16, error) {
	n, err := r.data.u16(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 2
	return n, nil
}

// I16 reads an int16 and advances the cursor.
func (r *Reader) I16() (int16, error) {
	n, err := r.U16()
	return int16(n), err
}

// U32 reads an uint32 and advances the cursor.
func (r *Reader) U32() (uint32, error) {
	n, err := r.data.u32(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 4
	return n, nil
}

// Glyph reads a glyph index and advances the cursor.
func (r *Reader) Glyph() (GlyphIndex, error) {
	n, err := r.U16()
	return GlyphIndex(n), err
}

// U16Array reads n consecutive uint16 values.
func (r *Reader) U16Array(n int) ([]uint16, error) {
	if _, err := r.data.view(r.pos, 2*n); err != nil && n > 0 {
		return nil, err
	}
	a := make([]uint16, n)
	for i := range a {
		a[i] = u16(r.data[r.pos:])
		r.pos += 2
	}
	return a, nil
}

// Glyphs reads n consecutive glyph indices.
func (r *Reader) Glyphs(n int) ([]GlyphIndex, error) {
	a, err := r.U16Array(n)
	if err != nil {
		return nil, err
	}
	glyphs := make([]GlyphIndex, len(a))
	for i, g := range a {
		glyphs[i] = GlyphIndex(g)
	}
	return glyphs, nil
}

// Counted reads an uint16 count, followed by count uint16 values.
func (r *Reader) Counted() ([]uint16, error) {
	n, err := r.U16()
	if err != nil {
		return nil, err
	}
	return r.U16Array(int(n))
}

// Follow moves the cursor to the table at offset from the current base and
// calls f. Afterwards the cursor position is restored, so reading of the
// enclosing table may continue where it left off.
func (r *Reader) Follow(offset uint16, f func(*Reader) error) error {
	return r.follow(r.Base()+int(offset), f)
}

// Follow32 is like Follow, but for 32-bit offsets.
func (r *Reader) Follow32(offset uint32, f func(*Reader) error) error {
	if uint64(offset) > uint64(len(r.data)) {
		return errBufferBounds
	}
	return r.follow(r.Base()+int(offset), f)
}

func (r *Reader) follow(at int, f func(*Reader) error) error {
	if at < 0 || at >= len(r.data) {
		tracer().Debugf("reader: link to %d out of table bounds (size %d)", at, len(r.data))
		return errBufferBounds
	}
	saved, depth := r.pos, len(r.bases)
	r.pos = at
	err := f(r)
	r.pos = saved
	if len(r.bases) > depth { // unbalanced Push/Pop in f
		r.bases = r.bases[:depth]
	}
	return err
}
