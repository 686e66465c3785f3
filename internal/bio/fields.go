package bio

// FieldReader reads a sequence of fixed-width fields and remembers the
// first error. Once an error is recorded every further read returns zero,
// so a syntax structure can be parsed straight through and checked once.
type FieldReader struct {
	r   *Reader
	err error
}

// NewFieldReader wraps r.
func NewFieldReader(r *Reader) *FieldReader {
	return &FieldReader{r: r}
}

// Bits reads an n-bit field.
func (f *FieldReader) Bits(n uint) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadBits(n)
	f.err = err
	return v
}

// U8 reads an n-bit field (n <= 8) as a uint8.
func (f *FieldReader) U8(n uint) uint8 { return uint8(f.Bits(n)) }

// U16 reads an n-bit field (n <= 16) as a uint16.
func (f *FieldReader) U16(n uint) uint16 { return uint16(f.Bits(n)) }

// U32 reads an n-bit field (n <= 32) as a uint32.
func (f *FieldReader) U32(n uint) uint32 { return uint32(f.Bits(n)) }

// Flag reads a one-bit flag.
func (f *FieldReader) Flag() bool { return f.Bits(1) == 1 }

// CString reads a NUL-terminated string.
func (f *FieldReader) CString() string {
	if f.err != nil {
		return ""
	}
	s, err := f.r.ReadString()
	f.err = err
	return s
}

// U7 reads a U7 varint.
func (f *FieldReader) U7() uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadU7()
	f.err = err
	return v
}

// Bytes reads n whole bytes.
func (f *FieldReader) Bytes(n int) []byte {
	if f.err != nil {
		return nil
	}
	p := make([]byte, n)
	if err := f.r.ReadBytes(p); err != nil {
		f.err = err
		return nil
	}
	return p
}

// Align skips to the next byte boundary.
func (f *FieldReader) Align() {
	if f.err == nil {
		f.r.Align()
	}
}

// Fail records err unless an earlier error is already held.
func (f *FieldReader) Fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Err returns the first error encountered.
func (f *FieldReader) Err() error { return f.err }

// FieldWriter is the writing counterpart of FieldReader.
type FieldWriter struct {
	w   *Writer
	err error
}

// NewFieldWriter wraps w.
func NewFieldWriter(w *Writer) *FieldWriter {
	return &FieldWriter{w: w}
}

// Bits writes the low n bits of v.
func (f *FieldWriter) Bits(v uint64, n uint) {
	if f.err == nil {
		f.err = f.w.WriteBits(v, n)
	}
}

// Flag writes a one-bit flag.
func (f *FieldWriter) Flag(b bool) {
	if f.err == nil {
		f.err = f.w.WriteFlag(b)
	}
}

// CString writes s followed by a NUL byte.
func (f *FieldWriter) CString(s string) {
	if f.err == nil {
		f.err = f.w.WriteString(s)
	}
}

// U7 writes v as a U7 varint.
func (f *FieldWriter) U7(v uint64) {
	if f.err == nil {
		f.err = f.w.WriteU7(v)
	}
}

// Bytes writes p.
func (f *FieldWriter) Bytes(p []byte) {
	if f.err == nil {
		f.err = f.w.WriteBytes(p)
	}
}

// Align pads with zero bits to the next byte boundary.
func (f *FieldWriter) Align() {
	if f.err == nil {
		f.err = f.w.Flush()
	}
}

// Fail records err unless an earlier error is already held.
func (f *FieldWriter) Fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Err returns the first error encountered.
func (f *FieldWriter) Err() error { return f.err }
