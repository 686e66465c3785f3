package bio

import (
	"bytes"
	"errors"
	"testing"
)

func TestFieldWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	f := NewFieldWriter(NewWriter(&buf))
	f.Bits(5, 4)
	f.Flag(true)
	f.Bits(3, 3)
	f.CString("ab")
	f.Bytes([]byte{0xCA})
	f.U7(300)
	f.Bits(1, 2)
	f.Align()
	if err := f.Err(); err != nil {
		t.Fatalf("FieldWriter error: %v", err)
	}

	data := buf.Bytes()
	want := []byte{0x5B, 'a', 'b', 0, 0xCA}
	if !bytes.Equal(data[:len(want)], want) {
		t.Errorf("leading bytes = %x, want %x", data[:len(want)], want)
	}

	r := NewFieldReader(NewReader(bytes.NewReader(data)))
	if v := r.U8(4); v != 5 {
		t.Errorf("U8(4) = %d, want 5", v)
	}
	if !r.Flag() {
		t.Error("Flag() = false, want true")
	}
	if v := r.U16(3); v != 3 {
		t.Errorf("U16(3) = %d, want 3", v)
	}
	if s := r.CString(); s != "ab" {
		t.Errorf("CString() = %q, want ab", s)
	}
	if p := r.Bytes(1); !bytes.Equal(p, []byte{0xCA}) {
		t.Errorf("Bytes(1) = %x, want ca", p)
	}
	if v := r.U7(); v != 300 {
		t.Errorf("U7() = %d, want 300", v)
	}
	if v := r.U32(2); v != 1 {
		t.Errorf("U32(2) = %d, want 1", v)
	}
	r.Align()
	if err := r.Err(); err != nil {
		t.Errorf("FieldReader error: %v", err)
	}
}

func TestFieldReader_StickyError(t *testing.T) {
	r := NewFieldReader(NewReader(bytes.NewReader([]byte{0xFF})))
	if v := r.Bits(8); v != 0xFF {
		t.Errorf("Bits(8) = %#x, want 0xff", v)
	}
	r.Bits(8)
	if r.Err() == nil {
		t.Fatal("reading past the end recorded no error")
	}
	if v := r.Bits(1); v != 0 {
		t.Errorf("Bits(1) after error = %d, want 0", v)
	}
	if s := r.CString(); s != "" {
		t.Errorf("CString() after error = %q", s)
	}
	if p := r.Bytes(2); p != nil {
		t.Errorf("Bytes() after error = %x", p)
	}
}

func TestField_Fail(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	r := NewFieldReader(NewReader(bytes.NewReader(nil)))
	r.Fail(first)
	r.Fail(second)
	if !errors.Is(r.Err(), first) {
		t.Errorf("FieldReader.Err() = %v, want first", r.Err())
	}

	w := NewFieldWriter(NewWriter(&errWriter{err: second}))
	w.Bits(0xAB, 8)
	w.Fail(first)
	if !errors.Is(w.Err(), second) {
		t.Errorf("FieldWriter.Err() = %v, want second", w.Err())
	}
}
