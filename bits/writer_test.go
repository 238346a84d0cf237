package bits

import (
	"encoding/binary"
	"testing"
)

func TestWriterPanicsWithoutGrowing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when writing past a fixed buffer")
		}
	}()

	w := NewEncodeBuffer(make([]byte, 2), binary.BigEndian)
	w.PutUint32(1)
}

func TestWriterGrows(t *testing.T) {
	w := NewEncodeBuffer(make([]byte, 1), binary.BigEndian)
	w.EnableGrowing()

	w.PutUint64(0x0102030405060708)
	if len(w.Bytes()) != 8 {
		t.Fatalf("expected 8 bytes written, got %d", len(w.Bytes()))
	}
}

func TestWriterEmptyBytesAdvancesPosition(t *testing.T) {
	w := NewEncodeBuffer(make([]byte, 8), binary.BigEndian)
	w.WriteByte(1)
	w.EmptyBytes(4)
	w.WriteByte(2)

	b := w.Bytes()
	if len(b) != 6 || b[0] != 1 || b[5] != 2 {
		t.Fatalf("unexpected buffer contents: %v", b)
	}
}

func TestWriterReset(t *testing.T) {
	w := NewEncodeBuffer(make([]byte, 4), binary.BigEndian)
	w.PutInt32(7)
	if w.Position() != 4 {
		t.Fatalf("position = %d", w.Position())
	}
	w.Reset()
	if w.Position() != 0 {
		t.Fatalf("position after reset = %d", w.Position())
	}
}
