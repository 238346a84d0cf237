package spvstore

import (
	"math/big"
	"testing"

	"github.com/dot5enko/spvstore/internal/bitcoin"
)

func sampleHeader(nonce uint32) bitcoin.Header {
	var h bitcoin.Header
	h.Version = 1
	h.TimeSeconds = 1700000000
	h.Bits = 0x1d00ffff
	h.Nonce = nonce
	return h
}

func TestCodecV1RoundTrip(t *testing.T) {
	b := StoredBlock{
		Header:    sampleHeader(7),
		ChainWork: big.NewInt(123456789),
		Height:    42,
	}

	buf := make([]byte, CodecV1.RecordWidth())
	if err := CodecV1.Encode(b, buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := CodecV1.Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Height != b.Height || got.ChainWork.Cmp(b.ChainWork) != 0 || got.Header != b.Header {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, b)
	}
}

func TestCodecV2RoundTripLargeWork(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 200) // exceeds V1's 96-bit ceiling
	b := StoredBlock{Header: sampleHeader(1), ChainWork: huge, Height: 1000}

	buf := make([]byte, CodecV2.RecordWidth())
	if err := CodecV2.Encode(b, buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := CodecV2.Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ChainWork.Cmp(huge) != 0 {
		t.Fatalf("chain work mismatch: got %s, want %s", got.ChainWork, huge)
	}
}

func TestCodecV1OverflowsOnLargeWork(t *testing.T) {
	tooLarge := new(big.Int).Lsh(big.NewInt(1), 96) // 2^96, one past V1's ceiling
	b := StoredBlock{Header: sampleHeader(0), ChainWork: tooLarge, Height: 0}

	buf := make([]byte, CodecV1.RecordWidth())
	err := CodecV1.Encode(b, buf)
	if err != ErrWorkOverflow {
		t.Fatalf("expected ErrWorkOverflow, got %v", err)
	}
}

func TestCodecRejectsNegativeWork(t *testing.T) {
	b := StoredBlock{Header: sampleHeader(0), ChainWork: big.NewInt(-1), Height: 0}
	buf := make([]byte, CodecV2.RecordWidth())
	if err := CodecV2.Encode(b, buf); err == nil {
		t.Fatal("expected an error encoding negative chain work")
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := CodecV2.Decode(make([]byte, 4)); err == nil {
		t.Fatal("expected short-record error")
	}
}

func TestRecordWidths(t *testing.T) {
	if CodecV1.RecordWidth() != 96 {
		t.Fatalf("V1 body width = %d, want 96", CodecV1.RecordWidth())
	}
	if CodecV2.RecordWidth() != 116 {
		t.Fatalf("V2 body width = %d, want 116", CodecV2.RecordWidth())
	}
	if RecordWidthV1 != 128 {
		t.Fatalf("V1 slot width = %d, want 128", RecordWidthV1)
	}
	if RecordWidthV2 != 148 {
		t.Fatalf("V2 slot width = %d, want 148", RecordWidthV2)
	}
}
