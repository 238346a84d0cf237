package bitcoin

import "testing"

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	h := Header{
		Version:     2,
		TimeSeconds: 1234567890,
		Bits:        0x1d00ffff,
		Nonce:       42,
	}
	for i := range h.PrevBlockHash {
		h.PrevBlockHash[i] = byte(i)
	}
	for i := range h.MerkleRoot {
		h.MerkleRoot[i] = byte(255 - i)
	}

	raw := h.Serialize()
	if len(raw) != HeaderSize {
		t.Fatalf("serialized header has wrong length: %d", len(raw))
	}

	decoded, err := DeserializeHeader(raw[:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, h)
	}
}

func TestDeserializeHeaderShort(t *testing.T) {
	_, err := DeserializeHeader(make([]byte, 10))
	if err != ErrShortHeader {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestHashIsDeterministicAndSensitiveToNonce(t *testing.T) {
	h1 := Header{Nonce: 1}
	h2 := Header{Nonce: 2}

	if h1.Hash() == h2.Hash() {
		t.Fatal("expected distinct hashes for distinct headers")
	}

	if h1.Hash() != h1.Hash() {
		t.Fatal("expected deterministic hash")
	}
}
