package checkpoints

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dot5enko/spvstore/spvstore"
)

// WriteBinary serializes blocks (ordered oldest-first) as a "CHECKPOINTS 1"
// archive with zero signatures, using the V1 (96-byte body) record layout —
// the format checkpoint-builder produces, since litecoinj's own builder
// tooling never signs the archives it writes locally.
func WriteBinary(w io.Writer, blocks []spvstore.StoredBlock) error {
	if len(blocks) == 0 {
		return ErrNoCheckpoints
	}

	if _, err := io.WriteString(w, binaryMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(0)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(blocks))); err != nil {
		return err
	}

	rec := make([]byte, archiveCodecV1.RecordWidth())
	for _, b := range blocks {
		if err := archiveCodecV1.Encode(b, rec); err != nil {
			return fmt.Errorf("checkpoints: encoding checkpoint at height %d: %w", b.Height, err)
		}
		if _, err := w.Write(rec); err != nil {
			return err
		}
	}

	return nil
}

// WriteTextual serializes blocks as a "TXT CHECKPOINTS 1" archive, the
// base64-lines sibling of WriteBinary.
func WriteTextual(w io.Writer, blocks []spvstore.StoredBlock) error {
	if len(blocks) == 0 {
		return ErrNoCheckpoints
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, textualMagic)
	fmt.Fprintln(bw, 0)
	fmt.Fprintln(bw, len(blocks))

	rec := make([]byte, archiveCodecV1.RecordWidth())
	for _, b := range blocks {
		if err := archiveCodecV1.Encode(b, rec); err != nil {
			return fmt.Errorf("checkpoints: encoding checkpoint at height %d: %w", b.Height, err)
		}
		fmt.Fprintln(bw, base64.RawStdEncoding.EncodeToString(rec))
	}

	return bw.Flush()
}
