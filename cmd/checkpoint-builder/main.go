// Command checkpoint-builder assembles a checkpoint archive (spec.md §8/§9)
// from a plain-text description of blocks: one line per checkpoint,
// comma-separated "height,timeSecs,bits,nonce,version,chainWork,prevHashHex,
// merkleRootHex". It never signs what it writes — signing is an operator
// step performed on the archive afterward, out of scope here — so it always
// emits a zero-signature archive.
package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/dot5enko/spvstore/spvstore"
	"github.com/dot5enko/spvstore/checkpoints"
	"github.com/dot5enko/spvstore/compression"
	"github.com/dot5enko/spvstore/internal/bitcoin"
)

func parseLine(line string) (spvstore.StoredBlock, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 8 {
		return spvstore.StoredBlock{}, fmt.Errorf("want 8 comma-separated fields, got %d", len(fields))
	}

	height, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 32)
	if err != nil {
		return spvstore.StoredBlock{}, fmt.Errorf("height: %w", err)
	}
	timeSecs, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
	if err != nil {
		return spvstore.StoredBlock{}, fmt.Errorf("timeSecs: %w", err)
	}
	bits, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return spvstore.StoredBlock{}, fmt.Errorf("bits: %w", err)
	}
	nonce, err := strconv.ParseUint(strings.TrimSpace(fields[3]), 10, 32)
	if err != nil {
		return spvstore.StoredBlock{}, fmt.Errorf("nonce: %w", err)
	}
	version, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 32)
	if err != nil {
		return spvstore.StoredBlock{}, fmt.Errorf("version: %w", err)
	}
	chainWork, ok := new(big.Int).SetString(strings.TrimSpace(fields[5]), 10)
	if !ok {
		return spvstore.StoredBlock{}, fmt.Errorf("chainWork: not a decimal integer")
	}
	prevHash, err := hex.DecodeString(strings.TrimSpace(fields[6]))
	if err != nil || len(prevHash) != 32 {
		return spvstore.StoredBlock{}, fmt.Errorf("prevHashHex: %w", err)
	}
	merkleRoot, err := hex.DecodeString(strings.TrimSpace(fields[7]))
	if err != nil || len(merkleRoot) != 32 {
		return spvstore.StoredBlock{}, fmt.Errorf("merkleRootHex: %w", err)
	}

	var h bitcoin.Header
	h.Version = int32(version)
	h.TimeSeconds = uint32(timeSecs)
	h.Bits = uint32(bits)
	h.Nonce = uint32(nonce)
	copy(h.PrevBlockHash[:], prevHash)
	copy(h.MerkleRoot[:], merkleRoot)

	return spvstore.StoredBlock{Header: h, ChainWork: chainWork, Height: int32(height)}, nil
}

func main() {
	in := flag.String("in", "", "input file of checkpoint descriptions (default: stdin)")
	out := flag.String("out", "", "output archive path (required)")
	textual := flag.Bool("text", false, "write the TXT CHECKPOINTS 1 format instead of binary")
	lz4Compress := flag.Bool("lz4", false, "lz4-compress the output archive")
	flag.Parse()

	if *out == "" {
		log.Fatal("-out is required")
	}

	inFile := os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		defer f.Close()
		inFile = f
	}

	var blocks []spvstore.StoredBlock
	scanner := bufio.NewScanner(inFile)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := parseLine(line)
		if err != nil {
			log.Fatalf("line %d: %v", lineNo, err)
		}
		blocks = append(blocks, b)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("reading input: %v", err)
	}

	var archive bytes.Buffer
	var writeErr error
	if *textual {
		writeErr = checkpoints.WriteTextual(&archive, blocks)
	} else {
		writeErr = checkpoints.WriteBinary(&archive, blocks)
	}
	if writeErr != nil {
		log.Fatalf("building archive: %v", writeErr)
	}

	payload := archive.Bytes()
	if *lz4Compress {
		var compressed bytes.Buffer
		if err := compression.CompressLz4(payload, &compressed); err != nil {
			log.Fatalf("lz4 compress: %v", err)
		}
		payload = compressed.Bytes()
	}

	if err := os.WriteFile(*out, payload, 0644); err != nil {
		log.Fatalf("writing %s: %v", *out, err)
	}

	log.Printf("wrote %d checkpoints to %s (%d bytes)", len(blocks), *out, len(payload))
}
