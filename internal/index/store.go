package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/types"
)

// The postings engine's inverted structures (token -> postings, per-field
// lengths) are entirely derived from the chunk set plus the tokenizer
// configuration, so the on-disk artifact under index/ only needs to persist
// the chunks themselves — Open replays AddChunk for each on load. This
// mirrors the metadata store's binary-snapshot idiom (magic + version
// header, length-prefixed records, sorted-key deterministic output,
// write-to-temp + rename) from internal/metadata, distinct here only in
// what's stored: full chunk bodies instead of fingerprints.
var chunksMagic = [4]byte{'P', 'R', 'B', 'X'}

const chunksSchemaVersion uint32 = 1

const chunksFileName = "chunks.bin"

func chunksPath(indexDir string) string {
	return filepath.Join(indexDir, chunksFileName)
}

// loadChunks reads the persisted chunk set, returning an empty slice if the
// index directory or file doesn't exist yet.
func loadChunks(indexDir string) ([]types.Chunk, error) {
	f, err := os.Open(chunksPath(indexDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, probeerrors.NewIoError(indexDir, err)
	}
	defer f.Close()

	chunks, err := decodeChunks(bufio.NewReader(f))
	if err != nil {
		return nil, probeerrors.NewIndexCorrupt(fmt.Errorf("%s: %w", chunksPath(indexDir), err))
	}
	return chunks, nil
}

// commitChunks persists the full chunk set atomically (write-to-temp +
// rename), matching spec.md §4.4's durability approach for the sibling
// metadata store.
func commitChunks(indexDir string, chunks map[string]types.Chunk) error {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return probeerrors.NewIoError(indexDir, err)
	}
	tmp, err := os.CreateTemp(indexDir, ".chunks-*.tmp")
	if err != nil {
		return probeerrors.NewIoError(indexDir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := encodeChunks(tmp, chunks); err != nil {
		tmp.Close()
		return probeerrors.NewIoError(tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return probeerrors.NewIoError(tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return probeerrors.NewIoError(tmpPath, err)
	}
	if err := os.Rename(tmpPath, chunksPath(indexDir)); err != nil {
		return probeerrors.NewIoError(chunksPath(indexDir), err)
	}
	return nil
}

func encodeChunks(w io.Writer, chunks map[string]types.Chunk) error {
	var buf bytes.Buffer
	buf.Write(chunksMagic[:])
	if err := binary.Write(&buf, binary.LittleEndian, chunksSchemaVersion); err != nil {
		return err
	}

	ids := make([]string, 0, len(chunks))
	for id := range chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := writeChunk(&buf, chunks[id]); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeChunk(buf *bytes.Buffer, c types.Chunk) error {
	fields := []string{c.ChunkID, c.Path, string(c.FileType), string(c.ChunkType), c.ChunkName, c.Declaration, c.Body}
	for _, f := range fields {
		if err := binWriteString(buf, f); err != nil {
			return err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, int64(c.StartLine)); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, int64(c.EndLine))
}

func binWriteString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func decodeChunks(r io.Reader) ([]types.Chunk, error) {
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if gotMagic != chunksMagic {
		return nil, fmt.Errorf("bad magic %q", gotMagic)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if version != chunksSchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", version)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading chunk count: %w", err)
	}
	chunks := make([]types.Chunk, count)
	for i := range chunks {
		c, err := readChunk(r)
		if err != nil {
			return nil, fmt.Errorf("reading chunk %d: %w", i, err)
		}
		chunks[i] = c
	}
	return chunks, nil
}

func readChunk(r io.Reader) (types.Chunk, error) {
	var c types.Chunk
	strs := make([]string, 7)
	for i := range strs {
		s, err := binReadString(r)
		if err != nil {
			return c, err
		}
		strs[i] = s
	}
	c.ChunkID, c.Path = strs[0], strs[1]
	c.FileType = types.FileType(strs[2])
	c.ChunkType = types.ChunkType(strs[3])
	c.ChunkName, c.Declaration, c.Body = strs[4], strs[5], strs[6]

	var start, end int64
	if err := binary.Read(r, binary.LittleEndian, &start); err != nil {
		return c, err
	}
	if err := binary.Read(r, binary.LittleEndian, &end); err != nil {
		return c, err
	}
	c.StartLine, c.EndLine = int(start), int(end)
	return c, nil
}

func binReadString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
