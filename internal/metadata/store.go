// Package metadata implements spec.md §4.4's MetadataStore: a persistent
// path -> {fingerprint, chunk_ids} mapping plus a header holding schema
// version and tokenizer digest, serialized as a single binary file written
// atomically (write-to-temp + rename). The length-prefixed record stream
// and magic+version header are grounded on the teacher's
// internal/testing/binary_snapshot.go (encoding/binary, sorted deterministic
// output, a version header ahead of the payload) — adapted here from a
// test-only snapshot format into the index's real on-disk persistence.
package metadata

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

// magic identifies a probe metadata file; schemaVersion bumps whenever the
// record layout below changes shape.
var magic = [4]byte{'P', 'R', 'B', '1'}

const schemaVersion uint32 = 1

// Store is the in-memory representation of the persisted metadata file.
type Store struct {
	path            string
	TokenizerDigest uint64
	records         map[string]types.FileRecord
}

// Diff is the result of comparing a Store's records against a fresh scan.
type Diff struct {
	Added     []types.ScanResult
	Modified  []types.ScanResult
	Deleted   []string
	Unchanged []types.ScanResult
}

// Load reads the metadata file at path, returning an empty Store (schema
// version current, no records) if it does not exist. A file that exists
// but fails to parse is reported as IndexCorrupt — per spec.md §4.4, the
// caller decides whether to rebuild, this package never rebuilds on its
// own.
func Load(path string, tokenizerDigest uint64) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{path: path, TokenizerDigest: tokenizerDigest, records: map[string]types.FileRecord{}}, nil
		}
		return nil, probeerrors.NewIoError(path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	s, err := decode(r)
	if err != nil {
		return nil, probeerrors.NewIndexCorrupt(fmt.Errorf("%s: %w", path, err))
	}
	s.path = path
	return s, nil
}

// SchemaStale reports whether the loaded store's tokenizer digest no longer
// matches what the current engine configuration expects. The schema
// version is not compared here: Load already rejects a file with another
// version as IndexCorrupt.
func (s *Store) SchemaStale(expectedDigest uint64) bool {
	return s.TokenizerDigest != expectedDigest
}

// Record returns the stored record for path, if any.
func (s *Store) Record(path string) (types.FileRecord, bool) {
	r, ok := s.records[path]
	return r, ok
}

// Diff computes added/modified/deleted/unchanged against a fresh scan, per
// spec.md §4.4: "modified" is any path whose fingerprint differs;
// "deleted" is any path in the store not present in the scan.
func (s *Store) Diff(scanned []types.ScanResult) Diff {
	var d Diff
	seen := make(map[string]bool, len(scanned))

	for _, sr := range scanned {
		seen[sr.RelativePath] = true
		prev, ok := s.records[sr.RelativePath]
		fp := fingerprintOf(sr)
		switch {
		case !ok:
			d.Added = append(d.Added, sr)
		case !prev.Fingerprint.Equal(fp):
			d.Modified = append(d.Modified, sr)
		default:
			d.Unchanged = append(d.Unchanged, sr)
		}
	}

	for path := range s.records {
		if !seen[path] {
			d.Deleted = append(d.Deleted, path)
		}
	}
	return d
}

func fingerprintOf(sr types.ScanResult) types.Fingerprint {
	return types.Fingerprint{Size: sr.Size, ModTimeNano: sr.ModTimeNano}
}

// Commit atomically replaces the stored records with updates (a full
// replacement map, not a delta) and persists to disk via write-to-temp +
// rename, then updates the in-memory view. Callers apply delete-by-path
// before insert in the caller's own SearchIndex writer; Commit here is
// purely the metadata side of that same atomic step (spec.md §4.7).
func (s *Store) Commit(updates map[string]types.FileRecord) error {
	s.records = updates

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return probeerrors.NewIoError(dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".metadata-*.tmp")
	if err != nil {
		return probeerrors.NewIoError(dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if err := encode(tmp, s); err != nil {
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
	if err := os.Rename(tmpPath, s.path); err != nil {
		return probeerrors.NewIoError(s.path, err)
	}
	return nil
}

func encode(w io.Writer, s *Store) error {
	var buf bytes.Buffer
	buf.Write(magic[:])
	if err := binary.Write(&buf, binary.LittleEndian, schemaVersion); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.LittleEndian, s.TokenizerDigest); err != nil {
		return err
	}

	paths := make([]string, 0, len(s.records))
	for p := range s.records {
		paths = append(paths, p)
	}
	sort.Strings(paths) // deterministic output, same rationale as the teacher's sorted-hash snapshot

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(paths))); err != nil {
		return err
	}
	for _, p := range paths {
		rec := s.records[p]
		if err := writeRecord(&buf, rec); err != nil {
			return err
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func writeRecord(buf *bytes.Buffer, rec types.FileRecord) error {
	if err := writeString(buf, rec.Path); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, rec.Fingerprint.Size); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, rec.Fingerprint.ModTimeNano); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, rec.Fingerprint.ContentHash); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(rec.ChunkIDs))); err != nil {
		return err
	}
	for _, id := range rec.ChunkIDs {
		if err := writeString(buf, id); err != nil {
			return err
		}
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func decode(r io.Reader) (*Store, error) {
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("bad magic %q", gotMagic)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if version != schemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", version)
	}

	var digest uint64
	if err := binary.Read(r, binary.LittleEndian, &digest); err != nil {
		return nil, fmt.Errorf("reading tokenizer digest: %w", err)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading record count: %w", err)
	}

	records := make(map[string]types.FileRecord, count)
	for i := uint32(0); i < count; i++ {
		rec, err := readRecord(r)
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", i, err)
		}
		records[rec.Path] = rec
	}

	return &Store{TokenizerDigest: digest, records: records}, nil
}

func readRecord(r io.Reader) (types.FileRecord, error) {
	var rec types.FileRecord
	path, err := readString(r)
	if err != nil {
		return rec, err
	}
	rec.Path = path

	if err := binary.Read(r, binary.LittleEndian, &rec.Fingerprint.Size); err != nil {
		return rec, err
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Fingerprint.ModTimeNano); err != nil {
		return rec, err
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Fingerprint.ContentHash); err != nil {
		return rec, err
	}

	var chunkCount uint32
	if err := binary.Read(r, binary.LittleEndian, &chunkCount); err != nil {
		return rec, err
	}
	rec.ChunkIDs = make([]string, chunkCount)
	for i := range rec.ChunkIDs {
		id, err := readString(r)
		if err != nil {
			return rec, err
		}
		rec.ChunkIDs[i] = id
	}
	return rec, nil
}

func readString(r io.Reader) (string, error) {
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
