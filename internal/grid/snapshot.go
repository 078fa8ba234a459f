package grid

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"

	"github.com/piwi3910/cablerouter/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	snapshotMagic   uint32 = 0x47565243 // "CRVG" little endian
	snapshotVersion uint32 = 1

	// MaxSnapshotMapSize bounds the resolution accepted from a snapshot
	// header, so a corrupt file cannot request an arbitrarily large grid.
	MaxSnapshotMapSize = 512
)

// ErrBadSnapshot is returned for snapshots that cannot be decoded.
var ErrBadSnapshot = errors.New("invalid grid snapshot")

type snapshotHeader struct {
	Magic   uint32
	Version uint32
	MapSize uint32
	Min     [3]float64
	Max     [3]float64
	Words   uint32
}

// WriteSnapshot stores the grid's region, resolution and occupancy as a
// gzip-compressed binary stream. Search state is not stored.
func (g *VoxelGrid) WriteSnapshot(w io.Writer) error {
	bits := g.occupancy()
	zw := gzip.NewWriter(w)
	header := snapshotHeader{
		Magic:   snapshotMagic,
		Version: snapshotVersion,
		MapSize: uint32(g.size),
		Min:     [3]float64{g.bounds.Min.X, g.bounds.Min.Y, g.bounds.Min.Z},
		Max:     [3]float64{g.bounds.Max.X, g.bounds.Max.Y, g.bounds.Max.Z},
		Words:   uint32(len(bits)),
	}
	if err := binary.Write(zw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if err := binary.Write(zw, binary.LittleEndian, []uint64(bits)); err != nil {
		return fmt.Errorf("failed to write occupancy: %w", err)
	}
	return zw.Close()
}

// ReadSnapshot rebuilds a grid from a stream written by WriteSnapshot. The
// start and goal are reset to the corner cells (0,0,0) and (n-1,n-1,n-1).
func ReadSnapshot(r io.Reader) (*VoxelGrid, error) {
	zr, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	defer zr.Close()

	var header snapshotHeader
	if err := binary.Read(zr, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrBadSnapshot, err)
	}
	if header.Magic != snapshotMagic {
		return nil, fmt.Errorf("%w: magic number mismatch", ErrBadSnapshot)
	}
	if header.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, header.Version)
	}

	if header.MapSize == 0 || header.MapSize > MaxSnapshotMapSize {
		return nil, fmt.Errorf("%w: map size %d not in [1,%d]", ErrBadSnapshot, header.MapSize, MaxSnapshotMapSize)
	}
	n := int(header.MapSize)
	if want := (n*n*n + 63) / 64; int(header.Words) != want {
		return nil, fmt.Errorf("%w: expected %d occupancy words, header says %d", ErrBadSnapshot, want, header.Words)
	}
	bits, err := readOccupancy(zr, int(header.Words))
	if err != nil {
		return nil, err
	}

	bounds := model.Box{
		Min: r3.Vec{X: header.Min[0], Y: header.Min[1], Z: header.Min[2]},
		Max: r3.Vec{X: header.Max[0], Y: header.Max[1], Z: header.Max[2]},
	}
	g, err := New(bounds, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	for i := range g.nodes {
		g.nodes[i].Obstacle = bits.contains(i)
	}

	last := g.size - 1
	if err := g.SetStart(Index{}); err != nil {
		return nil, err
	}
	if err := g.SetGoal(Index{last, last, last}); err != nil {
		return nil, err
	}
	return g, nil
}

// readOccupancy reads the given number of bitset words in chunks, so a
// truncated stream fails before the whole bitset is allocated.
func readOccupancy(r io.Reader, words int) (bitmap, error) {
	const chunk = 4096
	bits := make(bitmap, 0, min(words, chunk))
	buf := make([]uint64, chunk)
	for len(bits) < words {
		part := buf[:min(chunk, words-len(bits))]
		if err := binary.Read(r, binary.LittleEndian, part); err != nil {
			return nil, fmt.Errorf("%w: failed to read occupancy: %v", ErrBadSnapshot, err)
		}
		bits = append(bits, part...)
	}
	return bits, nil
}

// SaveSnapshot writes the grid snapshot to path, creating parent directories.
func (g *VoxelGrid) SaveSnapshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := g.WriteSnapshot(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSnapshot reads a grid snapshot from path.
func LoadSnapshot(path string) (*VoxelGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// Fingerprint hashes the grid resolution and occupancy. Two grids with the
// same fingerprint route identically. Jobs record it so a replay can tell
// whether it runs against the obstacle map the job was routed on.
func (g *VoxelGrid) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(g.size))
	h.Write(buf[:])
	for _, word := range g.occupancy() {
		binary.LittleEndian.PutUint64(buf[:], word)
		h.Write(buf[:])
	}
	return h.Sum64()
}
