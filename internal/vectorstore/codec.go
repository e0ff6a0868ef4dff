package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Per-document columnar file layout, little-endian throughout:
//
//	magic "IVEC" | uint32 version | uint32 dim | uint32 rows
//	ids:     rows x (uint32 len | bytes)
//	texts:   rows x (uint32 len | bytes)
//	vectors: rows x dim x float32
const (
	fileMagic   = "IVEC"
	fileVersion = 1
)

type fileColumns struct {
	ids     []string
	texts   []string
	vectors [][]float32
}

// writeVectorFile writes the whole batch to a temp file, syncs it and renames
// it into place. Readers either see the complete file or no file at all.
func writeVectorFile(path string, cols fileColumns, dim int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".vec-*")
	if err != nil {
		return fmt.Errorf("creating temp vector file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	header := make([]byte, 0, 16)
	header = append(header, fileMagic...)
	header = binary.LittleEndian.AppendUint32(header, fileVersion)
	header = binary.LittleEndian.AppendUint32(header, uint32(dim))
	header = binary.LittleEndian.AppendUint32(header, uint32(len(cols.ids)))
	if _, err := tmp.Write(header); err != nil {
		cleanup()
		return fmt.Errorf("writing vector file header: %w", err)
	}

	for _, col := range [][]string{cols.ids, cols.texts} {
		for _, s := range col {
			if err := writeLenPrefixed(tmp, s); err != nil {
				cleanup()
				return fmt.Errorf("writing vector file column: %w", err)
			}
		}
	}

	buf := make([]byte, 4*dim)
	for _, vec := range cols.vectors {
		for i, f := range vec {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
		}
		if _, err := tmp.Write(buf); err != nil {
			cleanup()
			return fmt.Errorf("writing vector rows: %w", err)
		}
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing vector file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing vector file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing vector file: %w", err)
	}
	return nil
}

func writeLenPrefixed(f *os.File, s string) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := f.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := f.WriteString(s)
	return err
}

func readVectorFile(path string) (fileColumns, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileColumns{}, 0, fmt.Errorf("reading vector file %s: %w", path, err)
	}
	if len(data) < 16 || string(data[:4]) != fileMagic {
		return fileColumns{}, 0, fmt.Errorf("vector file %s: bad header", path)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != fileVersion {
		return fileColumns{}, 0, fmt.Errorf("vector file %s: unsupported version %d", path, v)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	rows := int(binary.LittleEndian.Uint32(data[12:16]))

	offset := 16
	readColumn := func() ([]string, error) {
		col := make([]string, rows)
		for i := 0; i < rows; i++ {
			if offset+4 > len(data) {
				return nil, fmt.Errorf("vector file %s: truncated", path)
			}
			n := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4
			if offset+n > len(data) {
				return nil, fmt.Errorf("vector file %s: truncated", path)
			}
			col[i] = string(data[offset : offset+n])
			offset += n
		}
		return col, nil
	}

	ids, err := readColumn()
	if err != nil {
		return fileColumns{}, 0, err
	}
	texts, err := readColumn()
	if err != nil {
		return fileColumns{}, 0, err
	}

	if offset+rows*dim*4 > len(data) {
		return fileColumns{}, 0, fmt.Errorf("vector file %s: truncated vectors", path)
	}
	vectors := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
		vectors[i] = vec
	}

	return fileColumns{ids: ids, texts: texts, vectors: vectors}, dim, nil
}

// readVectorFileRows returns only the row count from the file header.
func readVectorFileRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening vector file %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 16)
	if _, err := f.Read(header); err != nil {
		return 0, fmt.Errorf("reading vector file header %s: %w", path, err)
	}
	if string(header[:4]) != fileMagic {
		return 0, fmt.Errorf("vector file %s: bad header", path)
	}
	return int(binary.LittleEndian.Uint32(header[12:16])), nil
}
