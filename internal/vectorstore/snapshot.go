package vectorstore

import (
	"math"
	"sync"
)

// Snapshot is an immutable view of every committed chunk. A snapshot handed
// out by LoadAll stays valid for the caller even after later commits; new
// calls after a commit observe a fresh snapshot with a higher version.
type Snapshot struct {
	Version uint64

	ChunkIds    []string
	DocumentIds []string
	Texts       []string
	Matrix      [][]float32

	normOnce   sync.Once
	normalized [][]float32
}

func (s *Snapshot) Len() int {
	return len(s.ChunkIds)
}

// NormalizedMatrix returns unit-length copies of every vector, computed once
// per snapshot and shared across queries. Zero vectors stay zero.
func (s *Snapshot) NormalizedMatrix() [][]float32 {
	s.normOnce.Do(func() {
		s.normalized = make([][]float32, len(s.Matrix))
		for i, vec := range s.Matrix {
			s.normalized[i] = normalizeVector(vec)
		}
	})
	return s.normalized
}

func normalizeVector(vec []float32) []float32 {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, f := range vec {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
