package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/linsalefe/pos-plataform/internal/domain"
)

// DefaultTopK is the number of knowledge chunks injected into a prompt.
const DefaultTopK = 3

// CosineSimilarity returns the cosine of the angle between a and b, clamped
// to [-1, 1]. Vectors of different length or with zero norm are rejected.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, domain.ErrZeroEmbedding
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0, domain.ErrZeroEmbedding
	}
	return math.Max(-1, math.Min(1, sim)), nil
}

// Rank scores every corpus entry against query and returns them sorted by
// descending score, ties kept in corpus order. Entries whose vector cannot
// be decoded or compared are skipped. topK <= 0 returns every entry.
func Rank(query []float32, corpus []domain.StoredChunk, topK int) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(corpus))
	for _, item := range corpus {
		vec, err := domain.DecodeEmbedding(item.RawEmbedding)
		if err != nil {
			continue
		}
		score, err := CosineSimilarity(query, vec)
		if err != nil {
			continue
		}
		scored = append(scored, domain.ScoredChunk{
			Title:   item.Title,
			Content: item.Content,
			Score:   score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
