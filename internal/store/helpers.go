package store

import (
	"math"
	"sort"
)

// CosineSimilarity はコサイン類似度（-1〜1）を計算する
// 次元が異なる場合やゼロベクトルの場合は0を返す
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankByScore はスコア降順に並べ替えてlimit件に切り詰める
// 同点の場合は元の順序（挿入順）を保つ
func rankByScore(results []SearchResult, limit int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
