package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// LocalEmbedder はAPIを使わないハッシュベースのEmbedder実装
// 単語と文字trigramを次元へハッシュし、L2正規化する。意味的な近さではなく
// 表層的な重なりを反映するため、オフライン利用とテスト用
type LocalEmbedder struct {
	dim int
}

// NewLocalEmbedder は新しいLocalEmbedderを作成
func NewLocalEmbedder(dim int) (*LocalEmbedder, error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	return &LocalEmbedder{dim: dim}, nil
}

// Embed はテキストを埋め込みベクトルに変換
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dim)
	for _, word := range tokenize(text) {
		e.add(vec, "w:"+word, 1.0)

		runes := []rune("^" + word + "$")
		for i := 0; i+3 <= len(runes); i++ {
			e.add(vec, "t:"+string(runes[i:i+3]), 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return nil, ErrEmptyEmbedding
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func (e *LocalEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dim))
	// 上位ビットで符号を決めて衝突の偏りを打ち消す
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize は小文字化して英数字以外で分割する（HTMLタグ名も単語として扱う）
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// GetDimension は次元を返す
func (e *LocalEmbedder) GetDimension() int {
	return e.dim
}
