package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/brbranch/lang_assist/internal/model"
)

// payloadText はノート本文を保持するpayloadキー
const payloadText = "text"

// QdrantStore はQdrantを使用したStore実装
type QdrantStore struct {
	client      *qdrant.Client
	url         string
	collection  string
	vectorDim   uint64
	initialized bool
	mu          sync.RWMutex // initializedフラグの保護
}

// QdrantEndpoint はURLからgRPC接続先を組み立てる
// HTTPポート(6333)が指定された場合はgRPCポート(6334)に変換する
func QdrantEndpoint(urlStr string) (host string, port int, useTLS bool, err error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Hostname() == "" {
		return "", 0, false, fmt.Errorf("failed to parse URL: missing host in %q", urlStr)
	}

	host = parsedURL.Hostname()
	useTLS = parsedURL.Scheme == "https"
	port = 6334
	if portStr := parsedURL.Port(); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil && p != 6333 {
			port = p
		}
	}
	return host, port, useTLS, nil
}

// NewQdrantStore はQdrantStoreを作成する
// apiKeyはQdrant Cloud用（空文字なら認証なし）
func NewQdrantStore(urlStr, apiKey string, opts Options) (*QdrantStore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	host, port, useTLS, err := QdrantEndpoint(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   host,
		Port:                   port,
		APIKey:                 apiKey,
		UseTLS:                 useTLS,
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.HealthCheck(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &QdrantStore{
		client:     client,
		url:        urlStr,
		collection: opts.Collection,
		vectorDim:  uint64(opts.Dim),
	}, nil
}

// EnsureCollection はコレクションが無ければcosine距離で作成する
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	if s.client == nil {
		return ErrConnectionFailed
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if exists {
		slog.Debug("collection already exists", "collection", s.collection)
	} else {
		slog.Info("creating collection", "collection", s.collection, "dim", s.vectorDim)
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     s.vectorDim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// Close はストアをクローズする
func (s *QdrantStore) Close() error {
	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// isInitialized は初期化状態を安全に取得する
func (s *QdrantStore) isInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// AddNote はノートをUUIDのポイントとして追加する
func (s *QdrantStore) AddNote(ctx context.Context, note *model.Note, embedding []float32) error {
	if !s.isInitialized() {
		return ErrNotInitialized
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(note.ID),
				Vectors: qdrant.NewVectors(embedding...),
				Payload: qdrant.NewValueMap(map[string]any{payloadText: note.Text}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Search はベクトル検索を実行する（Qdrantのcosineスコアをそのまま返す）
func (s *QdrantStore) Search(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			Note:  pointToNote(point.GetId(), point.GetPayload()),
			Score: float64(point.GetScore()),
		})
	}

	// Qdrantは降順で返すが、同点の順序を安定させる
	return rankByScore(results, limit), nil
}

// List はScrollでノートを取得する（順序はQdrant任せ）
func (s *QdrantStore) List(ctx context.Context, limit int) ([]*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll points: %w", err)
	}

	notes := make([]*model.Note, 0, len(points))
	for _, point := range points {
		notes = append(notes, pointToNote(point.GetId(), point.GetPayload()))
	}
	return notes, nil
}

// Count は正確な件数を返す
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	if !s.isInitialized() {
		return 0, ErrNotInitialized
	}

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

// pointToNote はポイントIDとpayloadからNoteを構築する
// UUID以外のIDで書かれたポイントは数値IDを文字列化する
func pointToNote(id *qdrant.PointId, payload map[string]*qdrant.Value) *model.Note {
	note := &model.Note{}
	if id != nil {
		if u := id.GetUuid(); u != "" {
			note.ID = u
		} else {
			note.ID = strconv.FormatUint(id.GetNum(), 10)
		}
	}
	if v, ok := payload[payloadText]; ok {
		note.Text = v.GetStringValue()
	}
	return note
}
