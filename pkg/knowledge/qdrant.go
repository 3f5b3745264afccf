package knowledge

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// DefaultCollection はスキーム索引のコレクション名です。
const DefaultCollection = "agrasar_schemes"

// QdrantIndex はQdrantのgRPC APIを使う VectorIndex 実装です。
type QdrantIndex struct {
	conn        *grpc.ClientConn
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	collection  string
}

var _ VectorIndex = (*QdrantIndex)(nil)

// DialQdrant はQdrantに接続します。
// APIキーがある場合はQdrant Cloud向けにTLSと api-key メタデータを使い、無い場合はローカルの非TLS接続にします。
func DialQdrant(addr, apiKey, collection string) (*QdrantIndex, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	var dialOpts []grpc.DialOption
	if apiKey != "" {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
		authInterceptor := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(authInterceptor))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("QdrantへのgRPCクライアント作成に失敗: %w", err)
	}
	return &QdrantIndex{
		conn:        conn,
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close はgRPC接続を閉じます。
func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}

// EnsureCollection はコレクションが無ければコサイン距離で作成します。
func (q *QdrantIndex) EnsureCollection(ctx context.Context, dimensions uint64) error {
	res, err := q.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("Qdrantのコレクション一覧取得に失敗: %w", err)
	}
	for _, c := range res.GetCollections() {
		if c.GetName() == q.collection {
			return nil
		}
	}

	_, err = q.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     dimensions,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("Qdrantのコレクション作成に失敗: %w", err)
	}
	return nil
}

// Upsert はドキュメントとベクトルを保存します。
func (q *QdrantIndex) Upsert(ctx context.Context, docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents (%d) and vectors (%d) differ in length", len(docs), len(vectors))
	}
	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: doc.ID},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: vectors[i]},
				},
			},
			Payload: map[string]*qdrant.Value{
				"source_id": stringValue(doc.SourceID),
				"title":     stringValue(doc.Title),
				"text":      stringValue(doc.Text),
			},
		})
	}

	wait := true
	if _, err := q.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
		Wait:           &wait,
	}); err != nil {
		return fmt.Errorf("Qdrantへのベクトル保存に失敗: %w", err)
	}
	return nil
}

// Search は類似ベクトルを検索します。
func (q *QdrantIndex) Search(ctx context.Context, vector []float32, limit uint64) ([]Match, error) {
	res, err := q.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: q.collection,
		Vector:         vector,
		Limit:          limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("Qdrantでのベクトル検索に失敗: %w", err)
	}

	matches := make([]Match, 0, len(res.GetResult()))
	for _, p := range res.GetResult() {
		payload := p.GetPayload()
		matches = append(matches, Match{
			Document: Document{
				ID:       p.GetId().GetUuid(),
				SourceID: payload["source_id"].GetStringValue(),
				Title:    payload["title"].GetStringValue(),
				Text:     payload["text"].GetStringValue(),
			},
			Score: p.GetScore(),
		})
	}
	return matches, nil
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}
