package qdrant

import (
	"context"

	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/internal/cfg"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/qdrant/go-client/qdrant"
)

const (
	scrollPageSize = 256
	userIDField    = "user_id"
)

// EnrollmentRepo хранит дескрипторы лиц в коллекции Qdrant: одна точка на пользователя, ID точки = ID пользователя.
// Поиск по индексу не используется, ListEnrolled читает коллекцию целиком через scroll.
type EnrollmentRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewEnrollmentRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *EnrollmentRepo {
	return &EnrollmentRepo{
		client: client,
		cfg:    cfg,
	}
}

// ListEnrolled постранично читает все точки коллекции в порядке их ID.
func (q *EnrollmentRepo) ListEnrolled(ctx context.Context) ([]biometric.Candidate, error) {
	var (
		candidates []biometric.Candidate
		offset     *qdrant.PointId
	)

	for {
		resp, err := q.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.cfg.QdrantCollectionName,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			WithPayload:    qdrant.NewWithPayloadInclude(userIDField),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		for _, point := range resp.GetResult() {
			candidates = append(candidates, biometric.Candidate{
				Identity: pointIdentity(point),
				Vector:   pointVector(point.GetVectors()),
			})
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return candidates, nil
		}
	}
}

// Get возвращает дескриптор пользователя или nil, если точки нет.
func (q *EnrollmentRepo) Get(ctx context.Context, userID string) ([]float64, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(userID)},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(points) == 0 {
		return nil, nil
	}

	return pointVector(points[0].GetVectors()), nil
}

// Upsert заменяет точку пользователя новым дескриптором.
func (q *EnrollmentRepo) Upsert(ctx context.Context, userID string, descriptor []float64) error {
	vector := make([]float32, len(descriptor))
	for i, v := range descriptor {
		vector[i] = float32(v)
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(userID),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{userIDField: userID}),
		}},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (q *EnrollmentRepo) Delete(ctx context.Context, userID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(userID)),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// pointIdentity берет ID пользователя из payload, а при его отсутствии из UUID точки.
func pointIdentity(point *qdrant.RetrievedPoint) string {
	if v, ok := point.GetPayload()[userIDField]; ok && v.GetStringValue() != "" {
		return v.GetStringValue()
	}
	return point.GetId().GetUuid()
}

// pointVector достает плотный вектор; для именованных и разреженных векторов вернет nil,
// и matcher отбросит такую запись как поврежденную.
func pointVector(vectors *qdrant.VectorsOutput) []float64 {
	v := vectors.GetVector()
	if v == nil {
		return nil
	}

	data := v.GetData()
	if dense := v.GetDense(); dense != nil {
		data = dense.GetData()
	}
	if len(data) == 0 {
		return nil
	}

	out := make([]float64, len(data))
	for i, x := range data {
		out[i] = float64(x)
	}
	return out
}
