package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestPointIdentity(t *testing.T) {
	withPayload := &qdrant.RetrievedPoint{
		Id:      qdrant.NewIDUUID("7f8d0b4e-8c2a-4a55-9d5f-3a1f0c8e2b11"),
		Payload: qdrant.NewValueMap(map[string]any{userIDField: "user-from-payload"}),
	}
	assert.Equal(t, "user-from-payload", pointIdentity(withPayload))

	bare := &qdrant.RetrievedPoint{Id: qdrant.NewIDUUID("7f8d0b4e-8c2a-4a55-9d5f-3a1f0c8e2b11")}
	assert.Equal(t, "7f8d0b4e-8c2a-4a55-9d5f-3a1f0c8e2b11", pointIdentity(bare))
}

func TestPointVector(t *testing.T) {
	dense := &qdrant.VectorsOutput{
		VectorsOptions: &qdrant.VectorsOutput_Vector{
			Vector: &qdrant.VectorOutput{Data: []float32{0.5, -1, 2}},
		},
	}
	assert.Equal(t, []float64{0.5, -1, 2}, pointVector(dense))

	assert.Nil(t, pointVector(nil))
	assert.Nil(t, pointVector(&qdrant.VectorsOutput{}))
}
