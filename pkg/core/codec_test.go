package core

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgeerrors "github.com/XiaoConstantine/pge-go/pkg/errors"
)

func TestModelJSONRoundTrip(t *testing.T) {
	m := NewModel()
	m.Set("conv", Weight{W: 2.5})
	m.Set("act", CategoricalWeights{Ws: []float64{1, 3, 0.5}})
	m.Set("layers", GaussianParams{Mean: 6, Spread: 4})
	m.Set("bias", BernoulliParam{P: 0.75})

	data, err := json.Marshal(m)
	require.NoError(t, err)

	decoded := NewModel()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, m.Snapshot(), decoded.Snapshot())
}

func TestModelJSONKindTags(t *testing.T) {
	m := NewModel()
	m.Set("bias", BernoulliParam{P: 0.25})

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var doc map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "bernoulli", doc["bias"]["kind"])
	assert.Equal(t, 0.25, doc["bias"]["p"])
}

func TestUnmarshalUnknownKind(t *testing.T) {
	m := NewModel()
	err := json.Unmarshal([]byte(`{"x": {"kind": "poisson", "p": 1}}`), m)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, pgeerrors.New(pgeerrors.UnknownParameterShape, "")))
}

func TestUnmarshalMalformedDocument(t *testing.T) {
	m := NewModel()
	assert.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), m))
}
