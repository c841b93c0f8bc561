package core

import (
	"encoding/json"

	"github.com/XiaoConstantine/pge-go/pkg/errors"
)

// paramRecord is the JSON shape of one parameter, tagged by kind so the
// union survives a round trip through storage.
type paramRecord struct {
	Kind   string    `json:"kind"`
	W      float64   `json:"w,omitempty"`
	Ws     []float64 `json:"ws,omitempty"`
	Mean   float64   `json:"mean,omitempty"`
	Spread float64   `json:"spread,omitempty"`
	P      float64   `json:"p,omitempty"`
}

const (
	kindWeight      = "weight"
	kindCategorical = "categorical"
	kindGaussian    = "gaussian"
	kindBernoulli   = "bernoulli"
)

func encodeParameter(p Parameter) (paramRecord, error) {
	switch v := p.(type) {
	case Weight:
		return paramRecord{Kind: kindWeight, W: v.W}, nil
	case CategoricalWeights:
		return paramRecord{Kind: kindCategorical, Ws: v.Ws}, nil
	case GaussianParams:
		return paramRecord{Kind: kindGaussian, Mean: v.Mean, Spread: v.Spread}, nil
	case BernoulliParam:
		return paramRecord{Kind: kindBernoulli, P: v.P}, nil
	default:
		return paramRecord{}, errors.WithFields(
			errors.New(errors.UnknownParameterShape, "cannot encode parameter"),
			errors.Fields{"parameter": p},
		)
	}
}

func decodeParameter(r paramRecord) (Parameter, error) {
	switch r.Kind {
	case kindWeight:
		return Weight{W: r.W}, nil
	case kindCategorical:
		ws := make([]float64, len(r.Ws))
		copy(ws, r.Ws)
		return CategoricalWeights{Ws: ws}, nil
	case kindGaussian:
		return GaussianParams{Mean: r.Mean, Spread: r.Spread}, nil
	case kindBernoulli:
		return BernoulliParam{P: r.P}, nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.UnknownParameterShape, "cannot decode parameter"),
			errors.Fields{"kind": r.Kind},
		)
	}
}

// MarshalJSON encodes the model as a handle-keyed object of kind-tagged
// parameter records.
func (m *Model) MarshalJSON() ([]byte, error) {
	snapshot := m.Snapshot()

	records := make(map[Handle]paramRecord, len(snapshot))
	for h, p := range snapshot {
		rec, err := encodeParameter(p)
		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{"handle": h})
		}
		records[h] = rec
	}
	return json.Marshal(records)
}

// UnmarshalJSON replaces the model contents with the decoded mapping.
func (m *Model) UnmarshalJSON(data []byte) error {
	var records map[Handle]paramRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return errors.Wrap(err, errors.InvalidInput, "malformed model document")
	}

	params := make(map[Handle]Parameter, len(records))
	for h, rec := range records {
		p, err := decodeParameter(rec)
		if err != nil {
			return err
		}
		params[h] = p
	}

	m.mu.Lock()
	m.params = params
	m.mu.Unlock()
	return nil
}
