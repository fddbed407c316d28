package content

import (
	"encoding/json"
	"fmt"
)

// MarshalPayload encodes a payload for storage. The atom type, stored
// alongside, selects the decoder.
func MarshalPayload(p Payload) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}

// UnmarshalPayload decodes a stored payload by atom type.
func UnmarshalPayload(t AtomType, data []byte) (Payload, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}
	var (
		p   Payload
		err error
	)
	switch t {
	case AtomRecallCard:
		var v RecallCardPayload
		err = json.Unmarshal(data, &v)
		p = v
	case AtomCloze:
		var v ClozePayload
		err = json.Unmarshal(data, &v)
		p = v
	case AtomMultipleChoice:
		var v MultipleChoicePayload
		err = json.Unmarshal(data, &v)
		p = v
	case AtomTrueFalse:
		var v TrueFalsePayload
		err = json.Unmarshal(data, &v)
		p = v
	case AtomOrdering:
		var v OrderingPayload
		err = json.Unmarshal(data, &v)
		p = v
	case AtomMatching:
		var v MatchingPayload
		err = json.Unmarshal(data, &v)
		p = v
	case AtomNumeric:
		var v NumericPayload
		err = json.Unmarshal(data, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown atom type: %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", t, err)
	}
	return p, nil
}
