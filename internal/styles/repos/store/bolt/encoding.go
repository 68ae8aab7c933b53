package bolt

import (
	"encoding/json"

	"github.com/calliso/stylecache/internal/styles/domain"
)

// encodeStyle serializes a style for storage under the given id. The id is
// written into the encoded form so a decoded style is self-describing.
func encodeStyle(st *domain.Style, id int64) ([]byte, error) {
	clone := *st
	clone.ID = id
	return json.Marshal(&clone)
}

func decodeStyle(data []byte) (*domain.Style, error) {
	var st domain.Style
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
