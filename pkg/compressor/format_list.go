package compressor

import (
	"encoding/json"
	"errors"
)

// FormatList holds one or more target mime types. A single entry is encoded as a plain string.
type FormatList []string

func (f FormatList) MarshalJSON() ([]byte, error) {
	if len(f) == 1 {
		return json.Marshal(f[0])
	}

	return json.Marshal([]string(f))
}

func (f *FormatList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = FormatList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return ErrInvalidFormatList
	}

	*f = many
	return nil
}

// Includes reports whether mimeType is one of the requested target formats.
func (f FormatList) Includes(mimeType string) bool {
	for _, format := range f {
		if format == mimeType {
			return true
		}
	}

	return false
}

var ErrInvalidFormatList = errors.New("convert type must be a string or a list of strings")
