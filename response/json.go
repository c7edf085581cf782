package response

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PrepareJSON builds response data with v encoded as compact JSON.
//
// Content-Type is always "application/json", non-ASCII and HTML characters are not escaped.
func PrepareJSON(v interface{}, options ...Option) (Data, error) {
	o := newOptions(options)

	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return Data{}, fmt.Errorf("marshal JSON content: %w", err)
	}

	o.Content = string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	o.ContentType = ContentTypeJSON

	return o.Prepare()
}
