package response

import (
	"os"
	"strings"
)

// PrepareFile builds response data with content of a file.
//
// File is decoded with FileEncoding (default "utf-8"), files with ".json" extension
// get "application/json" Content-Type. File read error is returned as is.
func PrepareFile(path string, options ...Option) (Data, error) {
	o := newOptions(options)

	b, err := os.ReadFile(path) //nolint:gosec // Reading fixture files is the purpose.
	if err != nil {
		return Data{}, err
	}

	content, err := decode(b, o.fileEncoding())
	if err != nil {
		return Data{}, err
	}

	o.Content = content

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		o.ContentType = ContentTypeJSON
	}

	return o.Prepare()
}
