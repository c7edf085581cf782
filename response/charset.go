package response

import (
	"fmt"
	"mime"
	"strings"

	"github.com/swaggest/usecase/status"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// lookup finds encoding by WHATWG label or IANA name, names like "latin-1" or "utf_8"
// are also tried without separators.
func lookup(name string) (encoding.Encoding, error) {
	candidates := []string{name}
	if compact := strings.NewReplacer("-", "", "_", "", " ", "").Replace(name); compact != name {
		candidates = append(candidates, compact)
	}

	for _, n := range candidates {
		if enc, err := htmlindex.Get(n); err == nil {
			return enc, nil
		}

		if enc, err := ianaindex.IANA.Encoding(n); err == nil && enc != nil {
			return enc, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

func encode(text, name string) ([]byte, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}

	b, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, status.Wrap(fmt.Errorf("encode content with %s: %w", name, err), status.InvalidArgument)
	}

	return b, nil
}

func decode(b []byte, name string) (string, error) {
	enc, err := lookup(name)
	if err != nil {
		return "", err
	}

	text, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", status.Wrap(fmt.Errorf("decode content with %s: %w", name, err), status.InvalidArgument)
	}

	return string(text), nil
}

// DecodeText decodes body with charset of content type.
//
// Body is treated as UTF-8 when content type has no charset or can not be parsed.
func DecodeText(body []byte, contentType string) (string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return string(body), nil
	}

	return decode(body, params["charset"])
}
