// Package datauri parses inline data: payloads delivered by external design
// tools. The payload is untrusted input; the decoder only guarantees that the
// bytes decoded under the declared encoding. Whether they form a well-formed
// image of the declared media type is a downstream concern.
package datauri

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Scheme is the required prefix of an inline-encoded payload.
const Scheme = "data:"

// Sentinel errors for the three failure classes of Decode. Callers match with
// errors.Is; the wrapped message carries the detail.
var (
	ErrMalformedPayload    = fmt.Errorf("malformed data URI payload")
	ErrUnsupportedEncoding = fmt.Errorf("unsupported data URI encoding")
	ErrDecode              = fmt.Errorf("failed to decode data URI payload")
)

// DecodeFunc decodes one payload section under a named encoding.
type DecodeFunc func(payload string) ([]byte, error)

// Decoder decodes data: strings against a registry of encoding handlers.
type Decoder struct {
	encodings map[string]DecodeFunc
}

// NewDecoder returns a decoder with the default encoding registry (base64).
func NewDecoder() *Decoder {
	d := &Decoder{encodings: make(map[string]DecodeFunc)}
	d.Register("base64", decodeBase64)
	return d
}

// Register adds or replaces the handler for an encoding token.
func (d *Decoder) Register(encoding string, fn DecodeFunc) {
	d.encodings[encoding] = fn
}

// Decode parses s as `data:<media-type>;<encoding>,<payload>` and returns the
// decoded bytes together with the declared media type.
//
// Failure classes:
//   - ErrMalformedPayload: missing scheme prefix, missing header/payload
//     separator, or empty header section
//   - ErrUnsupportedEncoding: encoding token not in the registry
//   - ErrDecode: payload does not decode under the declared encoding
func (d *Decoder) Decode(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, Scheme) {
		return nil, "", fmt.Errorf("%w: missing %q prefix", ErrMalformedPayload, Scheme)
	}

	// The first ',' at or after the scheme separates header from payload.
	// An empty header section is as malformed as a missing separator.
	sep := strings.Index(s[len(Scheme):], ",")
	if sep <= 0 {
		return nil, "", fmt.Errorf("%w: no header/payload separator", ErrMalformedPayload)
	}
	sep += len(Scheme)

	header := s[len(Scheme):sep]
	payload := s[sep+1:]

	// Header is `<media-type>;<encoding>`, split on the first ';'.
	mediaType, encoding, _ := strings.Cut(header, ";")

	decode, ok := d.encodings[encoding]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}

	raw, err := decode(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return raw, mediaType, nil
}

func decodeBase64(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(payload)
}
