// Package payload turns uploaded media into base64 data URLs and back.
package payload

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Payload is an immutable base64 encoding of some media together with its type.
type Payload struct {
	Data      string `json:"data"`
	MediaType string `json:"mediaType"`
}

// UnreadableFileError reports that the source media could not be read.
type UnreadableFileError struct {
	Name string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unreadable file: %v", e.Err)
	}
	return fmt.Sprintf("unreadable file %q: %v", e.Name, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// MalformedEncodingError reports an encoded string that is not a well formed data URL.
type MalformedEncodingError struct {
	Reason string
	Err    error
}

func (e *MalformedEncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed encoding: %s: %v", e.Reason, e.Err)
	}
	return "malformed encoding: " + e.Reason
}

func (e *MalformedEncodingError) Unwrap() error { return e.Err }

// Encode reads r exactly once and sniffs the media type from its content.
func Encode(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, &UnreadableFileError{Err: err}
	}
	if len(data) == 0 {
		return Payload{}, &UnreadableFileError{Err: io.ErrUnexpectedEOF}
	}
	return FromBytes(data, detect(data)), nil
}

func EncodeFile(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return Payload{}, &UnreadableFileError{Name: path, Err: err}
	}
	defer f.Close()

	p, err := Encode(f)
	if err != nil {
		if uerr, ok := err.(*UnreadableFileError); ok {
			uerr.Name = path
		}
		return Payload{}, err
	}
	return p, nil
}

// FromBytes wraps raw bytes. An empty mediaType is sniffed from data.
func FromBytes(data []byte, mediaType string) Payload {
	if mediaType == "" {
		mediaType = detect(data)
	}
	return Payload{
		Data:      base64.StdEncoding.EncodeToString(data),
		MediaType: mediaType,
	}
}

func detect(data []byte) string {
	mt, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

func (p Payload) IsZero() bool {
	return p.Data == ""
}

func (p Payload) DataURL() string {
	return "data:" + p.MediaType + ";base64," + p.Data
}

func (p Payload) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, &MalformedEncodingError{Reason: "invalid base64", Err: err}
	}
	return b, nil
}

// ExtractPayloadBytes decodes the data segment of a "<header>,<data>" string.
func ExtractPayloadBytes(s string) ([]byte, error) {
	_, data, err := split(s)
	if err != nil {
		return nil, err
	}
	return Payload{Data: data}.Bytes()
}

func split(s string) (header, data string, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", &MalformedEncodingError{Reason: fmt.Sprintf("expected 2 comma separated segments, got %d", len(parts))}
	}
	if parts[0] == "" {
		return "", "", &MalformedEncodingError{Reason: "empty header"}
	}
	if parts[1] == "" {
		return "", "", &MalformedEncodingError{Reason: "empty data"}
	}
	return parts[0], parts[1], nil
}

// ParseDataURL parses "data:<type>/<subtype>;base64,<data>" and validates the base64 data.
func ParseDataURL(s string) (Payload, error) {
	header, data, err := split(s)
	if err != nil {
		return Payload{}, err
	}

	rest, ok := strings.CutPrefix(header, "data:")
	if !ok {
		return Payload{}, &MalformedEncodingError{Reason: "missing data: scheme"}
	}
	raw, ok := strings.CutSuffix(rest, ";base64")
	if !ok {
		return Payload{}, &MalformedEncodingError{Reason: "missing ;base64 marker"}
	}
	if raw == "" {
		return Payload{}, &MalformedEncodingError{Reason: "missing media type"}
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return Payload{}, &MalformedEncodingError{Reason: fmt.Sprintf("invalid media type %q", raw), Err: err}
	}
	if typ, sub, ok := strings.Cut(mediaType, "/"); !ok || typ == "" || sub == "" {
		return Payload{}, &MalformedEncodingError{Reason: fmt.Sprintf("media type %q is not type/subtype", raw)}
	}

	p := Payload{Data: data, MediaType: mediaType}
	if _, err := p.Bytes(); err != nil {
		return Payload{}, err
	}
	return p, nil
}
