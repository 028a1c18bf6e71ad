package payload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEncodeSniffsMediaType(t *testing.T) {
	p, err := Encode(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MediaType)

	raw, err := p.Bytes()
	require.NoError(t, err)
	assert.Equal(t, pngHeader, raw)
}

func TestEncodeUnreadable(t *testing.T) {
	boom := errors.New("boom")
	_, err := Encode(iotest.ErrReader(boom))

	var uerr *UnreadableFileError
	require.ErrorAs(t, err, &uerr)
	assert.ErrorIs(t, err, boom)
}

func TestEncodeEmpty(t *testing.T) {
	_, err := Encode(bytes.NewReader(nil))
	var uerr *UnreadableFileError
	assert.ErrorAs(t, err, &uerr)
}

func TestEncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0600))

	p, err := EncodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MediaType)

	_, err = EncodeFile(filepath.Join(t.TempDir(), "missing.png"))
	var uerr *UnreadableFileError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, uerr.Name, "missing.png")
}

func TestExtractPayloadBytesRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{0},
		[]byte("hello, world"),
		bytes.Repeat([]byte{0xff, 0x00, 0x2c}, 100),
	}
	for _, in := range inputs {
		p := FromBytes(in, "application/octet-stream")
		out, err := ExtractPayloadBytes(p.DataURL())
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestExtractPayloadBytesMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"no delimiter here",
		"a,b,c",
		",data",
		"data:image/png;base64,",
		"data:image/png;base64,!!!",
	} {
		t.Run(s, func(t *testing.T) {
			data, err := ExtractPayloadBytes(s)
			var merr *MalformedEncodingError
			require.ErrorAs(t, err, &merr)
			assert.Empty(t, data)
		})
	}
}

func TestParseDataURL(t *testing.T) {
	p, err := ParseDataURL("data:image/jpeg;base64,AAEC")
	require.NoError(t, err)
	assert.Equal(t, Payload{Data: "AAEC", MediaType: "image/jpeg"}, p)
	assert.Equal(t, "data:image/jpeg;base64,AAEC", p.DataURL())
}

func TestParseDataURLMalformed(t *testing.T) {
	for name, s := range map[string]string{
		"no scheme":      "image/png;base64,AAEC",
		"no marker":      "data:image/png,AAEC",
		"no media type":  "data:;base64,AAEC",
		"bad base64":     "data:image/png;base64,!!!",
		"no delimiter":   "data:image/png;base64",
		"extra segments": "data:image/png;base64,AA,EC",
		"bad media type": "data:not a media type;;base64,AAEC",
		"no subtype":     "data:image;base64,AAEC",
		"empty subtype":  "data:image/;base64,AAEC",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataURL(s)
			var merr *MalformedEncodingError
			assert.ErrorAs(t, err, &merr)
		})
	}
}

func TestParseDataURLNormalizesMediaType(t *testing.T) {
	p, err := ParseDataURL("data:Image/PNG;charset=binary;base64,AAEC")
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MediaType)
}

func TestFromBytesSniffsWhenUntyped(t *testing.T) {
	p := FromBytes(pngHeader, "")
	assert.Equal(t, "image/png", p.MediaType)
	assert.False(t, p.IsZero())
	assert.True(t, Payload{}.IsZero())
}
