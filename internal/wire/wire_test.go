package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer

	err := WriteFrame(&buf, []byte("hello"), DefaultLimits())
	assert.NoError(t, err)

	out := buf.Bytes()
	assert.Equal(t, HeaderSize+5, len(out))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(out[:HeaderSize]))
	assert.Equal(t, []byte("hello"), out[HeaderSize:])
}

func TestWriteFrame_Empty(t *testing.T) {
	var buf bytes.Buffer

	err := WriteFrame(&buf, nil, DefaultLimits())
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes())
}

func TestWriteFrame_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	limits := Limits{MaxFrameBytes: 4}

	err := WriteFrame(&buf, []byte("hello"), limits)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Zero(t, buf.Len())
}

func TestHeader(t *testing.T) {
	b := []byte{0x0d, 0x00, 0x00, 0x00, 0xff}

	n, err := Header(b)
	assert.NoError(t, err)
	assert.Equal(t, uint32(13), n)
}

func TestHeader_Short(t *testing.T) {
	_, err := Header([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrShortHeader)
}

func TestAppendFrame(t *testing.T) {
	out := AppendFrame(nil, []byte("AB"))
	out = AppendFrame(out, []byte("CDE"))

	assert.Equal(t, []byte{
		2, 0, 0, 0, 'A', 'B',
		3, 0, 0, 0, 'C', 'D', 'E',
	}, out)
}
