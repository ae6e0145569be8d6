package xreq

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequest_WithContentLength(t *testing.T) {
	in := "SCRIPT_NAME=/echo\r\nCONTENT_LENGTH=5\n\nhelloEXTRA"
	meta, body, err := ReadRequest(bufio.NewReader(strings.NewReader(in)), 0)
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Key: "SCRIPT_NAME", Value: "/echo"},
		{Key: "CONTENT_LENGTH", Value: "5"},
	}, meta)

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadRequest_BodyUntilEOF(t *testing.T) {
	meta, body, err := ReadRequest(bufio.NewReader(strings.NewReader("A=1\n\nrest of body")), 0)
	require.NoError(t, err)
	assert.Len(t, meta, 1)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "rest of body", string(data))
}

func TestReadRequest_ValueMayContainEquals(t *testing.T) {
	meta, _, err := ReadRequest(bufio.NewReader(strings.NewReader("Q=a=b\n\n")), 0)
	require.NoError(t, err)
	assert.Equal(t, "a=b", meta[0].Value)
}

func TestReadRequest_Errors(t *testing.T) {
	_, _, err := ReadRequest(bufio.NewReader(strings.NewReader("")), 0)
	assert.ErrorIs(t, err, io.EOF)

	_, _, err = ReadRequest(bufio.NewReader(strings.NewReader("A=1\n")), 0)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, _, err = ReadRequest(bufio.NewReader(strings.NewReader("novalue\n\n")), 0)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	_, _, err = ReadRequest(bufio.NewReader(strings.NewReader(strings.Repeat("A=1\n", 10)+"\n")), 8)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

// countingReader 统计从底层读出的字节数。
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// endless 不含换行的无尽输入。
type endless struct{}

func (endless) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'A'
	}
	return len(p), nil
}

func TestReadRequest_LongLineStopsEarly(t *testing.T) {
	src := &countingReader{r: io.LimitReader(endless{}, 64<<20)}
	_, _, err := ReadRequest(bufio.NewReader(src), 1024)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
	assert.LessOrEqual(t, src.n, int64(64<<10), "header limit applies before the line is buffered")
}

func TestReadRequest_LongLineWithinLimit(t *testing.T) {
	value := strings.Repeat("v", 10000)
	meta, _, err := ReadRequest(bufio.NewReaderSize(strings.NewReader("K="+value+"\n\n"), 16), 0)
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.Equal(t, value, meta[0].Value)
}

func TestWriteRequest_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, []Pair{{Key: "SCRIPT_NAME", Value: "/upper"}}, []byte("abc")))
	assert.Equal(t, "SCRIPT_NAME=/upper\nCONTENT_LENGTH=3\n\nabc", buf.String())

	meta, body, err := ReadRequest(bufio.NewReader(&buf), 0)
	require.NoError(t, err)
	env, err := Capture(meta)
	require.NoError(t, err)
	assert.Equal(t, "/upper", env.Get(KeyScriptName))
	data, _ := io.ReadAll(body)
	assert.Equal(t, "abc", string(data))
}

func TestReadResponse(t *testing.T) {
	resp, err := ReadResponse(strings.NewReader("Status: 404\r\nContent-Type: text/plain\r\n\r\nmissing"))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, []Pair{{Key: "Content-Type", Value: "text/plain"}}, resp.Header)
	assert.Equal(t, "missing", string(resp.Body))

	_, err = ReadResponse(strings.NewReader("Status: x\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ReadResponse(strings.NewReader("garbage"))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
