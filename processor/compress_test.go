package processor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody_Snappy(t *testing.T) {
	body := []byte(`{"Report_Entry": [{"Employee_ID": "E1001"}]}`)

	header := http.Header{}
	header.Set("Content-Encoding", SnappyEncoding)

	decoded, err := DecodeBody(header, CompressReport(body))
	require.NoError(t, err)
	assert.Equal(t, body, decoded)

	plain, err := DecodeBody(http.Header{}, body)
	require.NoError(t, err)
	assert.Equal(t, body, plain)

	_, err = DecodeBody(header, []byte("definitely not snappy"))
	require.Error(t, err)
}

func TestAcceptsSnappy(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/raas/employees", nil)
	assert.False(t, AcceptsSnappy(r))

	r.Header.Set("Accept-Encoding", "gzip, X-Snappy")
	assert.True(t, AcceptsSnappy(r))
}
