package parse

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	k, v, ok := KeyValue("Content-Type: text/plain")
	assert.True(t, ok)
	assert.Equal(t, "Content-Type", k)
	assert.Equal(t, " text/plain", v)

	k, v, ok = KeyValue("page=2", '=', ':')
	assert.True(t, ok)
	assert.Equal(t, "page", k)
	assert.Equal(t, "2", v)

	_, _, ok = KeyValue("nodelimiter")
	assert.False(t, ok)
}

func TestHeaders(t *testing.T) {
	h, err := Headers([]string{"Accept: a", "accept:b ", "X-Empty:"})
	require.NoError(t, err)
	assert.Equal(t, http.Header{"Accept": {"a", "b"}, "X-Empty": {""}}, h)

	_, err = Headers([]string{"no colon"})
	assert.Error(t, err)
	_, err = Headers([]string{": value"})
	assert.Error(t, err)
}

func TestSplitTrim(t *testing.T) {
	assert.Nil(t, SplitTrim("", ","))
	assert.Equal(t, []string{"method", "path"}, SplitTrim(" method, ,path ", ","))
}
