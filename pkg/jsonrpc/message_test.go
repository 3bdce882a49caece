package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIdRoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range []any{"1", 1.0, "abc", 42.0} {
		req, err := NewRequest(id, "tools/list", nil)
		require.NoError(t, err)

		data, err := json.Marshal(req)
		require.NoError(t, err)

		var decoded Request
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, id, decoded.Id)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	kind, err := Classify([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	require.NoError(t, err)
	assert.Equal(t, KindRequest, kind)

	kind, err = Classify([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	assert.Equal(t, KindNotification, kind)

	kind, err = Classify([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	require.NoError(t, err)
	assert.Equal(t, KindResponse, kind)

	// A JSON null id means "no id" — classified as notification if a method
	// is present.
	kind, err = Classify([]byte(`{"jsonrpc":"2.0","id":null,"method":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, KindNotification, kind)
}

func TestNewResultAndErrorResponse(t *testing.T) {
	t.Parallel()

	resp, err := NewResult(7, map[string]string{"ok": "yes"})
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{"ok":"yes"}`, string(resp.Result))

	errResp := NewErrorResponse(7, InvalidRequest, "bad", nil)
	assert.Nil(t, errResp.Result)
	assert.Equal(t, InvalidRequest, errResp.Error.Code)
}
