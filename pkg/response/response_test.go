package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorT_UsesCanonicalMessage(t *testing.T) {
	r := ErrorT(APIResponseCodeFeatureNotAvailable, map[string]string{"feature": "exports"})
	require.Equal(t, "FEATURE_NOT_AVAILABLE", r.Message)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"code":40303,"message":"FEATURE_NOT_AVAILABLE","data":{"feature":"exports"}}`, string(b))
}

func TestEveryCodeHasMessage(t *testing.T) {
	for code, msg := range codeToMsg {
		require.NotEmpty(t, msg, "code %d", code)
	}
	require.Equal(t, "ok", OKT[any](nil).Message)
}
