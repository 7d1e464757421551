package jsonsql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientExecuteDecodesRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, MethodSelect, req.Method)
		require.Equal(t, "users", req.Params.From)
		w.Write([]byte(`[[1,"a@x.com"],[2,"b@x.com"]]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	result, err := client.Execute(context.Background(), SelectStar("users", 10))
	require.NoError(t, err)
	require.Len(t, result, 2)
	id, ok := result[0].At(0).Int()
	require.True(t, ok)
	require.EqualValues(t, 1, id)
}

func TestHTTPClientAccessDeniedBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"no access","code":"FORBIDDEN"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.Execute(context.Background(), SelectStar("users", 10))
	require.True(t, IsAccessDenied(err))
}

func TestWhereMarshalsDiscriminatedUnion(t *testing.T) {
	where := And(Eq("id", 1), Like("name", "a%"))
	enc, err := json.Marshal(where)
	require.NoError(t, err)
	require.JSONEq(t, `{"and":[{"eq":["id",1]},{"like":["name","a%"]}]}`, string(enc))
}
