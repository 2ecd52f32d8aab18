package supabase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/blob"
	"github.com/Madofly35/GestLoc/internal/blob/supabase"
)

func newServer(t *testing.T) (*httptest.Server, map[string][]byte) {
	t.Helper()

	objects := map[string][]byte{}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /storage/v1/object/sign/{bucket}/{path...}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExpiresIn int `json:"expiresIn"`
		}

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3600, req.ExpiresIn)

		key := r.PathValue("bucket") + "/" + r.PathValue("path")
		if _, ok := objects[key]; !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))

			return
		}

		json.NewEncoder(w).Encode(map[string]string{"signedURL": "/object/sign/" + key + "?token=abc"})
	})

	mux.HandleFunc("POST /storage/v1/object/{bucket}/{path...}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "true", r.Header.Get("x-upsert"))
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))

		data, _ := io.ReadAll(r.Body)
		objects[r.PathValue("bucket")+"/"+r.PathValue("path")] = data

		w.Write([]byte(`{"Key":"ok"}`))
	})

	mux.HandleFunc("GET /storage/v1/object/authenticated/{bucket}/{path...}", func(w http.ResponseWriter, r *http.Request) {
		data, ok := objects[r.PathValue("bucket")+"/"+r.PathValue("path")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))

			return
		}

		w.Write(data)
	})

	mux.HandleFunc("DELETE /storage/v1/object/{bucket}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prefixes []string `json:"prefixes"`
		}

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		for _, p := range req.Prefixes {
			delete(objects, r.PathValue("bucket")+"/"+p)
		}

		w.Write([]byte(`[]`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts, objects
}

func TestClient_RoundTrip(t *testing.T) {
	ts, objects := newServer(t)
	ctx := context.Background()
	c := supabase.New(ts.URL, "service-key")

	obj, err := c.Upload(ctx, "receipts", "tenant_1/2024/03/receipt_9.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "tenant_1/2024/03/receipt_9.pdf", obj.Path)
	assert.Contains(t, objects, "receipts/tenant_1/2024/03/receipt_9.pdf")

	url, err := c.SignedURL(ctx, "receipts", obj.Path, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/storage/v1/object/sign/receipts/tenant_1/2024/03/receipt_9.pdf?token=abc", url)

	data, err := c.Download(ctx, "receipts", obj.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	require.NoError(t, c.Delete(ctx, "receipts", obj.Path))
	assert.Empty(t, objects)

	_, err = c.Download(ctx, "receipts", obj.Path)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	_, err = c.SignedURL(ctx, "receipts", obj.Path, time.Hour)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestClient_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"statusCode":"500","error":"internal","message":"database down"}`))
	}))
	defer ts.Close()

	c := supabase.New(ts.URL, "service-key")

	_, err := c.Upload(context.Background(), "receipts", "a.pdf", []byte("x"), "application/pdf")
	assert.ErrorIs(t, err, apperr.ErrExternalStorage)
	assert.ErrorContains(t, err, "database down")
}
