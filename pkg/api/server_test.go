package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ssargent/sdbuf/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStartServer_ShutsDownOnCancel(t *testing.T) {
	archive, err := storage.Open("pebble", t.TempDir(), nil)
	require.NoError(t, err)
	defer archive.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServerFactory().CreateServerStarter().StartServer(ctx, archive, nil, ServerConfig{
			Bind: "127.0.0.1",
			Port: 0,
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestArchiveOpener(t *testing.T) {
	archive, err := NewArchiveOpener().OpenArchive("bolt", t.TempDir(), nil)
	require.NoError(t, err)
	assert.NoError(t, archive.Close())

	_, err = NewArchiveOpener().OpenArchive("leveldb", t.TempDir(), nil)
	assert.Error(t, err)
}

func TestSwagger(t *testing.T) {
	env := setupTestServer(t, ServerConfig{APIKey: "secret"})

	t.Run("json document", func(t *testing.T) {
		w := env.do(t, "GET", "/swagger/swagger.json", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, contentTypeJSON, w.Header().Get("Content-Type"))

		var doc struct {
			Swagger  string                    `json:"swagger"`
			BasePath string                    `json:"basePath"`
			Info     map[string]string         `json:"info"`
			Paths    map[string]map[string]any `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "2.0", doc.Swagger)
		assert.Equal(t, "/api/v1", doc.BasePath)
		assert.Equal(t, "sdbuf REST API", doc.Info["title"])
		for _, path := range []string{"/health", "/encode", "/decode", "/records", "/records/{id}"} {
			assert.Contains(t, doc.Paths, path)
		}
		assert.Contains(t, doc.Paths["/records/{id}"], "put")
	})

	t.Run("yaml document", func(t *testing.T) {
		w := env.do(t, "GET", "/swagger/swagger.yaml", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "2.0", doc["swagger"])
	})

	t.Run("ui page", func(t *testing.T) {
		w := env.do(t, "GET", "/swagger/index.html", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "swagger-ui")
	})

	t.Run("unknown path", func(t *testing.T) {
		w := env.do(t, "GET", "/swagger/missing", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
