package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/api"
)

// fakeStorage accepts PUTs to /<key> and serves them back on GET
type fakeStorage struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	status       int
}

func newFakeStorage(t *testing.T) (*fakeStorage, *httptest.Server) {
	t.Helper()
	fs := &fakeStorage{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeStorage) serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.status != 0 {
		w.WriteHeader(fs.status)
		return
	}

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fs.objects[key] = data
		fs.contentTypes[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := fs.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", fs.contentTypes[key])
		w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fs *fakeStorage) object(key string) ([]byte, string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.objects[key]
	return data, fs.contentTypes[key], ok
}

// urlGateway signs nothing; it points every URL at the fake storage server
type urlGateway struct {
	baseURL string
	storage *fakeStorage
}

func (g *urlGateway) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	return g.baseURL + "/" + key, nil
}

func (g *urlGateway) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return g.baseURL + "/" + key, nil
}

func (g *urlGateway) HeadObject(ctx context.Context, key string) (*simpleupload.ObjectMeta, error) {
	data, contentType, ok := g.storage.object(key)
	if !ok {
		return nil, simpleupload.ErrObjectNotFound
	}
	return &simpleupload.ObjectMeta{
		ContentLength: int64(len(data)),
		ContentType:   contentType,
		LastModified:  time.Now().UTC(),
		ETag:          `"fake"`,
	}, nil
}

// testEnv runs the real API handler in front of a fake storage server
type testEnv struct {
	storage *fakeStorage
	api     *httptest.Server
	client  *Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	storage, storageSrv := newFakeStorage(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := simpleupload.New(
		simpleupload.WithGateway(&urlGateway{baseURL: storageSrv.URL, storage: storage}),
		simpleupload.WithLogger(logger),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/files", api.NewFilesHandler(svc, logger).Routes())
	apiSrv := httptest.NewServer(r)
	t.Cleanup(apiSrv.Close)

	return &testEnv{
		storage: storage,
		api:     apiSrv,
		client:  NewClient(apiSrv.URL + "/"),
	}
}

// uploadURL asks the API for a text/plain upload URL of five bytes
func (env *testEnv) uploadURL(t *testing.T, key string) string {
	t.Helper()
	result, err := env.client.PresignUpload(context.Background(), simpleupload.UploadRequest{
		Key:           key,
		ContentType:   "text/plain",
		ContentLength: 5,
	})
	require.NoError(t, err)
	return result.URL
}
