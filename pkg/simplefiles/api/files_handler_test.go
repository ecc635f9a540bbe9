package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-files/pkg/simplefiles"
	authmemory "github.com/tendant/simple-files/pkg/simplefiles/auth/memory"
	queuememory "github.com/tendant/simple-files/pkg/simplefiles/queue/memory"
	repomemory "github.com/tendant/simple-files/pkg/simplefiles/repo/memory"
	memorystorage "github.com/tendant/simple-files/pkg/simplefiles/storage/memory"
)

const (
	tokenAlice = "token-alice"
	tokenBob   = "token-bob"
)

type testEnv struct {
	router chi.Router
	repo   *repomemory.Repository
	blobs  *memorystorage.Backend
	queue  *queuememory.Queue
	alice  uuid.UUID
	bob    uuid.UUID
}

// setupFilesHandlerTest wires a router over in-memory backends
func setupFilesHandlerTest(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:  repomemory.New(),
		blobs: memorystorage.New(),
		queue: queuememory.New(),
		alice: uuid.New(),
		bob:   uuid.New(),
	}

	service, err := simplefiles.New(
		simplefiles.WithRepository(env.repo),
		simplefiles.WithBlobStore(env.blobs),
		simplefiles.WithJobQueue(env.queue),
	)
	require.NoError(t, err)

	identity := authmemory.New(map[string]uuid.UUID{
		tokenAlice: env.alice,
		tokenBob:   env.bob,
	})

	env.router = NewRouter(NewFilesHandler(service, identity, nil), RouterOptions{
		Metrics: NewPrometheusCollector(prometheus.NewRegistry()),
	})
	return env
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) create(t *testing.T, token string, body map[string]interface{}) simplefiles.File {
	t.Helper()
	w := env.do(t, http.MethodPost, "/files", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var file simplefiles.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &file))
	return file
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestFilesHandler_EndToEnd(t *testing.T) {
	env := setupFilesHandlerTest(t)

	folder := env.create(t, tokenAlice, map[string]interface{}{
		"name": "F", "type": "folder", "parentId": 0,
	})
	assert.True(t, folder.Parent.IsRoot())

	image := env.create(t, tokenAlice, map[string]interface{}{
		"name": "I.png", "type": "image", "parentId": folder.ID.String(), "data": b64("png-bytes"),
	})
	assert.Equal(t, simplefiles.KindImage, image.Kind)
	folderID, ok := image.Parent.FolderID()
	require.True(t, ok)
	assert.Equal(t, folder.ID, folderID)

	jobs := env.queue.Jobs()
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].FileID)
	assert.Equal(t, image.ID, *jobs[0].FileID)
	assert.Equal(t, env.alice, jobs[0].UserID)

	w := env.do(t, http.MethodGet, "/files?parentId="+folder.ID.String()+"&page=0", tokenAlice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []simplefiles.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, image.ID, listed[0].ID)

	dataPath := "/files/" + image.ID.String() + "/data"
	w = env.do(t, http.MethodGet, dataPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/files/"+image.ID.String()+"/publish", tokenAlice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var published simplefiles.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &published))
	assert.True(t, published.IsPublic)

	w = env.do(t, http.MethodGet, dataPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestFilesHandler_CreateFile_Unauthorized(t *testing.T) {
	env := setupFilesHandlerTest(t)

	for _, token := range []string{"", "unknown-token"} {
		w := env.do(t, http.MethodPost, "/files", token, map[string]interface{}{"name": "a", "type": "folder"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Unauthorized", errorMessage(t, w))
	}
}

func TestFilesHandler_CreateFile_Validation(t *testing.T) {
	env := setupFilesHandlerTest(t)
	plain := env.create(t, tokenAlice, map[string]interface{}{"name": "a.txt", "type": "file", "data": b64("x")})

	tests := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"missing name wins over everything", map[string]interface{}{"type": "bogus", "parentId": uuid.NewString()}, "Missing name"},
		{"missing type", map[string]interface{}{"name": "a"}, "Missing type"},
		{"unknown type", map[string]interface{}{"name": "a", "type": "video", "data": b64("x")}, "Missing type"},
		{"missing data wins over parent", map[string]interface{}{"name": "a", "type": "file", "parentId": uuid.NewString()}, "Missing data"},
		{"parent not found", map[string]interface{}{"name": "a", "type": "folder", "parentId": uuid.NewString()}, "Parent not found"},
		{"malformed parent", map[string]interface{}{"name": "a", "type": "folder", "parentId": "nope"}, "Parent not found"},
		{"parent is not a folder", map[string]interface{}{"name": "a", "type": "folder", "parentId": plain.ID.String()}, "Parent is not a folder"},
		{"invalid base64", map[string]interface{}{"name": "a", "type": "file", "data": "!!!"}, "Invalid data"},
		{"invalid json", "{", msgInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/files", tokenAlice, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, errorMessage(t, w))
		})
	}
}

func TestFilesHandler_CreateFile_WireFormat(t *testing.T) {
	env := setupFilesHandlerTest(t)

	w := env.do(t, http.MethodPost, "/files", tokenAlice, map[string]interface{}{
		"name": "doc.txt", "type": "file", "isPublic": "true", "data": b64("hello"),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, env.alice.String(), body["userId"])
	assert.Equal(t, "doc.txt", body["name"])
	assert.Equal(t, "file", body["type"])
	assert.Equal(t, true, body["isPublic"])
	assert.Equal(t, float64(0), body["parentId"])
	assert.NotContains(t, body, "contentKey")
	assert.NotContains(t, body, "ContentKey")
	assert.Empty(t, env.queue.Jobs())
}

func TestFilesHandler_CreateFile_BodyTooLarge(t *testing.T) {
	env := setupFilesHandlerTest(t)
	service, err := simplefiles.New(simplefiles.WithRepository(env.repo), simplefiles.WithBlobStore(env.blobs))
	require.NoError(t, err)
	router := NewRouter(NewFilesHandler(service, authmemory.New(map[string]uuid.UUID{tokenAlice: env.alice}), nil), RouterOptions{
		MaxBodyBytes: 64,
	})

	payload := fmt.Sprintf(`{"name":"big","type":"file","data":"%s"}`, strings.Repeat("A", 128))
	req := httptest.NewRequest(http.MethodPost, "/files", strings.NewReader(payload))
	req.Header.Set(TokenHeader, tokenAlice)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestFilesHandler_GetFile(t *testing.T) {
	env := setupFilesHandlerTest(t)
	file := env.create(t, tokenAlice, map[string]interface{}{"name": "a.txt", "type": "file", "data": b64("x")})
	path := "/files/" + file.ID.String()

	w := env.do(t, http.MethodGet, path, tokenAlice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got simplefiles.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, file.ID, got.ID)

	w = env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, path, tokenBob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", errorMessage(t, w))

	w = env.do(t, http.MethodGet, "/files/not-a-uuid", tokenAlice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/files/"+uuid.NewString(), tokenAlice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilesHandler_ListFiles(t *testing.T) {
	env := setupFilesHandlerTest(t)
	folder := env.create(t, tokenAlice, map[string]interface{}{"name": "dir", "type": "folder"})
	plain := env.create(t, tokenAlice, map[string]interface{}{"name": "a.txt", "type": "file", "data": b64("x")})
	for i := 0; i < 25; i++ {
		env.create(t, tokenAlice, map[string]interface{}{
			"name": fmt.Sprintf("f%02d", i), "type": "folder", "parentId": folder.ID.String(),
		})
	}
	env.create(t, tokenBob, map[string]interface{}{"name": "bob-root", "type": "folder"})

	list := func(t *testing.T, token, query string) (int, []simplefiles.File) {
		w := env.do(t, http.MethodGet, "/files"+query, token, nil)
		var files []simplefiles.File
		if w.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
			require.NotNil(t, files, "empty listings must encode as []")
		}
		return w.Code, files
	}

	code, _ := list(t, "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, files := list(t, tokenAlice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, files, 2)

	code, files = list(t, tokenAlice, "?parentId="+folder.ID.String())
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, files, 20)
	assert.Equal(t, "f00", files[0].Name)

	code, files = list(t, tokenAlice, "?parentId="+folder.ID.String()+"&page=1")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, files, 5)
	assert.Equal(t, "f20", files[0].Name)

	for _, query := range []string{
		"?parentId=not-a-uuid",
		"?parentId=" + uuid.NewString(),
		"?parentId=" + plain.ID.String(),
		"?parentId=" + folder.ID.String() + "&page=9",
	} {
		code, files = list(t, tokenAlice, query)
		assert.Equal(t, http.StatusOK, code, query)
		assert.Empty(t, files, query)
	}

	code, files = list(t, tokenAlice, "?parentId="+folder.ID.String()+"&page=-3")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, files, 20)
}

func TestFilesHandler_PublishUnpublish(t *testing.T) {
	env := setupFilesHandlerTest(t)
	file := env.create(t, tokenAlice, map[string]interface{}{"name": "a.txt", "type": "file", "data": b64("x")})
	base := "/files/" + file.ID.String()

	for _, token := range []string{"", tokenBob} {
		w := env.do(t, http.MethodPut, base+"/publish", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	steps := []struct {
		action string
		want   bool
	}{
		{"publish", true},
		{"publish", true},
		{"unpublish", false},
		{"unpublish", false},
	}
	for _, step := range steps {
		w := env.do(t, http.MethodPut, base+"/"+step.action, tokenAlice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got simplefiles.File
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, step.want, got.IsPublic, step.action)
	}

	w := env.do(t, http.MethodPut, base+"/unpublish", tokenBob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/files/garbage/publish", tokenAlice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilesHandler_GetFileData(t *testing.T) {
	env := setupFilesHandlerTest(t)
	folder := env.create(t, tokenAlice, map[string]interface{}{"name": "dir", "type": "folder", "isPublic": true})
	private := env.create(t, tokenAlice, map[string]interface{}{"name": "secret.png", "type": "image", "data": b64("original")})

	t.Run("folder has no contents", func(t *testing.T) {
		for _, token := range []string{tokenAlice, tokenBob, ""} {
			w := env.do(t, http.MethodGet, "/files/"+folder.ID.String()+"/data", token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "A folder has no contents", errorMessage(t, w))
		}
	})

	t.Run("private folder hidden from strangers", func(t *testing.T) {
		closed := env.create(t, tokenAlice, map[string]interface{}{"name": "closed", "type": "folder"})

		w := env.do(t, http.MethodGet, "/files/"+closed.ID.String()+"/data", tokenAlice, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		for _, token := range []string{tokenBob, ""} {
			hidden := env.do(t, http.MethodGet, "/files/"+closed.ID.String()+"/data", token, nil)
			missing := env.do(t, http.MethodGet, "/files/"+uuid.NewString()+"/data", token, nil)
			assert.Equal(t, http.StatusNotFound, hidden.Code)
			assert.Equal(t, missing.Body.String(), hidden.Body.String())
		}
	})

	t.Run("non-owner indistinguishable from missing", func(t *testing.T) {
		hidden := env.do(t, http.MethodGet, "/files/"+private.ID.String()+"/data", tokenBob, nil)
		missing := env.do(t, http.MethodGet, "/files/"+uuid.NewString()+"/data", tokenBob, nil)
		malformed := env.do(t, http.MethodGet, "/files/xyz/data", tokenBob, nil)

		assert.Equal(t, http.StatusNotFound, hidden.Code)
		assert.Equal(t, missing.Code, hidden.Code)
		assert.Equal(t, missing.Body.String(), hidden.Body.String())
		assert.Equal(t, missing.Body.String(), malformed.Body.String())
	})

	t.Run("size variants", func(t *testing.T) {
		stored, err := env.repo.GetFile(t.Context(), private.ID)
		require.NoError(t, err)
		require.NoError(t, env.blobs.Upload(t.Context(), stored.ContentKey+"_250", strings.NewReader("thumb-250")))

		tests := []struct {
			size string
			want string
		}{
			{"", "original"},
			{"0", "original"},
			{"250", "thumb-250"},
			{"medium", "thumb-250"},
			{"500", "original"},
			{"small", "original"},
			{"huge", "original"},
		}
		for _, tt := range tests {
			w := env.do(t, http.MethodGet, "/files/"+private.ID.String()+"/data?size="+tt.size, tokenAlice, nil)
			require.Equal(t, http.StatusOK, w.Code, tt.size)
			assert.Equal(t, tt.want, w.Body.String(), tt.size)
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		}
	})
}

func TestFilesHandler_BearerToken(t *testing.T) {
	env := setupFilesHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", "Bearer "+tokenAlice)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHealth(t *testing.T) {
	env := setupFilesHandlerTest(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
