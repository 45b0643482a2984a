package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/custompost/auth"
	"github.com/ridoystarlord/custompost/categories"
	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/database/dbtest"
	"github.com/ridoystarlord/custompost/forms"
	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/logger"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/records"
	"github.com/ridoystarlord/custompost/storage"
)

const token = "test-token"

type harness struct {
	t       *testing.T
	handler http.Handler
	exec    database.Executor
	fs      afero.Fs
}

type response struct {
	Status  int
	Header  http.Header
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	exec := dbtest.Open(t)
	store := categories.NewStore(exec)
	require.NoError(t, store.EnsureTable(t.Context()))

	catalog := introspect.NewCatalog(exec, "")
	fs := afero.NewBasePathFs(afero.NewMemMapFs(), "/")
	sink := storage.NewFileSink(fs)

	srv := New(Options{
		Catalog:       catalog,
		Provisioner:   provisioner.New(exec, catalog, store, provisioner.Lenient, logger.Nop()),
		Forms:         forms.NewInferencer(catalog),
		Records:       records.NewEngine(exec, catalog, sink, nil, logger.Nop()),
		Authenticator: auth.NewStaticTokens([]string{token + ":admin"}),
		Uploads:       fs,
		Logger:        logger.Nop(),
	})
	return &harness{t: t, handler: srv.Handler(), exec: exec, fs: fs}
}

func (h *harness) do(req *http.Request, authed bool) *response {
	h.t.Helper()
	if authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	res := &response{Status: rec.Code, Header: rec.Header()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), res), rec.Body.String())
	}
	return res
}

func (h *harness) json(method, path, body string) *response {
	h.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, true)
}

func (h *harness) createActs() {
	h.t.Helper()
	res := h.json("POST", "/custom-post/create-table", `{
		"table_name": "acts",
		"fields": [
			{"name": "title", "type": "string"},
			{"name": "act_content", "type": "richtext"},
			{"name": "support_file", "type": "file"},
			{"name": "views", "type": "integer"},
			{"name": "released", "type": "date"},
			{"name": "featured", "type": "boolean"}
		]
	}`)
	require.Equal(h.t, http.StatusOK, res.Status, res.Message)
}

func TestCreateTable(t *testing.T) {
	h := newHarness(t)

	res := h.json("POST", "/custom-post/create-table", `{"table_name": "Acts", "fields": {"title": "string", "act_content": "richtext"}, "category_id": "7"}`)
	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Success)
	assert.Equal(t, "Table 'customtable_acts' created successfully", res.Message)

	var data provisioner.Result
	require.NoError(t, json.Unmarshal(res.Data, &data))
	assert.Equal(t, []string{"id", "title", "act_content", "category_id", "category_name", "is_active", "created_at", "updated_at"}, data.Columns)
	assert.False(t, data.CategoryLinked)

	res = h.json("POST", "/custom-post/create-table", `{"table_name": "acts", "fields": [{"name": "x", "type": "string"}]}`)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.False(t, res.Success)
}

func TestCreateTable_BadInput(t *testing.T) {
	h := newHarness(t)

	res := h.json("POST", "/custom-post/create-table", `{"fields": []}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Errors, "table_name")

	res = h.json("POST", "/custom-post/create-table", `{"table_name": "acts", "fields": "not json"}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Errors, "fields")

	res = h.json("POST", "/custom-post/create-table", `{"table_name": "acts", "fields": [], "category_id": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = h.json("POST", "/custom-post/create-table", `{"table_name": "acts", "fields": [{"name": "x", "type": "string"}], "category_id": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Errors, "category_id")

	res = h.json("POST", "/custom-post/create-table", `{`)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestCreateTable_FieldsAsJSONString(t *testing.T) {
	h := newHarness(t)
	res := h.json("POST", "/custom-post/create-table", `{"table_name": "acts", "fields": "[{\"name\":\"title\",\"type\":\"string\"}]"}`)
	assert.Equal(t, http.StatusOK, res.Status, res.Message)
}

func TestUnauthorized(t *testing.T) {
	h := newHarness(t)
	h.createActs()

	for _, tc := range []struct{ method, path, body string }{
		{"POST", "/custom-post/create-table", `{}`},
		{"GET", "/custom-post/tables", ``},
		{"GET", "/custom-post-form-fields/customtable_acts", ``},
		{"POST", "/custom-post/create/customtable_acts", `{}`},
		{"POST", "/custom-post/create/customtable_acts", `{not json`},
		{"POST", "/custom-post/create/customtable_nope", `{not json`},
		{"GET", "/custom-post/list/customtable_acts", ``},
		{"GET", "/custom-post/details/customtable_acts/1", ``},
		{"POST", "/custom-post/update/customtable_acts/abc", `{}`},
		{"PUT", "/custom-post/update/customtable_acts/1", `{not json`},
		{"DELETE", "/custom-post/delete/customtable_acts/1", ``},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		res := h.do(req, false)
		assert.Equal(t, http.StatusUnauthorized, res.Status, "%s %s %s", tc.method, tc.path, tc.body)
		assert.False(t, res.Success)
	}

	rows := h.json("GET", "/custom-post/list/customtable_acts", "")
	require.Equal(t, http.StatusOK, rows.Status)
	assert.JSONEq(t, `[]`, string(rows.Data))
}

func TestUnauthorized_MultipartNotStored(t *testing.T) {
	h := newHarness(t)
	h.createActs()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("support_file", "a.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/custom-post/create/customtable_acts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := h.do(req, false)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	exists, err := afero.DirExists(h.fs, "/uploads")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTableResolvedBeforeID(t *testing.T) {
	h := newHarness(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/custom-post/details/customtable_nope/abc"},
		{"POST", "/custom-post/update/customtable_nope/abc"},
		{"DELETE", "/custom-post/delete/customtable_nope/abc"},
		{"POST", "/custom-post/create/customtable_nope"},
	} {
		res := h.json(tc.method, tc.path, `{not json`)
		assert.Equal(t, http.StatusNotFound, res.Status, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Table not found", res.Message, "%s %s", tc.method, tc.path)
	}
}

func TestTablesAndFormFields(t *testing.T) {
	h := newHarness(t)

	res := h.json("GET", "/custom-post/tables", "")
	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `[]`, string(res.Data))

	h.createActs()

	res = h.json("GET", "/custom-post/tables", "")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "All Post List!", res.Message)
	assert.JSONEq(t, `[{"table_name": "customtable_acts"}]`, string(res.Data))

	res = h.json("GET", "/custom-post-form-fields/customtable_acts", "")
	require.Equal(t, http.StatusOK, res.Status)
	var fields []forms.FormField
	require.NoError(t, json.Unmarshal(res.Data, &fields))
	kinds := map[string]forms.Kind{}
	for _, f := range fields {
		kinds[f.Name] = f.Type
	}
	assert.Equal(t, map[string]forms.Kind{
		"title":         forms.KindText,
		"act_content":   forms.KindRichtext,
		"support_file":  forms.KindFile,
		"views":         forms.KindNumber,
		"released":      forms.KindText,
		"featured":      forms.KindCheckbox,
		"category_id":   forms.KindNumber,
		"category_name": forms.KindText,
	}, kinds)

	res = h.json("GET", "/custom-post-form-fields/customtable_nope", "")
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = h.json("GET", "/custom-post-form-fields/post_categories", "")
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestRecordLifecycle(t *testing.T) {
	h := newHarness(t)
	h.createActs()

	res := h.json("POST", "/custom-post/create/customtable_acts", `{"title": "First", "views": 3, "released": "2024-05-01", "featured": true, "bogus": "x"}`)
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	assert.Equal(t, "Post created successfully!", res.Message)
	assert.JSONEq(t, `{"id": 1}`, string(res.Data))

	res = h.json("GET", "/custom-post/details/customtable_acts/1", "")
	require.Equal(t, http.StatusOK, res.Status)
	var row map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &row))
	assert.Equal(t, "First", row["title"])
	assert.Equal(t, float64(3), row["views"])
	assert.Equal(t, "2024-05-01", row["released"])
	assert.Equal(t, true, row["featured"])
	assert.Equal(t, true, row["is_active"])
	assert.NotContains(t, row, "bogus")

	res = h.json("POST", "/custom-post/update/customtable_acts/1", `{"title": "Renamed"}`)
	require.Equal(t, http.StatusOK, res.Status, res.Message)

	res = h.json("GET", "/custom-post/list/customtable_acts", "")
	require.Equal(t, http.StatusOK, res.Status)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Renamed", rows[0]["title"])
	assert.Equal(t, "2024-05-01", rows[0]["released"])
	assert.NotContains(t, rows[0], "updated_at")

	res = h.json("DELETE", "/custom-post/delete/customtable_acts/1", "")
	require.Equal(t, http.StatusOK, res.Status)

	res = h.json("GET", "/custom-post/details/customtable_acts/1", "")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Post not found", res.Message)

	res = h.json("DELETE", "/custom-post/delete/customtable_acts/1", "")
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = h.json("GET", "/custom-post/details/customtable_acts/abc", "")
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = h.json("GET", "/custom-post/list/customtable_missing", "")
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestCreateRecord_ValidationFailure(t *testing.T) {
	h := newHarness(t)
	h.createActs()

	res := h.json("POST", "/custom-post/create/customtable_acts", `{"title": "x", "views": "many"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Errors, "views")
}

func TestCreateRecord_Multipart(t *testing.T) {
	h := newHarness(t)
	h.createActs()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "With upload"))
	require.NoError(t, mw.WriteField("views", "5"))
	fw, err := mw.CreateFormFile("support_file", "act 1.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/custom-post/create/customtable_acts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := h.do(req, true)
	require.Equal(t, http.StatusOK, res.Status, res.Message)

	res = h.json("GET", "/custom-post/details/customtable_acts/1", "")
	require.Equal(t, http.StatusOK, res.Status)
	var row map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &row))
	rel, _ := row["support_file"].(string)
	assert.True(t, strings.HasPrefix(rel, "uploads/customtable_acts/support_file/"), rel)
	assert.True(t, strings.HasSuffix(rel, "_act_1.pdf"), rel)

	// Stored files are served relative to the API root.
	get := httptest.NewRequest("GET", "/"+rel, nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}

func TestCreateRecord_FormEncoded(t *testing.T) {
	h := newHarness(t)
	h.createActs()

	req := httptest.NewRequest("POST", "/custom-post/create/customtable_acts", strings.NewReader("title=Form+Post&views=9"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := h.do(req, true)
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	assert.JSONEq(t, `{"id": 1}`, string(res.Data))
}

func TestRequestIDAndHealth(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	res := h.do(req, false)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Header.Get(RequestIDHeader))

	req = httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	res = h.do(req, false)
	assert.Equal(t, "abc-123", res.Header.Get(RequestIDHeader))
}
