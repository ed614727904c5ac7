package http

// Тесты REST-слоя profile-сервиса (роутер + хендлеры + middleware-цепочка).
//
//  Проверяем:
//  - GET /v1/profiles/{id}: happy-path, кривой UUID, отсутствие записи;
//  - драфт-флоу за Bearer-токеном: открытие сессии, загрузка аватара,
//    превью, commit, cancel, закрытие;
//  - 401 без токена на операциях, требующих сессию;
//  - 404 для чужой/отсутствующей сессии;
//  - формат конверта ошибки {error:{code,message,request_id}}.
//
// Подготовка окружения:
//   go test ./internal/transport/http -v -race -count=1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mkrylova/go-profile-service/internal/config"
	"github.com/mkrylova/go-profile-service/internal/draft"
	"github.com/mkrylova/go-profile-service/internal/models"
	"github.com/mkrylova/go-profile-service/internal/service"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

const (
	testSecret = "test-secret"
	testIssuer = "auth-service"
)

// memProfiles — in-memory реализация storage.ProfilesStorage.
type memProfiles struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: make(map[uuid.UUID]*models.Profile)}
}

func (m *memProfiles) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[userID]
	if !ok {
		return nil, storage.ErrNotFoundProfile
	}

	cp := *p
	return &cp, nil
}

func (m *memProfiles) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.byID[userID]; ok {
		cp := *p
		return &cp, nil
	}

	now := time.Now().UTC()
	p := &models.Profile{UserID: userID, CreatedAt: now, UpdatedAt: now}
	m.byID[userID] = p

	cp := *p
	return &cp, nil
}

func (m *memProfiles) UpsertProfile(ctx context.Context, userID uuid.UUID, up storage.ProfileUpsert) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	p, ok := m.byID[userID]
	if !ok {
		p = &models.Profile{UserID: userID, CreatedAt: now}
		m.byID[userID] = p
	}

	p.FullName = up.FullName
	p.Username = up.Username
	p.Website = up.Website
	p.AvatarPointer = up.AvatarPointer
	p.UpdatedAt = now

	cp := *p
	return &cp, nil
}

func (m *memProfiles) Close() {}

// memBlobs — in-memory Blob Store Gateway.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (b *memBlobs) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.objects[key]; ok {
		return storage.ErrObjectExists
	}
	b.objects[key] = data

	return nil
}

func (b *memBlobs) PublicURL(ctx context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (b *memBlobs) Remove(ctx context.Context, keys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, k := range keys {
		delete(b.objects, k)
	}
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memProfiles, *memBlobs) {
	t.Helper()

	store := newMemProfiles()
	blobs := newMemBlobs()

	cfg := &config.Config{}
	svc := service.New(store, nil, nil, cfg)

	drafts := draft.NewManager(svc, func(ctx context.Context) (storage.Avatars, error) {
		return blobs, nil
	}, draft.Options{MaxUploadBytes: 1 << 20})

	router := NewRouter(svc, drafts, Options{
		Logger:    slog.Default(),
		Timeout:   5 * time.Second,
		BasePath:  "/v1",
		JWTSecret: testSecret,
		JWTIssuer: testIssuer,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, store, blobs
}

func bearerToken(t *testing.T, uid uuid.UUID) string {
	t.Helper()

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": uid.String(),
		"iss": testIssuer,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return token
}

func doRequest(t *testing.T, method, url, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestGetProfile_OK(t *testing.T) {
	srv, store, _ := newTestServer(t)

	uid := uuid.New()
	_, err := store.UpsertProfile(context.Background(), uid, storage.ProfileUpsert{
		FullName: "Alice", Username: "alice", Website: "https://example.com",
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodGet, srv.URL+"/v1/profiles/"+uid.String(), "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decodeBody[ProfileView](t, resp)
	require.Equal(t, uid.String(), view.UserID)
	require.Equal(t, "Alice", view.FullName)
	require.NotNil(t, view.Website)
	require.Equal(t, "https://example.com", *view.Website)
	require.Nil(t, view.AvatarPointer, "пустой указатель отдаётся как null")
}

func TestGetProfile_BadID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/v1/profiles/not-a-uuid", "", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProfile_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/v1/profiles/"+uuid.NewString(), "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var envelope struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, "not_found", envelope.Error.Code)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestOpenDraft_RequiresAuth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", "", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOpenDraft_InvalidTokenRejected(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", "garbage.token.here", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDraftFlow_UploadCommit(t *testing.T) {
	srv, store, blobs := newTestServer(t)

	uid := uuid.New()
	token := bearerToken(t, uid)

	// Открытие сессии неявно создаёт запись профиля.
	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", token, nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	opened := decodeBody[DraftView](t, resp)
	require.NotEmpty(t, opened.SessionID)
	require.Equal(t, "idle", opened.Phase)
	require.Equal(t, "none", opened.Candidate.Kind)

	base := srv.URL + "/v1/account/draft/" + opened.SessionID

	// Загрузка аватара: кандидат выставлен, блоб лежит в хранилище.
	body, formType := multipartImage(t, "file", "a.png", "image/png", []byte("png-bytes"))
	resp = doRequest(t, http.MethodPost, base+"/avatar", token, body, formType)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	uploaded := decodeBody[DraftView](t, resp)
	require.Equal(t, "set", uploaded.Candidate.Kind)
	require.NotNil(t, uploaded.Candidate.Path)
	require.Contains(t, *uploaded.Candidate.Path, "avatars/"+uid.String()+"/")

	blobs.mu.Lock()
	require.Len(t, blobs.objects, 1)
	blobs.mu.Unlock()

	// Commit фиксирует поля и кандидат-указатель.
	commitBody := bytes.NewBufferString(`{"full_name":"Alice","username":"alice","website":"https://example.com"}`)
	resp = doRequest(t, http.MethodPost, base+"/commit", token, commitBody, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	committed := decodeBody[DraftView](t, resp)
	require.Equal(t, "committed", committed.Phase)
	require.Equal(t, "none", committed.Candidate.Kind)
	require.NotNil(t, committed.Committed)
	require.Equal(t, *uploaded.Candidate.Path, *committed.Committed)

	stored, err := store.ProfileByID(context.Background(), uid)
	require.NoError(t, err)
	require.Equal(t, "Alice", stored.FullName)
	require.Equal(t, *uploaded.Candidate.Path, stored.AvatarPointer)
}

func TestDraftFlow_CommitValidationError(t *testing.T) {
	srv, _, _ := newTestServer(t)

	uid := uuid.New()
	token := bearerToken(t, uid)

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", token, nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	opened := decodeBody[DraftView](t, resp)

	// Слишком короткий username -> 400 с текстом для формы.
	commitBody := bytes.NewBufferString(`{"full_name":"Alice","username":"al"}`)
	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft/"+opened.SessionID+"/commit", token, commitBody, "application/json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDraftFlow_PreviewDuringUploadAbsent(t *testing.T) {
	srv, _, _ := newTestServer(t)

	uid := uuid.New()
	token := bearerToken(t, uid)

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", token, nil, "")
	opened := decodeBody[DraftView](t, resp)

	// Превью нет, пока не было загрузки.
	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/account/draft/"+opened.SessionID+"/preview", token, nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDraftFlow_RemoveThenCancel(t *testing.T) {
	srv, store, _ := newTestServer(t)

	uid := uuid.New()
	_, err := store.UpsertProfile(context.Background(), uid, storage.ProfileUpsert{
		FullName: "Alice", Username: "alice", AvatarPointer: "avatars/" + uid.String() + "/old.jpg",
	})
	require.NoError(t, err)

	token := bearerToken(t, uid)
	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", token, nil, "")
	opened := decodeBody[DraftView](t, resp)
	base := srv.URL + "/v1/account/draft/" + opened.SessionID

	resp = doRequest(t, http.MethodDelete, base+"/avatar", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed := decodeBody[DraftView](t, resp)
	require.Equal(t, "cleared", removed.Candidate.Kind)

	// Cancel откатывает маркер: удаление не зафиксировано.
	resp = doRequest(t, http.MethodPost, base+"/cancel", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cancelled := decodeBody[DraftView](t, resp)
	require.Equal(t, "none", cancelled.Candidate.Kind)

	stored, err := store.ProfileByID(context.Background(), uid)
	require.NoError(t, err)
	require.NotEmpty(t, stored.AvatarPointer)
}

func TestDraft_ForeignSessionLooksAbsent(t *testing.T) {
	srv, _, _ := newTestServer(t)

	owner := uuid.New()
	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", bearerToken(t, owner), nil, "")
	opened := decodeBody[DraftView](t, resp)

	// Чужой токен видит 404, а не 403: сессии не перечислимы.
	stranger := bearerToken(t, uuid.New())
	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/account/draft/"+opened.SessionID, stranger, nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDraft_CloseEndsSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	uid := uuid.New()
	token := bearerToken(t, uid)

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", token, nil, "")
	opened := decodeBody[DraftView](t, resp)
	base := srv.URL + "/v1/account/draft/" + opened.SessionID

	resp = doRequest(t, http.MethodDelete, base, token, nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, base, token, nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	srv, _, _ := newTestServer(t)

	uid := uuid.New()
	token := bearerToken(t, uid)

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft", token, nil, "")
	opened := decodeBody[DraftView](t, resp)

	body, formType := multipartImage(t, "file", "a.txt", "text/plain", []byte("hello"))
	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/account/draft/"+opened.SessionID+"/avatar", token, body, formType)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
