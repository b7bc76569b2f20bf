package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zauremazhikova/linkpage/internal/app"
	"github.com/zauremazhikova/linkpage/internal/config"
	"github.com/zauremazhikova/linkpage/internal/db/storage"
	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/logger/message"
	"github.com/zauremazhikova/linkpage/internal/services"
)

type discardDriver struct{}

func (discardDriver) Debug(*message.LogMessage) {}
func (discardDriver) Info(*message.LogMessage)  {}
func (discardDriver) Warn(*message.LogMessage)  {}
func (discardDriver) Error(*message.LogMessage) {}
func (discardDriver) Fatal(*message.LogMessage) {}
func (discardDriver) Panic(*message.LogMessage) {}

type noopAccessLogger struct{}

func (noopAccessLogger) WriteToLog(time.Time, string, string, int, string) {}

type linkPayload struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

type resultPayload struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// startTestServer поднимает приложение в Memory-режиме поверх httptest.
func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	_, trusted, err := net.ParseCIDR("192.168.1.0/24")
	require.NoError(t, err)

	config.AppConfig = &config.Config{
		ServerAddr:    ":8080",
		BaseURL:       "http://localhost:8080",
		StorageType:   "Memory",
		PGConfig:      &config.PostgresConfig{},
		JWTSecretKey:  "supersecretkey",
		JWTTokenExp:   time.Hour,
		JWTCookieName: "auth_token",
		TrustedSubnet: "192.168.1.0/24",
		TrustedIPNet:  trusted,
	}
	logger.Log = discardDriver{}
	logger.Logging = noopAccessLogger{}
	storage.Store = storage.NewStorage()

	srv := httptest.NewServer(app.InitHandlers(services.NewLinkService("Memory")))
	t.Cleanup(srv.Close)
	return srv
}

// newClient — resty-клиент с cookie jar: все запросы идут от одного пользователя.
func newClient(t *testing.T) *resty.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return resty.New().SetCookieJar(jar)
}

func createLink(t *testing.T, client *resty.Client, baseURL, title string) linkPayload {
	t.Helper()

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(fmt.Sprintf(`{"title":%q,"url":"https://%s.example"}`, title, title)).
		Post(baseURL + "/api/links")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	var res resultPayload
	require.NoError(t, json.Unmarshal(resp.Body(), &res))
	require.True(t, res.Success)

	var link linkPayload
	require.NoError(t, json.Unmarshal(res.Data, &link))
	require.NotEmpty(t, link.ID)
	return link
}

func listLinks(t *testing.T, client *resty.Client, baseURL string) []linkPayload {
	t.Helper()

	resp, err := client.R().Get(baseURL + "/api/user/links")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var links []linkPayload
	require.NoError(t, json.Unmarshal(resp.Body(), &links))
	return links
}

func TestLinkLifecycle(t *testing.T) {
	srv := startTestServer(t)
	client := newClient(t)

	a := createLink(t, client, srv.URL, "alpha")
	b := createLink(t, client, srv.URL, "beta")
	c := createLink(t, client, srv.URL, "gamma")

	// порядок создания — это и есть исходные позиции
	links := listLinks(t, client, srv.URL)
	require.Len(t, links, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, idsOf(links))
	for i, l := range links {
		assert.Equal(t, i, l.Position)
	}

	// переупорядочивание: сервер возвращает авторитетный порядок
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(fmt.Sprintf(`{"link_ids":[%q,%q,%q]}`, c.ID, a.ID, b.ID)).
		Put(srv.URL + "/api/user/links/order")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var res resultPayload
	require.NoError(t, json.Unmarshal(resp.Body(), &res))
	require.True(t, res.Success)

	var ordered []linkPayload
	require.NoError(t, json.Unmarshal(res.Data, &ordered))
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, idsOf(ordered))

	// и он же виден при повторном чтении
	links = listLinks(t, client, srv.URL)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, idsOf(links))
	for i, l := range links {
		assert.Equal(t, i, l.Position)
	}

	// удаление головы списка уплотняет позиции оставшихся
	resp, err = client.R().Delete(srv.URL + "/api/links/" + c.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	links = listLinks(t, client, srv.URL)
	require.Len(t, links, 2)
	assert.Equal(t, []string{a.ID, b.ID}, idsOf(links))
	for i, l := range links {
		assert.Equal(t, i, l.Position)
	}
}

func TestReorderRejectsForeignLink(t *testing.T) {
	srv := startTestServer(t)

	owner := newClient(t)
	ownerLink := createLink(t, owner, srv.URL, "owner")

	intruder := newClient(t)
	createLink(t, intruder, srv.URL, "intruder")

	// чужой идентификатор в перестановке — запрещено
	resp, err := intruder.R().
		SetHeader("Content-Type", "application/json").
		SetBody(fmt.Sprintf(`{"link_ids":[%q]}`, ownerLink.ID)).
		Put(srv.URL + "/api/user/links/order")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())

	// состояние владельца не изменилось
	links := listLinks(t, owner, srv.URL)
	require.Len(t, links, 1)
	assert.Equal(t, ownerLink.ID, links[0].ID)
	assert.Equal(t, 0, links[0].Position)
}

func TestReorderRejectsIncompleteSet(t *testing.T) {
	srv := startTestServer(t)
	client := newClient(t)

	a := createLink(t, client, srv.URL, "alpha")
	createLink(t, client, srv.URL, "beta")

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(fmt.Sprintf(`{"link_ids":[%q]}`, a.ID)).
		Put(srv.URL + "/api/user/links/order")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
}

func TestCreateAcceptsGzipBody(t *testing.T) {
	srv := startTestServer(t)
	client := newClient(t)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"title":"Packed","url":"https://packed.example"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Content-Encoding", "gzip").
		SetBody(buf.Bytes()).
		Post(srv.URL + "/api/links")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())

	links := listLinks(t, client, srv.URL)
	require.Len(t, links, 1)
	assert.Equal(t, "Packed", links[0].Title)
}

func TestPublicPageShowsOnlyActiveLinks(t *testing.T) {
	srv := startTestServer(t)
	client := newClient(t)

	a := createLink(t, client, srv.URL, "visible")
	b := createLink(t, client, srv.URL, "hidden")

	// выключаем вторую ссылку
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"is_active":false}`).
		Put(srv.URL + "/api/links/" + b.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	// userID пользователя достаем из хранилища напрямую
	links := listLinks(t, client, srv.URL)
	require.NotEmpty(t, links)
	userID := findUserID(t, a.ID)

	resp, err = resty.New().R().Get(srv.URL + "/u/" + userID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var page struct {
		UserID string        `json:"user_id"`
		Links  []linkPayload `json:"links"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &page))
	require.Len(t, page.Links, 1)
	assert.Equal(t, a.ID, page.Links[0].ID)
}

func TestInternalStatsTrustedSubnet(t *testing.T) {
	srv := startTestServer(t)
	client := newClient(t)
	createLink(t, client, srv.URL, "alpha")

	// вне доверенной подсети
	resp, err := resty.New().R().
		SetHeader("X-Real-IP", "10.0.0.1").
		Get(srv.URL + "/api/internal/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())

	// внутри
	resp, err = resty.New().R().
		SetHeader("X-Real-IP", "192.168.1.42").
		Get(srv.URL + "/api/internal/stats")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var stats struct {
		Links int `json:"links"`
		Users int `json:"users"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &stats))
	assert.Equal(t, 1, stats.Links)
	assert.Equal(t, 1, stats.Users)
}

func TestBatchDeleteUserLinks(t *testing.T) {
	srv := startTestServer(t)
	client := newClient(t)

	a := createLink(t, client, srv.URL, "alpha")
	b := createLink(t, client, srv.URL, "beta")
	c := createLink(t, client, srv.URL, "gamma")

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(fmt.Sprintf(`[%q,%q]`, a.ID, b.ID)).
		Delete(srv.URL + "/api/user/links")
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode())

	links := listLinks(t, client, srv.URL)
	require.Len(t, links, 1)
	assert.Equal(t, c.ID, links[0].ID)
	assert.Equal(t, 0, links[0].Position)
}

func idsOf(links []linkPayload) []string {
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	return ids
}

// findUserID находит владельца ссылки перебором хранилища.
func findUserID(t *testing.T, linkID string) string {
	t.Helper()
	for _, userID := range storage.Store.UserIDs() {
		for _, l := range storage.Store.LinksByUser(userID) {
			if l.ID == linkID {
				return userID
			}
		}
	}
	t.Fatalf("owner of link %s not found", linkID)
	return ""
}
