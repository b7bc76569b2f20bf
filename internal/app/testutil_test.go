package app

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/zauremazhikova/linkpage/internal/auth"
	"github.com/zauremazhikova/linkpage/internal/config"
	"github.com/zauremazhikova/linkpage/internal/db/storage"
	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/logger/message"
	"github.com/zauremazhikova/linkpage/internal/model"
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

// setupMemoryApp готовит окружение для примеров и бенчмарков:
// конфигурация с Memory-хранилищем, тихий логгер, чистый Store.
func setupMemoryApp() *Handler {
	config.AppConfig = &config.Config{
		ServerAddr:    ":8080",
		BaseURL:       "http://localhost:8080",
		StorageType:   "Memory",
		PGConfig:      &config.PostgresConfig{},
		JWTSecretKey:  "supersecretkey",
		JWTTokenExp:   time.Hour,
		JWTCookieName: "auth_token",
	}
	logger.Log = discardDriver{}
	logger.Logging = noopAccessLogger{}
	storage.Store = storage.NewStorage()

	return &Handler{linkService: services.NewLinkService("Memory")}
}

// authCookie выписывает валидную куку для фиксированного пользователя.
func authCookie(userID string) *http.Cookie {
	token, _ := auth.GenerateToken(userID)
	return &http.Cookie{Name: config.AppConfig.JWTCookieName, Value: token}
}

func seedUserLinks(userID string, ids ...string) {
	for _, id := range ids {
		storage.Store.Add(model.Link{ID: id, UserID: userID, Title: id, URL: "https://" + id + ".example", IsActive: true})
	}
}

func doRequest(handlerFunc http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}
