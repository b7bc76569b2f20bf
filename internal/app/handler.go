package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zauremazhikova/linkpage/internal/auth"
	"github.com/zauremazhikova/linkpage/internal/db/postgres"
	"github.com/zauremazhikova/linkpage/internal/gzip"
	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/logger/message"
	"github.com/zauremazhikova/linkpage/internal/model"
)

// Result — единый конверт ответа для мутирующих операций со ссылками.
// Сырые ошибки наружу не выходят: любой отказ сервиса превращается в
// {success:false, error:"..."} с подходящим HTTP-статусом.
type Result struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// generateLinkID - Генерация ID ссылки
func generateLinkID(n int) (string, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:n], nil
}

// isValidURL - Проверка на корректный URL
func isValidURL(rawURL string) bool {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func writeResult(w http.ResponseWriter, statusCode int, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Write ERROR: %s", err)})
	}
}

// PostLinkHandler создает новую ссылку в конце списка пользователя.
func (h *Handler) PostLinkHandler(w http.ResponseWriter, r *http.Request) {

	userID := auth.EnsureAuthCookie(w, r)

	timeStart := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Структура для чтения входного JSON
	type RequestPayload struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		Emoji       string `json:"emoji"`
	}

	var payload RequestPayload

	// Проверка Content-Type
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, "", "POST", http.StatusBadRequest, "Invalid Content-Type")
		return
	}

	// Декодирование JSON-запроса
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, "", "POST", http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	title := strings.TrimSpace(payload.Title)
	linkURL := strings.TrimSpace(payload.URL)

	if title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, linkURL, "POST", http.StatusBadRequest, "Empty title")
		return
	}
	if !isValidURL(linkURL) {
		http.Error(w, "Invalid URL format", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, linkURL, "POST", http.StatusBadRequest, "Invalid URL format")
		return
	}

	id, err := generateLinkID(8)
	if err != nil || id == "" {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		logger.Logging.WriteToLog(timeStart, linkURL, "POST", http.StatusInternalServerError, "Failed to generate link ID")
		return
	}

	link := model.Link{
		ID:          id,
		UserID:      userID,
		Title:       title,
		URL:         linkURL,
		Description: strings.TrimSpace(payload.Description),
		Icon:        strings.TrimSpace(payload.Icon),
		Emoji:       payload.Emoji,
		IsActive:    true,
	}

	saved, err := h.linkService.SaveLink(ctx, link)
	if err != nil {
		if errors.Is(err, postgres.ErrPositionConflict) {
			// параллельная вставка заняла позицию — пусть клиент повторит
			writeResult(w, http.StatusConflict, Result{Success: false, Error: "position conflict, retry"})
			logger.Logging.WriteToLog(timeStart, linkURL, "POST", http.StatusConflict, "Position conflict")
			return
		}
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Storage ERROR: %s", err)})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeResult(w, http.StatusCreated, Result{Success: true, Data: saved})
	logger.Logging.WriteToLog(timeStart, linkURL, "POST", http.StatusCreated, saved.ID)
}

// GetUserLinks возвращает все ссылки пользователя по порядку.
func (h *Handler) GetUserLinks(w http.ResponseWriter, r *http.Request) {
	userID := auth.EnsureAuthCookie(w, r)

	links, err := h.linkService.GetLinksByUserID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	if len(links) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(links)
}

// PutLinkHandler обновляет поля ссылки; позиция этим путем не меняется.
func (h *Handler) PutLinkHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.EnsureAuthCookie(w, r)

	timeStart := time.Now()
	ctx := r.Context()

	linkID := chi.URLParam(r, "id")
	if linkID == "" {
		http.Error(w, "Missing ID", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, "", "PUT", http.StatusBadRequest, "Missing ID")
		return
	}

	// Частичное обновление: nil — поле не трогаем
	type RequestPayload struct {
		Title       *string `json:"title"`
		URL         *string `json:"url"`
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
		Emoji       *string `json:"emoji"`
		IsActive    *bool   `json:"is_active"`
	}

	var payload RequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, linkID, "PUT", http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	link, err := h.linkService.GetLink(ctx, linkID, userID)
	if err != nil {
		if errors.Is(err, postgres.ErrLinkNotFound) {
			writeResult(w, http.StatusNotFound, Result{Success: false, Error: "link not found"})
			logger.Logging.WriteToLog(timeStart, linkID, "PUT", http.StatusNotFound, "Link not found")
			return
		}
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Storage ERROR: %s", err)})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if payload.Title != nil {
		if strings.TrimSpace(*payload.Title) == "" {
			http.Error(w, "Title is required", http.StatusBadRequest)
			logger.Logging.WriteToLog(timeStart, linkID, "PUT", http.StatusBadRequest, "Empty title")
			return
		}
		link.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.URL != nil {
		if !isValidURL(strings.TrimSpace(*payload.URL)) {
			http.Error(w, "Invalid URL format", http.StatusBadRequest)
			logger.Logging.WriteToLog(timeStart, linkID, "PUT", http.StatusBadRequest, "Invalid URL format")
			return
		}
		link.URL = strings.TrimSpace(*payload.URL)
	}
	if payload.Description != nil {
		link.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Icon != nil {
		link.Icon = strings.TrimSpace(*payload.Icon)
	}
	if payload.Emoji != nil {
		link.Emoji = *payload.Emoji
	}
	if payload.IsActive != nil {
		link.IsActive = *payload.IsActive
	}

	updated, err := h.linkService.UpdateLink(ctx, link)
	if err != nil {
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Storage ERROR: %s", err)})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeResult(w, http.StatusOK, Result{Success: true, Data: updated})
	logger.Logging.WriteToLog(timeStart, linkID, "PUT", http.StatusOK, "Link updated")
}

// PutLinkOrderHandler — операция переупорядочивания: принимает полный новый
// порядок идентификаторов и атомарно переписывает позиции. Ответ — конверт
// Result с авторитетным отсортированным списком либо с ошибкой.
func (h *Handler) PutLinkOrderHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.EnsureAuthCookie(w, r)

	timeStart := time.Now()
	ctx := r.Context()

	// Структура для чтения входного JSON
	type RequestPayload struct {
		LinkIDs []string `json:"link_ids"`
	}

	var payload RequestPayload

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, "", "PUT", http.StatusBadRequest, "Invalid Content-Type")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.LinkIDs) == 0 {
		writeResult(w, http.StatusBadRequest, Result{Success: false, Error: "link_ids must be a non-empty array"})
		logger.Logging.WriteToLog(timeStart, "", "PUT", http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	ordered, err := h.linkService.Reorder(ctx, userID, payload.LinkIDs)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrNotOwned):
			// из UI недостижимо; защита в глубину
			writeResult(w, http.StatusForbidden, Result{Success: false, Error: "link ids contain a foreign link"})
			logger.Logging.WriteToLog(timeStart, userID, "PUT", http.StatusForbidden, "Ownership violation")
		case errors.Is(err, postgres.ErrNoLinks):
			writeResult(w, http.StatusNotFound, Result{Success: false, Error: "no links to reorder"})
			logger.Logging.WriteToLog(timeStart, userID, "PUT", http.StatusNotFound, "No links")
		case errors.Is(err, postgres.ErrIncompleteSet):
			writeResult(w, http.StatusBadRequest, Result{Success: false, Error: "link_ids must list every link exactly once"})
			logger.Logging.WriteToLog(timeStart, userID, "PUT", http.StatusBadRequest, "Incomplete id set")
		default:
			logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Reorder ERROR: %s", err)})
			writeResult(w, http.StatusInternalServerError, Result{Success: false, Error: "storage failure"})
			logger.Logging.WriteToLog(timeStart, userID, "PUT", http.StatusInternalServerError, "Storage failure")
		}
		return
	}

	writeResult(w, http.StatusOK, Result{Success: true, Data: ordered})
	logger.Logging.WriteToLog(timeStart, userID, "PUT", http.StatusOK, "Links reordered")
}

// DeleteLinkHandler удаляет одну ссылку; позиции оставшихся уплотняются.
func (h *Handler) DeleteLinkHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.EnsureAuthCookie(w, r)

	timeStart := time.Now()

	linkID := chi.URLParam(r, "id")
	if linkID == "" {
		http.Error(w, "Missing ID", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, "", "DELETE", http.StatusBadRequest, "Missing ID")
		return
	}

	if err := h.linkService.DeleteForUser(r.Context(), linkID, userID); err != nil {
		if errors.Is(err, postgres.ErrLinkNotFound) {
			writeResult(w, http.StatusNotFound, Result{Success: false, Error: "link not found"})
			logger.Logging.WriteToLog(timeStart, linkID, "DELETE", http.StatusNotFound, "Link not found")
			return
		}
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Storage ERROR: %s", err)})
		writeResult(w, http.StatusInternalServerError, Result{Success: false, Error: "storage failure"})
		return
	}

	writeResult(w, http.StatusOK, Result{Success: true})
	logger.Logging.WriteToLog(timeStart, linkID, "DELETE", http.StatusOK, "Link deleted")
}

// GetPublicPage возвращает данные публичной страницы: активные ссылки владельца.
func (h *Handler) GetPublicPage(w http.ResponseWriter, r *http.Request) {
	timeStart := time.Now()

	pageUserID := chi.URLParam(r, "userID")
	if pageUserID == "" {
		http.Error(w, "Missing user ID", http.StatusBadRequest)
		logger.Logging.WriteToLog(timeStart, "", "GET", http.StatusBadRequest, "Missing user ID")
		return
	}

	links, err := h.linkService.GetActiveLinksByUserID(r.Context(), pageUserID)
	if err != nil {
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Storage ERROR: %s", err)})
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	type PublicPage struct {
		UserID string       `json:"user_id"`
		Links  []model.Link `json:"links"`
	}

	if links == nil {
		links = []model.Link{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PublicPage{UserID: pageUserID, Links: links})
	logger.Logging.WriteToLog(timeStart, pageUserID, "GET", http.StatusOK, "Public page")
}

// GzipMiddleware прозрачно распаковывает входящие и сжимает исходящие тела.
func (h *Handler) GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ow := w

		// Декодирование входящего тела, если оно сжато
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			cr, err := gzip.NewCompressReader(r.Body)
			if err != nil {
				http.Error(w, "Failed to decompress request body", http.StatusInternalServerError)
				return
			}
			r.Body = cr
			defer cr.Close()
		}

		// Сжатие ответа, если клиент его поддерживает
		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			cw := gzip.NewCompressWriter(w)
			ow = cw
			defer cw.Close()
		}

		next.ServeHTTP(ow, r)
	})
}

// GetDBPing проверяет доступность базы данных.
func (h *Handler) GetDBPing(w http.ResponseWriter, r *http.Request) {
	conn, err := postgres.SQLInstance()
	if conn == nil || err != nil {
		http.Error(w, "fail DB connection", http.StatusInternalServerError)
	} else {
		w.WriteHeader(http.StatusOK)
	}
}

// DeleteUserLinks — пакетное удаление ссылок пользователя через пул воркеров
// (generator -> fanOut -> fanIn).
func (h *Handler) DeleteUserLinks(w http.ResponseWriter, r *http.Request) {
	userID := auth.EnsureAuthCookie(w, r)

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil || len(ids) == 0 {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// сигнальный канал для завершения горутин
	doneCh := make(chan struct{})
	// закрываем его при завершении программы
	defer close(doneCh)

	// канал с данными
	inputCh := generator(doneCh, ids)

	// получаем слайс каналов из рабочих delete
	channels := fanOut(h, userID, doneCh, inputCh)

	// а теперь объединяем каналы результатов в один
	delResultCh := fanIn(doneCh, channels...)

	allDone := true
	for res := range delResultCh {
		if res == 0 {
			allDone = false
		}
	}
	if allDone {
		w.WriteHeader(http.StatusAccepted)
	} else {
		http.Error(w, "One or more deletions failed", http.StatusInternalServerError)
	}
}

// generator возвращает канал с данными
func generator(doneCh chan struct{}, input []string) chan string {
	inputCh := make(chan string)

	go func() {
		// как отправители закрываем канал, когда всё отправим
		defer close(inputCh)

		for _, data := range input {
			select {
			// если doneCh закрыт, сразу выходим из горутины
			case <-doneCh:
				return
			case inputCh <- data:
			}
		}
	}()

	return inputCh
}

// fanOut принимает канал данных и порождает воркеров удаления
func fanOut(h *Handler, userID string, doneCh chan struct{}, inputCh chan string) []chan int {
	numWorkers := 10
	channels := make([]chan int, numWorkers)

	for i := 0; i < numWorkers; i++ {
		channels[i] = deleteLink(h, userID, doneCh, inputCh)
	}
	return channels
}

func deleteLink(h *Handler, userID string, doneCh chan struct{}, inputCh chan string) chan int {
	delRes := make(chan int)

	go func() {
		defer close(delRes)

		for data := range inputCh {
			err := h.linkService.DeleteForUser(context.Background(), data, userID)
			result := 1
			if err != nil {
				result = 0
			}
			select {
			case <-doneCh:
				return
			case delRes <- result:
			}
		}
	}()
	return delRes
}

// fanIn объединяет несколько каналов результатов в один.
func fanIn(doneCh chan struct{}, resultChs ...chan int) chan int {
	finalCh := make(chan int)

	var wg sync.WaitGroup

	for _, ch := range resultChs {
		chClosure := ch

		wg.Add(1)

		go func() {
			defer wg.Done()

			for data := range chClosure {
				select {
				case <-doneCh:
					return
				case finalCh <- data:
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(finalCh)
	}()

	return finalCh
}
