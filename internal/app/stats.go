package app

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/zauremazhikova/linkpage/internal/config"
)

// GetInternalStats возвращает агрегированную статистику сервиса.
// Доступ разрешён только, если X-Real-IP входит в доверенную подсеть из конфигурации.
func (h *Handler) GetInternalStats(w http.ResponseWriter, r *http.Request) {
	// trusted_subnet обязан быть настроен; иначе 403
	if config.AppConfig.TrustedIPNet == nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	ipStr := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if ipStr == "" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	ip := net.ParseIP(ipStr)
	if ip == nil || !config.AppConfig.TrustedIPNet.Contains(ip) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	type stats struct {
		Links int `json:"links"`
		Users int `json:"users"`
	}

	links, users, err := h.linkService.GetStats(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats{Links: links, Users: users})
}
