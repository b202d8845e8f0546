package i18n

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type messagesResponse struct {
	Locale    string            `json:"locale"`
	Supported []string          `json:"supported"`
	Messages  map[string]string `json:"messages"`
}

// Handler serves message catalogs to the presentation layer.
type Handler struct {
	translator *Translator
}

func NewHandler(t *Translator) *Handler {
	return &Handler{translator: t}
}

// HandleMessages writes the message map for the {locale} path value.
func (h *Handler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	requested := r.PathValue("locale")
	resp := messagesResponse{
		Locale:    h.translator.Normalize(requested),
		Supported: h.translator.Supported(),
		Messages:  h.translator.Messages(requested),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Language", resp.Locale)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Str("locale", requested).Msg("failed to write messages")
	}
}

// RegisterRoutes mounts the catalog endpoint on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/i18n/{locale}", h.HandleMessages)
}
