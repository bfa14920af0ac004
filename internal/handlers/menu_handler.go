package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/qr-menu/internal/menu"
	"github.com/Lixing-Zhang/qr-menu/internal/models"
	"github.com/Lixing-Zhang/qr-menu/internal/pinger"
	"github.com/Lixing-Zhang/qr-menu/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(
	template.New("pages").
		Funcs(template.FuncMap{
			"price": func(d decimal.Decimal) string { return d.String() + "₴" },
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// MenuPage is the data rendered by the menu template
type MenuPage struct {
	Title          string
	Zone           string
	BreakfastFirst bool
	Blocks         []models.Block
}

// MenuHandler serves the menu page and its JSON views
type MenuHandler struct {
	service  *service.MenuService
	pinger   *pinger.Pinger
	title    string
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewMenuHandler creates a new menu handler. location is used for the
// breakfast-first flag.
func NewMenuHandler(svc *service.MenuService, p *pinger.Pinger, title string, location *time.Location, logger *slog.Logger) *MenuHandler {
	if location == nil {
		location = time.Local
	}
	return &MenuHandler{
		service:  svc,
		pinger:   p,
		title:    title,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Page handles GET /
// Renders the whole menu or the not found page; never a partial menu.
func (h *MenuHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zone := r.URL.Query().Get("zone")

	snap, err := h.service.Menu(ctx)
	if err != nil {
		h.logMenuError(err)
		h.renderNotFound(w)
		return
	}

	// Sets the last ping cookie, so it must run before any header is written.
	h.pinger.VisitAsync(ctx, pinger.NewCookieStore(w, r, 0), zone)

	etag := `"` + snap.ID + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	page := MenuPage{
		Title:          h.title,
		Zone:           zone,
		BreakfastFirst: menu.BreakfastFirst(h.now().In(h.location)),
		Blocks:         snap.Blocks,
	}
	h.render(w, http.StatusOK, "menu", page)
}

// ListBlocks handles GET /api/menu
func (h *MenuHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Menu(r.Context())
	if err != nil {
		h.logMenuError(err)
		WriteError(w, http.StatusNotFound, "Menu not found", h.logger)
		return
	}

	w.Header().Set("ETag", `"`+snap.ID+`"`)
	WriteJSON(w, http.StatusOK, snap.Blocks, h.logger)
}

// GetBlock handles GET /api/menu/{blockName}
func (h *MenuHandler) GetBlock(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "blockName")

	snap, err := h.service.Menu(r.Context())
	if err != nil {
		h.logMenuError(err)
		WriteError(w, http.StatusNotFound, "Menu not found", h.logger)
		return
	}

	block, ok := menu.Find(snap.Blocks, name)
	if !ok {
		h.logger.Info("block not found", "blockName", name)
		WriteError(w, http.StatusNotFound, "Block not found", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, block, h.logger)
}

// RefreshResponse reports the snapshot built by a refresh
type RefreshResponse struct {
	SnapshotID string    `json:"snapshotId"`
	Blocks     int       `json:"blocks"`
	BuiltAt    time.Time `json:"builtAt"`
}

// Refresh handles POST /api/menu/refresh
// - 200: menu rebuilt
// - 404: catalog is empty
// - 502: catalog could not be fetched
func (h *MenuHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logMenuError(err)
		if errors.Is(err, menu.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Menu not found", h.logger)
			return
		}
		WriteError(w, http.StatusBadGateway, "Catalog unavailable", h.logger)
		return
	}

	h.logger.Info("menu refreshed", "snapshot_id", snap.ID, "blocks", len(snap.Blocks))
	WriteJSON(w, http.StatusOK, RefreshResponse{
		SnapshotID: snap.ID,
		Blocks:     len(snap.Blocks),
		BuiltAt:    snap.BuiltAt.UTC(),
	}, h.logger)
}

// NotFound renders the not found page for unknown routes
func (h *MenuHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderNotFound(w)
}

func (h *MenuHandler) renderNotFound(w http.ResponseWriter) {
	h.render(w, http.StatusNotFound, "not_found", nil)
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind
func (h *MenuHandler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write page", "template", name, "error", err)
	}
}

func (h *MenuHandler) logMenuError(err error) {
	if errors.Is(err, menu.ErrNotFound) {
		h.logger.Info("menu not found")
		return
	}
	h.logger.Error("failed to load menu", "error", err)
}
