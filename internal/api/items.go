package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photo"
	"github.com/erazemk/lostfound/internal/store"
)

// ItemsHandler handles the item registry and its escrow operations.
type ItemsHandler struct {
	DB *sql.DB
}

type registerRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	Reward      int64  `json:"reward"`
	Payment     int64  `json:"payment"`
}

type registerResponse struct {
	ItemID int64       `json:"item_id"`
	Item   *model.Item `json:"item"`
}

type reportFoundRequest struct {
	Payment int64 `json:"payment"`
}

// itemID parses the {id} path value. Anything unparseable cannot name an
// item, so it is reported as not found.
func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, model.Reject(model.KindNotFound, "item %q not found", r.PathValue("id"))
	}
	return id, nil
}

// Fees handles GET /api/fees.
func (h *ItemsHandler) Fees(w http.ResponseWriter, r *http.Request) {
	fees, err := store.GetFees(r.Context(), h.DB)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, fees)
}

// Count handles GET /api/items/count.
func (h *ItemsHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := store.ItemCount(r.Context(), h.DB)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"count": count})
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.ItemStatus(r.URL.Query().Get("status"))
	items, err := store.ListItems(r.Context(), h.DB, status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Register handles POST /api/items.
func (h *ItemsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, model.Reject(model.KindInvalidInput, "invalid request body"))
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.RegisterItem(r.Context(), h.DB, claims.UserID,
		req.Description, req.Location, req.Reward, req.Payment)
	observeOperation("register", err)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("item registered", "user", claims.Username, "item", item.ID, "reward", item.Reward)
	jsonResponse(w, http.StatusCreated, registerResponse{ItemID: item.ID, Item: item})
}

// ReportFound handles POST /api/items/{id}/found.
func (h *ItemsHandler) ReportFound(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req reportFoundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, model.Reject(model.KindInvalidInput, "invalid request body"))
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.ReportFound(r.Context(), h.DB, claims.UserID, id, req.Payment)
	observeOperation("report_found", err)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("item reported found", "user", claims.Username, "item", id)
	jsonResponse(w, http.StatusOK, item)
}

// Release handles POST /api/items/{id}/claim.
func (h *ItemsHandler) Release(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.ReleaseReward(r.Context(), h.DB, claims.UserID, id)
	observeOperation("release", err)
	if err != nil {
		if errors.Is(err, model.ErrTransferFailed) {
			slog.Warn("reward transfer failed", "user", claims.Username, "item", id, "error", err)
		}
		respondError(w, r, err)
		return
	}

	rewardsReleasedTotal.Add(float64(item.Reward))
	slog.Info("reward released", "user", claims.Username, "item", id, "finder", item.Finder, "reward", item.Reward)
	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Refuse non-owners and closed items before decoding anything.
	claims := GetClaims(r.Context())
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if rej := model.CheckPhotoEditor(item, claims.UserID); rej != nil {
		respondError(w, r, rej)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUploadBytes+1<<20)
	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, r, model.Reject(model.KindInvalidInput, "multipart field \"image\" required"))
		return
	}
	defer file.Close()

	p, err := photo.Normalize(file)
	if err != nil {
		if errors.Is(err, photo.ErrTooLarge) || errors.Is(err, photo.ErrUnsupported) {
			respondError(w, r, model.Reject(model.KindInvalidInput, "%v", err))
			return
		}
		respondError(w, r, err)
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, claims.UserID, id, p.Data, p.MIME); err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("item photo updated", "user", claims.Username, "item", id, "width", p.Width, "height", p.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if data == nil {
		respondError(w, r, model.Reject(model.KindNotFound, "item %d has no image", id))
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// GetHistory handles GET /api/items/{id}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := store.GetItem(r.Context(), h.DB, id); err != nil {
		respondError(w, r, err)
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if history == nil {
		history = []model.LedgerEntry{}
	}
	jsonResponse(w, http.StatusOK, history)
}
