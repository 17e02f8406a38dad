package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-passes/internal/auth"
	"ms-passes/internal/factory"
	"ms-passes/internal/utils"
)

type Handler struct {
	FactoryService *factory.Service
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/collections", h.CreateCollection)
	r.Get("/collections", h.AllCollections)
	r.Get("/collections/symbol/{symbol}", h.CollectionBySymbol)
	r.Get("/collections/artist/{artist}", h.ArtistCollections)
	r.Get("/symbols/{symbol}/available", h.SymbolAvailable)
	r.Get("/config", h.Config)
	r.Patch("/config/template", h.UpdateTemplateID)
	r.Patch("/config/royalties", h.UpdateRoyalties)
}

func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req factory.CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	collection, err := h.FactoryService.CreateCollection(caller, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	// 202: the collection is pending until the provisioner ack lands.
	utils.WriteJSON(w, http.StatusAccepted, "collection creation requested", collection)
}

func (h *Handler) AllCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.FactoryService.AllCollections(limitParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "collections", collections)
}

func (h *Handler) CollectionBySymbol(w http.ResponseWriter, r *http.Request) {
	collection, err := h.FactoryService.CollectionBySymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "collection", collection)
}

func (h *Handler) ArtistCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.FactoryService.ArtistCollections(chi.URLParam(r, "artist"), limitParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "collections", collections)
}

func (h *Handler) SymbolAvailable(w http.ResponseWriter, r *http.Request) {
	available, err := h.FactoryService.IsSymbolAvailable(chi.URLParam(r, "symbol"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "symbol availability", map[string]bool{"available": available})
}

func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.FactoryService.Config()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "config", cfg)
}

func (h *Handler) UpdateTemplateID(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.FactoryService.UpdateTemplateID(caller, req.TemplateID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "template id updated", nil)
}

func (h *Handler) UpdateRoyalties(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		HousePercentage  int `json:"house_percentage"`
		ArtistPercentage int `json:"artist_percentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.FactoryService.UpdateRoyalties(caller, req.HousePercentage, req.ArtistPercentage); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "royalties updated", nil)
}

func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
