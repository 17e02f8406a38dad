package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-passes/internal/auth"
	"ms-passes/internal/identity"
	"ms-passes/internal/models"
	"ms-passes/internal/passes"
	"ms-passes/internal/passes/qr"
	"ms-passes/internal/utils"
)

type Handler struct {
	PassService *passes.Service
	QR          *qr.Generator
}

type mintRequest struct {
	Owner string        `json:"owner"`
	Funds []models.Coin `json:"funds"`
}

type renewRequest struct {
	Funds []models.Coin `json:"funds"`
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/passes", h.MintPass)
	r.Post("/passes/{tokenID}/renew", h.RenewPass)
	r.Delete("/passes/{tokenID}", h.BurnExpiredPass)
	r.Post("/passes/{tokenID}/transfer", h.TransferPass)
	r.Get("/passes/{tokenID}/validity", h.Validity)
	r.Get("/passes/{tokenID}/qr", h.PassQR)
	r.Get("/passes/{tokenID}/payouts", h.PassPayouts)
	r.Get("/passes/owner/{owner}", h.UserPass)
	r.Get("/config", h.Config)
	r.Get("/artist", h.ArtistInfo)
}

func (h *Handler) MintPass(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	owner, err := identity.Validate(req.Owner)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	pass, err := h.PassService.MintPass(owner, req.Funds)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "pass minted", pass)
}

func (h *Handler) RenewPass(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req renewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	pass, err := h.PassService.RenewPass(caller, chi.URLParam(r, "tokenID"), req.Funds)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "pass renewed", pass)
}

func (h *Handler) BurnExpiredPass(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.PassService.BurnExpiredPass(caller, chi.URLParam(r, "tokenID")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "pass burned", nil)
}

// TransferPass exists so the soulbound refusal is an explicit contract of
// the API rather than a missing route.
func (h *Handler) TransferPass(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		Recipient string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	err = h.PassService.TransferPass(caller, chi.URLParam(r, "tokenID"), req.Recipient)
	utils.WriteError(w, err)
}

func (h *Handler) Validity(w http.ResponseWriter, r *http.Request) {
	v, err := h.PassService.Validity(chi.URLParam(r, "tokenID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "validity", v)
}

func (h *Handler) PassQR(w http.ResponseWriter, r *http.Request) {
	pass, err := h.PassService.GetPass(chi.URLParam(r, "tokenID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	png, err := h.QR.GeneratePassQR(*pass)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) PassPayouts(w http.ResponseWriter, r *http.Request) {
	payouts, err := h.PassService.PassPayouts(chi.URLParam(r, "tokenID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "payouts", payouts)
}

func (h *Handler) UserPass(w http.ResponseWriter, r *http.Request) {
	pass, err := h.PassService.UserPass(chi.URLParam(r, "owner"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "pass", pass)
}

func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.PassService.Config()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "config", cfg)
}

func (h *Handler) ArtistInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.PassService.ArtistInfo()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "artist", info)
}
