package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iwvelando/sba-spread/internal/deal"
	"github.com/iwvelando/sba-spread/internal/optimizer"
	"github.com/iwvelando/sba-spread/internal/store"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"github.com/iwvelando/sba-spread/pkg/validation"
)

type dealResponse struct {
	Deal       spread.Deal  `json:"deal"`
	Warnings   []string     `json:"warnings,omitempty"`
	SaveStatus store.Status `json:"saveStatus,omitempty"`
	SaveError  string       `json:"saveError,omitempty"`
}

func (h *handler) registerDealRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/deal", h.handleGetDeal)
	mux.HandleFunc("PUT /api/deal", h.handleReplaceDeal)
	mux.HandleFunc("GET /api/deal/spread", h.handleDealSpread)
	mux.HandleFunc("GET /api/deal/sizing", h.handleDealSizing)
	mux.HandleFunc("PUT /api/deal/loan-terms", h.handleLoanTerms)
	mux.HandleFunc("PUT /api/deal/options", h.handleDealOptions)

	mux.HandleFunc("POST /api/deal/debts", h.handleAddDebt)
	mux.HandleFunc("PUT /api/deal/debts/{id}", h.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/deal/debts/{id}", h.rowRemover("server.handleRemoveDebt", h.deals.RemoveDebt))

	mux.HandleFunc("POST /api/deal/uses", h.handleAddUse)
	mux.HandleFunc("PUT /api/deal/uses/{id}", h.handleUpdateUse)
	mux.HandleFunc("DELETE /api/deal/uses/{id}", h.rowRemover("server.handleRemoveUse", h.deals.RemoveUse))

	mux.HandleFunc("POST /api/deal/affiliates", h.handleAddAffiliate)
	mux.HandleFunc("PUT /api/deal/affiliates/{id}", h.handleUpdateAffiliate)
	mux.HandleFunc("DELETE /api/deal/affiliates/{id}", h.rowRemover("server.handleRemoveAffiliate", h.deals.RemoveAffiliate))
}

func (h *handler) writeDeal(w http.ResponseWriter, status int) {
	d := h.deals.Snapshot()
	resp := dealResponse{Deal: d, Warnings: validation.ValidateDeal(d)}
	if h.saver != nil {
		saveStatus, err := h.saver.Status()
		resp.SaveStatus = saveStatus
		if err != nil {
			resp.SaveError = err.Error()
		}
	}
	h.writeJSON(w, status, resp)
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

func (h *handler) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	h.writeDeal(w, http.StatusOK)
}

func (h *handler) handleReplaceDeal(w http.ResponseWriter, r *http.Request) {
	var d spread.Deal
	if err := decodeBody(r, &d); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleReplaceDeal")
		return
	}
	h.deals.Replace(d)
	h.writeDeal(w, http.StatusOK)
}

func (h *handler) handleDealSpread(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	d := h.deals.Snapshot()
	h.respondAnalysis(r.Context(), w, d, validation.ValidateDeal(d), nil, "", start, "server.handleDealSpread")
}

// handleDealSizing sizes the working deal's loan. The target and max query
// parameters override the defaults.
func (h *handler) handleDealSizing(w http.ResponseWriter, r *http.Request) {
	var req optimizer.Request
	for name, dst := range map[string]*float64{"target": &req.TargetDSCR, "max": &req.MaxAmount} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw), "server.handleDealSizing")
			return
		}
		*dst = v
	}

	runner, err := optimizer.NewRunner(h.logger, h.deals.Snapshot(), h.clock)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), "server.handleDealSizing")
		return
	}
	summary, err := runner.Run(r.Context(), req)
	switch {
	case errors.Is(err, optimizer.ErrNoCoveragePeriod):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), "server.handleDealSizing")
	case err != nil:
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleDealSizing")
	default:
		h.writeJSON(w, http.StatusOK, summary)
	}
}

func (h *handler) handleLoanTerms(w http.ResponseWriter, r *http.Request) {
	var terms spread.LoanTerms
	if err := decodeBody(r, &terms); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleLoanTerms")
		return
	}
	h.deals.SetLoanTerms(terms)
	h.writeDeal(w, http.StatusOK)
}

func (h *handler) handleDealOptions(w http.ResponseWriter, r *http.Request) {
	var opts spread.DealOptions
	if err := decodeBody(r, &opts); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleDealOptions")
		return
	}
	h.deals.SetOptions(opts)
	h.writeDeal(w, http.StatusOK)
}

func (h *handler) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var d spread.Debt
	if err := decodeBody(r, &d); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleAddDebt")
		return
	}
	h.writeJSON(w, http.StatusCreated, h.deals.AddDebt(d))
}

func (h *handler) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var d spread.Debt
	if err := decodeBody(r, &d); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleUpdateDebt")
		return
	}
	d.ID = r.PathValue("id")
	h.finishUpdate(w, h.deals.UpdateDebt(d), "server.handleUpdateDebt")
}

func (h *handler) handleAddUse(w http.ResponseWriter, r *http.Request) {
	var u spread.UseOfFunds
	if err := decodeBody(r, &u); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleAddUse")
		return
	}
	h.writeJSON(w, http.StatusCreated, h.deals.AddUse(u))
}

func (h *handler) handleUpdateUse(w http.ResponseWriter, r *http.Request) {
	var u spread.UseOfFunds
	if err := decodeBody(r, &u); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleUpdateUse")
		return
	}
	u.ID = r.PathValue("id")
	h.finishUpdate(w, h.deals.UpdateUse(u), "server.handleUpdateUse")
}

func (h *handler) handleAddAffiliate(w http.ResponseWriter, r *http.Request) {
	var a spread.AffiliateEntity
	if err := decodeBody(r, &a); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleAddAffiliate")
		return
	}
	h.writeJSON(w, http.StatusCreated, h.deals.AddAffiliate(a))
}

func (h *handler) handleUpdateAffiliate(w http.ResponseWriter, r *http.Request) {
	var a spread.AffiliateEntity
	if err := decodeBody(r, &a); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleUpdateAffiliate")
		return
	}
	a.ID = r.PathValue("id")
	h.finishUpdate(w, h.deals.UpdateAffiliate(a), "server.handleUpdateAffiliate")
}

func (h *handler) rowRemover(op string, remove func(id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.finishUpdate(w, remove(r.PathValue("id")), op)
	}
}

func (h *handler) finishUpdate(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, deal.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	case err != nil:
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	default:
		h.writeDeal(w, http.StatusOK)
	}
}
