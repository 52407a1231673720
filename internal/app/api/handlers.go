package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
)

// errorPayload is one violation in an error response body.
type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Errors []errorPayload `json:"errors"`
}

// tokenLotView is the API shape of one token lot.
type tokenLotView struct {
	LotID      string    `json:"lotId"`
	Quantity   int64     `json:"quantity"`
	CostBasis  string    `json:"costBasis"`
	UnlockDate time.Time `json:"unlockDate"`
	IsUnlocked bool      `json:"isUnlocked"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderv1.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewErrorDetails("Invalid request body", string(errors.GeneralBadRequestError), ""))
		return
	}

	result, err := s.engine.PlaceOrder(r.Context(), req)
	if err != nil {
		// A settlement abort still produced final fills; report them next
		// to the error.
		if result != nil && len(result.Fills) > 0 {
			s.writeJSON(w, statusForError(err), map[string]any{
				"order":  result.Order,
				"fills":  result.Fills,
				"errors": payloadsForError(err),
			})
			return
		}
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.engine.CancelOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.engine.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleGetOrderFills(w http.ResponseWriter, r *http.Request) {
	fills, err := s.engine.GetOrderFills(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, fills)
}

const defaultTradesLimit = 50

func (s *Server) handleGetRecentTrades(w http.ResponseWriter, r *http.Request) {
	limit := defaultTradesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, errors.NewErrorDetails("Invalid limit", string(errors.GeneralBadRequestError), "limit"))
			return
		}
		limit = parsed
	}

	fills, err := s.engine.GetRecentTrades(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, fills)
}

func (s *Server) handleGetOrderBook(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.engine.GetOrderBook(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGetMarketData(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.engine.GetMarketData(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	if snapshot == nil {
		s.writeError(w, errors.NewErrorDetails("No market data for instrument", string(errors.GeneralNotFoundError), "instrumentID"))
		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGetUserTokenLots(w http.ResponseWriter, r *http.Request) {
	lots, err := s.engine.GetUserTokenLots(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := time.Now()
	views := make([]tokenLotView, 0, len(lots))
	for _, lot := range lots {
		views = append(views, tokenLotView{
			LotID:      lot.ID,
			Quantity:   lot.Quantity,
			CostBasis:  lot.CostBasis.StringFixed(2),
			UnlockDate: lot.UnlockAt,
			IsUnlocked: lot.IsUnlocked(now),
		})
	}

	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(err, logger.Field{Key: "action", Value: "encode_response"})
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusForError(err), errorResponse{Errors: payloadsForError(err)})
}

func payloadsForError(err error) []errorPayload {
	switch e := err.(type) {
	case *errors.BaseError:
		payloads := make([]errorPayload, 0, len(e.GetDetails()))
		for _, d := range e.GetDetails() {
			payloads = append(payloads, errorPayload{Message: d.Message, Code: d.Code, Field: d.Field})
		}
		return payloads
	case *errors.ErrorDetails:
		return []errorPayload{{Message: e.Message, Code: e.Code, Field: e.Field}}
	default:
		return []errorPayload{{Message: "Internal server error", Code: string(errors.GeneralInternalServerError)}}
	}
}

// statusForError maps error codes to HTTP statuses. A BaseError carries
// validation violations only, so it always maps to 400.
func statusForError(err error) int {
	details, ok := err.(*errors.ErrorDetails)
	if !ok {
		if _, isBase := err.(*errors.BaseError); isBase {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}

	switch errors.ErrorCode(details.Code) {
	case errors.PriceOutOfRangeError,
		errors.PriceDeviationError,
		errors.QuantityOutOfRangeError,
		errors.InsufficientCashError,
		errors.InsufficientTokensError,
		errors.InsufficientLiquidityError,
		errors.GeneralBadRequestError:
		return http.StatusBadRequest
	case errors.OrderNotFoundError, errors.GeneralNotFoundError:
		return http.StatusNotFound
	case errors.OrderNotOwnedError:
		return http.StatusForbidden
	case errors.OrderTerminalError:
		return http.StatusConflict
	case errors.GeneralUnauthorizedError:
		return http.StatusUnauthorized
	case errors.SettlementFailureError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
