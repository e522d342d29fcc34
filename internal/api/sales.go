package api

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "inventory-assistant/internal/common/errors"
	apihttp "inventory-assistant/internal/common/http"
	"inventory-assistant/internal/common/validation"
	"inventory-assistant/internal/interpreter"
	"inventory-assistant/internal/models"
)

type createSaleRequest struct {
	ProductID    string  `json:"productId"`
	Quantity     float64 `json:"quantity"`
	CustomerName string  `json:"customerName"`
}

type saleResponse struct {
	Message string      `json:"message"`
	Sale    models.Sale `json:"sale"`
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	body, err := apihttp.ReadBody(r)
	if err != nil {
		apihttp.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.validator.Validate(validation.CreateSale, body)
	if err != nil {
		apihttp.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !result.Valid {
		apihttp.WriteMessage(w, http.StatusBadRequest, "productId and quantity are required")
		return
	}

	var req createSaleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apihttp.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := interpreter.ValidateQuantity(req.Quantity); err != nil {
		msg := "quantity must be a positive number"
		if req.Quantity > 0 {
			msg = apperrors.Normalize(err).Message
		}
		apihttp.WriteMessage(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.executor.SellProduct(r.Context(), models.NewSale{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		CustomerName: strings.TrimSpace(req.CustomerName),
	})
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrCodeProductNotFound:
			apihttp.WriteMessage(w, http.StatusNotFound, "Product not found")
		case apperrors.ErrCodeInsufficientStock:
			apihttp.WriteMessage(w, http.StatusBadRequest, "Not enough stock for this product")
		default:
			s.writeServerError(w, "create_sale", err)
		}
		return
	}

	apihttp.WriteJSON(w, http.StatusCreated, saleResponse{
		Message: "Sale recorded successfully",
		Sale:    res.Sale,
	})
}

func (s *Server) handleTodaySales(w http.ResponseWriter, r *http.Request) {
	summary, err := s.executor.TodaySummary(r.Context())
	if err != nil {
		s.writeServerError(w, "today_sales", err)
		return
	}
	if summary.Sales == nil {
		summary.Sales = []models.Sale{}
	}
	apihttp.WriteJSON(w, http.StatusOK, summary)
}
