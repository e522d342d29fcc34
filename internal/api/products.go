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

type createProductRequest struct {
	Name              string   `json:"name"`
	Unit              *string  `json:"unit"`
	StockQuantity     *float64 `json:"stockQuantity"`
	PricePerUnit      float64  `json:"pricePerUnit"`
	LowStockThreshold *float64 `json:"lowStockThreshold"`
}

type productResponse struct {
	Message string         `json:"message"`
	Product models.Product `json:"product"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := apihttp.ReadBody(r)
	if err != nil {
		apihttp.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.validator.Validate(validation.CreateProduct, body)
	if err != nil {
		apihttp.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !result.Valid {
		apihttp.WriteMessage(w, http.StatusBadRequest, productSchemaMessage(result))
		return
	}

	var req createProductRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apihttp.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	np, err := s.newProduct(req)
	if err != nil {
		apihttp.WriteMessage(w, http.StatusBadRequest, apperrors.Normalize(err).Message)
		return
	}

	p, err := s.executor.AddProduct(r.Context(), np)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeDuplicateProduct {
			apihttp.WriteMessage(w, http.StatusBadRequest, apperrors.Normalize(err).Message)
			return
		}
		s.writeServerError(w, "create_product", err)
		return
	}

	apihttp.WriteJSON(w, http.StatusCreated, productResponse{
		Message: "Product created successfully",
		Product: *p,
	})
}

// newProduct applies defaults and the same numeric rules as text commands.
func (s *Server) newProduct(req createProductRequest) (models.NewProduct, error) {
	name, err := interpreter.ValidateName(req.Name)
	if err != nil {
		return models.NewProduct{}, err
	}
	if err := interpreter.ValidatePrice(req.PricePerUnit); err != nil {
		return models.NewProduct{}, err
	}

	np := models.NewProduct{
		Name:              name,
		Unit:              s.defaultUnit,
		PricePerUnit:      req.PricePerUnit,
		LowStockThreshold: s.defaultLowThreshold,
	}
	if req.Unit != nil && strings.TrimSpace(*req.Unit) != "" {
		np.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.StockQuantity != nil {
		if err := interpreter.ValidateStock(*req.StockQuantity); err != nil {
			return models.NewProduct{}, err
		}
		np.StockQuantity = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		if err := interpreter.ValidateThreshold(*req.LowStockThreshold); err != nil {
			return models.NewProduct{}, err
		}
		np.LowStockThreshold = *req.LowStockThreshold
	}
	return np, nil
}

// productSchemaMessage keeps the dashboard's wording for missing fields.
func productSchemaMessage(result *validation.ValidationResult) string {
	for _, e := range result.Errors {
		if e.Code == "required" || e.Field == "name" || e.Field == "pricePerUnit" {
			return "name and pricePerUnit are required"
		}
	}
	return result.FirstMessage()
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.executor.ListProducts(r.Context())
	if err != nil {
		s.writeServerError(w, "list_products", err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, nonNilProducts(products))
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := s.executor.LowStockProducts(r.Context())
	if err != nil {
		s.writeServerError(w, "low_stock_products", err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, nonNilProducts(products))
}

func nonNilProducts(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
