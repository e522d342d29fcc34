package interpreter

import (
	"net/http"

	apperrors "inventory-assistant/internal/common/errors"
	"inventory-assistant/internal/models"
)

// Envelope type tags.
const (
	TypeSale          = "sale"
	TypeProductCreate = "productCreate"
	TypeProductUpdate = "productUpdate"
	TypeSummary       = "summary"
	TypeLowStock      = "lowStock"
	TypeHelp          = "help"
	TypeValidation    = "validation"
	TypeParse         = "parse"
	TypeNotFound      = "notFound"
	TypeStock         = "stock"
	TypeServer        = "server"
)

// Examples are shown with help, parse and empty-input responses.
var Examples = []string{
	"sell 2 sugar",
	"sell 2 kg sugar to Ali",
	"2 kg sugar bech di",
	"show today sales",
	"show low stock",
	"add product sugar stock 10 price 100",
	"update product sugar price 120",
	"change price sugar to 120",
}

// Envelope is the uniform response to a command.
type Envelope struct {
	Success  bool        `json:"success"`
	Type     string      `json:"type"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Examples []string    `json:"examples,omitempty"`

	// Status is the HTTP status the envelope is served with.
	Status int `json:"-"`
}

type SaleData struct {
	Sale    models.Sale `json:"sale"`
	Product SoldProduct `json:"product"`
}

type SoldProduct struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	RemainingStock float64 `json:"remainingStock"`
	Unit           string  `json:"unit"`
}

type ProductData struct {
	Product models.Product `json:"product"`
}

type SummaryData struct {
	Count       int           `json:"count"`
	TotalEarned float64       `json:"totalEarned"`
	Sales       []models.Sale `json:"sales"`
}

type LowStockData struct {
	Products []models.Product `json:"products"`
}

type StockData struct {
	Available float64 `json:"available"`
	Requested float64 `json:"requested"`
}

func success(status int, typ, message string, data interface{}) *Envelope {
	return &Envelope{Success: true, Type: typ, Message: message, Data: data, Status: status}
}

func examples() []string {
	return append([]string(nil), Examples...)
}

// HelpEnvelope is returned for text no recognizer claims.
func HelpEnvelope() *Envelope {
	return FailureEnvelope(apperrors.NewUnrecognizedCommandError())
}

// FailureEnvelope renders an error. Server failures never expose their cause.
func FailureEnvelope(err error) *Envelope {
	se := apperrors.Normalize(err)
	env := &Envelope{
		Success: false,
		Type:    apperrors.ResponseType(se.Code),
		Message: se.Message,
		Status:  apperrors.HTTPStatus(se.Code),
	}

	switch se.Code {
	case apperrors.ErrCodeEmptyInput, apperrors.ErrCodeParseFailure, apperrors.ErrCodeUnrecognizedCommand:
		env.Examples = examples()
	case apperrors.ErrCodeInsufficientStock:
		available, _ := se.Metadata["available"].(float64)
		requested, _ := se.Metadata["requested"].(float64)
		env.Data = StockData{Available: available, Requested: requested}
	case apperrors.ErrCodeServerError, apperrors.ErrCodeRepositoryUnavailable:
		env.Type = TypeServer
		env.Message = "Server error while executing command"
		env.Status = http.StatusInternalServerError
	}
	return env
}
