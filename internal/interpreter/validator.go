package interpreter

import (
	"fmt"
	"strings"

	apperrors "inventory-assistant/internal/common/errors"

	"github.com/shopspring/decimal"
)

// Validation messages shown to the operator.
const (
	msgPriceInvalid     = "Price per unit must be a positive number"
	msgStockInvalid     = "Stock quantity must be a non-negative number"
	msgThresholdInvalid = "Low stock threshold must be a non-negative number"
	msgQuantityInvalid  = "Quantity must be a positive number"
	msgNameRequired     = "Product name is required"
)

// Decimal places the store keeps for money and for quantities.
const (
	priceScale    = 2
	quantityScale = 3
)

// numberRule is the constraint set for one numeric field.
type numberRule struct {
	field    string
	label    string
	invalid  string
	scale    int32
	positive bool
}

var (
	priceRule     = numberRule{ParamPrice, "Price per unit", msgPriceInvalid, priceScale, true}
	stockRule     = numberRule{ParamStock, "Stock quantity", msgStockInvalid, quantityScale, false}
	thresholdRule = numberRule{ParamThreshold, "Low stock threshold", msgThresholdInvalid, quantityScale, false}
	quantityRule  = numberRule{ParamQuantity, "Quantity", msgQuantityInvalid, quantityScale, true}
)

func (r numberRule) parse(raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.NewValidationError(r.field, r.invalid)
	}
	return r.check(d)
}

// check rejects values out of range, and values the store would have to
// round.
func (r numberRule) check(d decimal.Decimal) (float64, error) {
	if d.IsNegative() || (r.positive && !d.IsPositive()) {
		return 0, apperrors.NewValidationError(r.field, r.invalid)
	}
	if !d.Equal(d.Round(r.scale)) {
		return 0, apperrors.NewValidationError(r.field,
			fmt.Sprintf("%s can have at most %d decimal places", r.label, r.scale))
	}
	return d.InexactFloat64(), nil
}

// Command is a match whose parameters passed validation.
type Command struct {
	Intent    Intent  `json:"intent"`
	Name      string  `json:"name,omitempty"`
	Customer  string  `json:"customer,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	Quantity  float64 `json:"quantity,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Stock     float64 `json:"stock,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Validator turns parsed parameters into a typed Command.
type Validator struct {
	DefaultUnit         string
	DefaultLowThreshold float64
}

func NewValidator(defaultUnit string, defaultLowThreshold float64) *Validator {
	if defaultUnit == "" {
		defaultUnit = "unit"
	}
	return &Validator{DefaultUnit: defaultUnit, DefaultLowThreshold: defaultLowThreshold}
}

// Validate checks the constraints of m's intent. The first violation is
// returned as a validation error.
func (v *Validator) Validate(m Match) (*Command, error) {
	cmd := &Command{Intent: m.Intent}
	p := m.Params

	switch m.Intent {
	case IntentTodaySummary, IntentLowStock, IntentUnrecognized:
		return cmd, nil
	}

	name, err := requiredName(p[ParamName])
	if err != nil {
		return nil, err
	}
	cmd.Name = name

	switch m.Intent {
	case IntentUpdateProductPrice, IntentChangePrice:
		if cmd.Price, err = priceRule.parse(p[ParamPrice]); err != nil {
			return nil, err
		}

	case IntentUpdateProductStock:
		if cmd.Stock, err = stockRule.parse(p[ParamStock]); err != nil {
			return nil, err
		}

	case IntentUpdateProductThreshold:
		if cmd.Threshold, err = thresholdRule.parse(p[ParamThreshold]); err != nil {
			return nil, err
		}

	case IntentAddProduct:
		if cmd.Stock, err = stockRule.parse(p[ParamStock]); err != nil {
			return nil, err
		}
		if cmd.Price, err = priceRule.parse(p[ParamPrice]); err != nil {
			return nil, err
		}
		cmd.Threshold = v.DefaultLowThreshold
		if raw, ok := p[ParamThreshold]; ok {
			if cmd.Threshold, err = thresholdRule.parse(raw); err != nil {
				return nil, err
			}
		}
		cmd.Unit = v.DefaultUnit
		if u := strings.TrimSpace(p[ParamUnit]); u != "" {
			cmd.Unit = u
		}

	case IntentSellByName, IntentSellColloquial:
		if cmd.Quantity, err = quantityRule.parse(p[ParamQuantity]); err != nil {
			return nil, err
		}
		cmd.Customer = strings.TrimSpace(p[ParamCustomer])
	}

	return cmd, nil
}

func requiredName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperrors.NewValidationError(ParamName, msgNameRequired)
	}
	return name, nil
}

// ValidatePrice applies the command price rule to a number from the REST API.
func ValidatePrice(v float64) error {
	_, err := priceRule.check(decimal.NewFromFloat(v))
	return err
}

func ValidateStock(v float64) error {
	_, err := stockRule.check(decimal.NewFromFloat(v))
	return err
}

func ValidateThreshold(v float64) error {
	_, err := thresholdRule.check(decimal.NewFromFloat(v))
	return err
}

func ValidateQuantity(v float64) error {
	_, err := quantityRule.check(decimal.NewFromFloat(v))
	return err
}

// ValidateName trims and requires a product name.
func ValidateName(raw string) (string, error) {
	return requiredName(raw)
}
