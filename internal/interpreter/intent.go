package interpreter

// Intent is the classified purpose of a command.
type Intent string

const (
	IntentSellByName             Intent = "SellByName"
	IntentSellColloquial         Intent = "SellColloquial"
	IntentAddProduct             Intent = "AddProduct"
	IntentUpdateProductPrice     Intent = "UpdateProductPrice"
	IntentUpdateProductStock     Intent = "UpdateProductStock"
	IntentUpdateProductThreshold Intent = "UpdateProductThreshold"
	IntentChangePrice            Intent = "ChangePrice"
	IntentTodaySummary           Intent = "TodaySummary"
	IntentLowStock               Intent = "LowStock"
	IntentUnrecognized           Intent = "Unrecognized"
)

// IsSale reports whether the intent records a sale.
func (i Intent) IsSale() bool {
	return i == IntentSellByName || i == IntentSellColloquial
}

// Command sources.
const (
	SourceText  = "text"
	SourceVoice = "voice"
)
