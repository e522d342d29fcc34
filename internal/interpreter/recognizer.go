package interpreter

import (
	"regexp"
	"strings"

	apperrors "inventory-assistant/internal/common/errors"
)

// Parameter names captured by the recognizers.
const (
	ParamName      = "name"
	ParamQuantity  = "quantity"
	ParamCustomer  = "customer"
	ParamPrice     = "price"
	ParamStock     = "stock"
	ParamThreshold = "threshold"
	ParamUnit      = "unit"
)

// ParsedParameters maps a parameter name to its raw captured text.
type ParsedParameters map[string]string

// Match is a classified command.
type Match struct {
	Intent Intent           `json:"intent"`
	Params ParsedParameters `json:"params"`
}

// Recognizer decides whether a normalized command belongs to it.
//
// TryMatch returns ok=false when its gate does not apply, leaving the command
// to the next recognizer. When the gate applies but the detailed pattern
// does not, it returns ok=true and a parse failure carrying a usage hint.
type Recognizer interface {
	Name() string
	TryMatch(lower, original string) (m Match, ok bool, err error)
}

// rule is one structured pattern tried after the gate passed. A nil re
// accepts the command without parameters.
type rule struct {
	intent Intent
	re     *regexp.Regexp
	fields []string
}

type patternRecognizer struct {
	name  string
	gate  func(lower string) bool
	rules []rule
	usage string
}

func (r *patternRecognizer) Name() string { return r.name }

func (r *patternRecognizer) TryMatch(lower, original string) (Match, bool, error) {
	if !r.gate(lower) {
		return Match{}, false, nil
	}
	for _, rl := range r.rules {
		if rl.re == nil {
			return Match{Intent: rl.intent, Params: ParsedParameters{}}, true, nil
		}
		groups := rl.re.FindStringSubmatch(original)
		if groups == nil {
			continue
		}
		params := make(ParsedParameters, len(rl.fields))
		for i, field := range rl.fields {
			if v := groups[i+1]; v != "" {
				params[field] = v
			}
		}
		return Match{Intent: rl.intent, Params: params}, true, nil
	}
	return Match{Intent: IntentUnrecognized, Params: ParsedParameters{}}, true, apperrors.NewParseFailureError(r.usage)
}

const number = `(\d+(?:\.\d+)?)`

func prefix(p string) func(string) bool {
	return func(lower string) bool { return strings.HasPrefix(lower, p) }
}

var bechWord = regexp.MustCompile(`\bbech`)

// DefaultRecognizers returns the cascade in priority order. The first
// recognizer whose gate applies decides the outcome.
func DefaultRecognizers() []Recognizer {
	return []Recognizer{
		&patternRecognizer{
			name: "updateProduct",
			gate: prefix("update product"),
			rules: []rule{
				{IntentUpdateProductPrice, regexp.MustCompile(`(?i)^update product\s+(.+?)\s+price\s+` + number), []string{ParamName, ParamPrice}},
				{IntentUpdateProductStock, regexp.MustCompile(`(?i)^update product\s+(.+?)\s+stock\s+` + number), []string{ParamName, ParamStock}},
				{IntentUpdateProductThreshold, regexp.MustCompile(`(?i)^update product\s+(.+?)\s+low\s+` + number), []string{ParamName, ParamThreshold}},
			},
			usage: "Could not parse update product command. Use: update product <name> price <price> | stock <qty> | low <threshold>",
		},
		&patternRecognizer{
			name: "changePrice",
			gate: prefix("change price"),
			rules: []rule{
				{IntentChangePrice, regexp.MustCompile(`(?i)^change price\s+(.+?)\s+(?:to\s+)?` + number), []string{ParamName, ParamPrice}},
			},
			usage: "Could not parse change price command. Use: change price <name> to <price>",
		},
		&patternRecognizer{
			name: "addProduct",
			gate: prefix("add product"),
			rules: []rule{
				{
					IntentAddProduct,
					regexp.MustCompile(`(?i)^add product\s+(.+?)\s+stock\s+` + number + `\s+price\s+` + number +
						`(?:\s+unit\s+(\S+))?(?:\s+low\s+` + number + `)?$`),
					[]string{ParamName, ParamStock, ParamPrice, ParamUnit, ParamThreshold},
				},
			},
			usage: "Could not parse add product command. Use: add product <name> stock <qty> price <price> [unit <unit>] [low <threshold>]",
		},
		&patternRecognizer{
			name: "todaySummary",
			gate: func(lower string) bool {
				return (strings.Contains(lower, "today") && strings.Contains(lower, "sale")) ||
					strings.HasPrefix(lower, "today sales")
			},
			rules: []rule{{intent: IntentTodaySummary}},
		},
		&patternRecognizer{
			name: "lowStock",
			gate: func(lower string) bool {
				return strings.Contains(lower, "low stock") || strings.Contains(lower, "stock kam")
			},
			rules: []rule{{intent: IntentLowStock}},
		},
		&patternRecognizer{
			name: "sell",
			gate: prefix("sell "),
			rules: []rule{
				// an optional unit word after the quantity is discarded
				{IntentSellByName, regexp.MustCompile(`(?i)^sell\s+` + number + `\s+(?:[a-zA-Z]+\s+)?(.+?)(?:\s+to\s+(.+))?$`), []string{ParamQuantity, ParamName, ParamCustomer}},
			},
			usage: "Could not parse sell command. Use: sell <quantity> <productName> [to <customerName>]",
		},
		&patternRecognizer{
			name: "bech",
			gate: bechWord.MatchString,
			rules: []rule{
				{IntentSellColloquial, regexp.MustCompile(`(?i)^` + number + `\s+(?:[a-zA-Z]+\s+)?(.+?)\s+bech`), []string{ParamQuantity, ParamName}},
			},
			usage: "Could not parse bech command. Try: 2 kg sugar bech di",
		},
	}
}

// Classifier runs a recognizer cascade.
type Classifier struct {
	recognizers []Recognizer
}

func NewClassifier(recognizers ...Recognizer) *Classifier {
	if len(recognizers) == 0 {
		recognizers = DefaultRecognizers()
	}
	return &Classifier{recognizers: recognizers}
}

// Classify selects exactly one intent for normalized text. Text no
// recognizer claims is Unrecognized.
func (c *Classifier) Classify(normalized string) (Match, error) {
	lower := strings.ToLower(normalized)
	for _, r := range c.recognizers {
		m, ok, err := r.TryMatch(lower, normalized)
		if !ok {
			continue
		}
		return m, err
	}
	return Match{Intent: IntentUnrecognized, Params: ParsedParameters{}}, nil
}

// Recognizers lists recognizer names in priority order.
func (c *Classifier) Recognizers() []string {
	names := make([]string, len(c.recognizers))
	for i, r := range c.recognizers {
		names[i] = r.Name()
	}
	return names
}
