package coins

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Denomination labels a coin, e.g. "25".
type Denomination string

func (d Denomination) String() string {
	return string(d)
}

// Value is the face value of the coin, if the label is numeric.
func (d Denomination) Value() (decimal.Decimal, bool) {
	value, err := decimal.NewFromString(string(d))
	if err != nil {
		return decimal.Zero, false
	}

	return value, true
}

// Denominations is the registered set, in display order.
type Denominations []Denomination

var DefaultDenominations = Denominations{"1", "5", "10", "25"}

func NewDenominations(labels []string) (Denominations, error) {
	if len(labels) == 0 {
		return nil, errors.New("at least one denomination is required")
	}

	seen := make(map[Denomination]bool, len(labels))
	result := make(Denominations, 0, len(labels))
	for _, label := range labels {
		d := Denomination(strings.TrimSpace(label))
		if d == "" {
			return nil, errors.New("denominations cannot be blank")
		}

		if seen[d] {
			return nil, errors.Errorf("duplicate denomination %s", d)
		}

		seen[d] = true
		result = append(result, d)
	}

	return result, nil
}

func (ds Denominations) Contains(d Denomination) bool {
	for _, registered := range ds {
		if registered == d {
			return true
		}
	}

	return false
}

func (ds Denominations) Strings() []string {
	labels := make([]string, len(ds))
	for i, d := range ds {
		labels[i] = d.String()
	}

	return labels
}
