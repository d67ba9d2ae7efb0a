package widget

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/shopspring/decimal"
)

var (
	count   = promptui.Styler(promptui.FGBlue, promptui.FGBold)
	failure = promptui.Styler(promptui.FGRed)
	faint   = promptui.Styler(promptui.FGFaint)
)

const timeLayout = "15:04:05"

// Render writes the widget as text.
func (w *Widget) Render(out io.Writer) error {
	state := w.State()

	var b strings.Builder
	b.WriteString("💰 Coin Counter\n\n")
	b.WriteString("  " + count(state.Reading.Total.String()) + "\n")

	if state.Reading.Counts != nil {
		b.WriteString("\n")
		for _, label := range Labels(state.Reading.Counts) {
			fmt.Fprintf(&b, "  %6s × %d\n", label, state.Reading.Counts[label])
		}
		fmt.Fprintf(&b, "  worth %s\n", Worth(state.Reading.Counts).String())
	}

	if state.Busy {
		b.WriteString("\n  " + faint("loading…") + "\n")
	}

	if state.Error != "" {
		b.WriteString("\n  " + failure(state.Error) + "\n")
	}

	if len(state.Activity) > 0 {
		b.WriteString("\n  Recent activity\n")
		for _, entry := range state.Activity {
			fmt.Fprintf(&b, "  %s %s %s\n", faint(entry.At.Format(timeLayout)), entry.Action, entry.Amount)
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// Worth is the face value of the counted coins, ignoring labels that are
// not numbers.
func Worth(counts map[string]int64) decimal.Decimal {
	worth := decimal.Zero
	for label, n := range counts {
		value, err := decimal.NewFromString(label)
		if err != nil {
			continue
		}
		worth = worth.Add(value.Mul(decimal.NewFromInt(n)))
	}

	return worth
}

// Labels orders numeric labels by value, then the rest by name.
func Labels(counts map[string]int64) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}

	sort.Slice(labels, func(i, j int) bool {
		a, errA := decimal.NewFromString(labels[i])
		b, errB := decimal.NewFromString(labels[j])
		switch {
		case errA == nil && errB == nil:
			return a.LessThan(b)
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return labels[i] < labels[j]
		}
	})

	return labels
}
