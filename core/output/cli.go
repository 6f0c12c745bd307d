package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"rvg-calc/core/types"
)

const (
	labelWidth  = 50
	amountWidth = 20

	// innerWidth is the box width between the borders
	innerWidth = labelWidth + amountWidth + 3
)

// CLIFormatter renders a boxed calculation table
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes the table
func (f *CLIFormatter) Render(w io.Writer, result *types.CalculationResult) error {
	p := &printer{w: w}

	p.rule("┌", "┐")
	p.title("RVG FEE CALCULATION")
	p.rule("├", "┤")
	p.row("Gegenstandswert", money(result.DisputedAmount))
	p.row("Gebührentabelle", result.ScheduleVersionID)
	if result.ReducedScheduleVersionID != "" {
		p.row("PKH-Tabelle", result.ReducedScheduleVersionID)
	}
	p.rule("├", "┤")

	for _, item := range result.Items {
		p.row(itemLabel(item), money(item.Amount))
		if !item.CreditDeduction.IsZero() {
			p.detail("Anrechnung", money(item.CreditDeduction))
		}
		if f.opts.ShowNotes {
			for _, note := range item.Notes {
				p.detail(note, "")
			}
		}
	}

	p.rule("├", "┤")
	p.row("Netto", money(result.NetTotal))
	p.row("Umsatzsteuer", money(result.VATAmount))
	p.row("Brutto", money(result.GrossTotal))
	p.rule("└", "┘")

	if f.opts.ShowNotices && len(result.Notices) > 0 {
		p.line("")
		p.line("Hinweise:")
		for _, notice := range result.Notices {
			p.line("  - " + notice)
		}
	}
	return p.err
}

func itemLabel(item types.CalculationItem) string {
	label := fmt.Sprintf("%s %s", item.Code, item.Name)
	if item.Rate != nil {
		label = fmt.Sprintf("%s (%s)", label, item.Rate)
	}
	if item.AutoAppended {
		label += " *"
	}
	return label
}

func money(d decimal.Decimal) string {
	return d.StringFixed(types.MinorUnitPlaces) + " " + types.CurrencyEUR.String()
}

// printer keeps the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) rule(left, right string) {
	p.line(left + strings.Repeat("─", innerWidth) + right)
}

func (p *printer) title(s string) {
	pad := max(innerWidth-len([]rune(s)), 0)
	p.line("│" + strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2) + "│")
}

func (p *printer) row(label, amount string) {
	p.line(fmt.Sprintf("│ %-*s %*s │", labelWidth, truncate(label, labelWidth), amountWidth, amount))
}

func (p *printer) detail(label, amount string) {
	p.line(fmt.Sprintf("│   └─ %-*s %*s │", labelWidth-5, truncate(label, labelWidth-5), amountWidth, amount))
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimSpace(string(runes[:maxLen-3])) + "..."
}
