// Package question generates randomized financial-mathematics exercises.
// Every generated question embeds the exact parameters its statement shows,
// and its solution is computed from those parameters by the finance package,
// so generation and scoring can never diverge.
package question

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julienduc-econ/finquiz/internal/finance"
)

// Category is a quiz theme a learner can select. CategoryAll is the
// sentinel meaning each question independently samples a theme.
type Category string

const (
	CategoryAll            Category = "Tout"
	CategoryCapitalisation Category = "Capitalisation"
	CategoryActualisation  Category = "Actualisation"
	CategoryRates          Category = "TAEG"
	CategoryLoans          Category = "Emprunts"
	CategoryInheritance    Category = "Héritage"
	CategoryNPV            Category = "VAN"
)

// Categories lists the selectable themes, CategoryAll first.
func Categories() []Category {
	return []Category{
		CategoryAll,
		CategoryCapitalisation,
		CategoryActualisation,
		CategoryRates,
		CategoryLoans,
		CategoryInheritance,
		CategoryNPV,
	}
}

// AnswerUnit determines both the display symbol and the scoring tolerance
// of an answer.
type AnswerUnit string

const (
	UnitCurrency   AnswerUnit = "€"
	UnitPercentage AnswerUnit = "%"
)

// Question is one generated exercise. Category carries the theme label
// shown to the learner, possibly decorated with the interest mode, e.g.
// "Capitalisation (Composés)".
type Question struct {
	Category  Category
	Statement string
	Solution  float64
	Unit      AnswerUnit
}

// FormatAmount renders a value for display: French-style currency with
// space-separated thousands and a comma decimal separator, or a percentage
// with two decimals.
func FormatAmount(value float64, unit AnswerUnit) string {
	if unit == UnitPercentage {
		return fmt.Sprintf("%.2f %%", value)
	}

	formatted := strconv.FormatFloat(value, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(formatted, "-") {
		sign = "-"
		formatted = formatted[1:]
	}
	integer, decimal, _ := strings.Cut(formatted, ".")

	var grouped strings.Builder
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(digit)
	}
	return fmt.Sprintf("%s%s,%s €", sign, grouped.String(), decimal)
}

func formatDuration(magnitude float64, unit finance.DurationUnit) string {
	if unit == finance.UnitYears {
		if magnitude == 1 {
			return "1 an"
		}
		return fmt.Sprintf("%v ans", magnitude)
	}
	return fmt.Sprintf("%v %s", magnitude, unit)
}

func formatRate(ratePct float64) string {
	return fmt.Sprintf("%.2f %%", ratePct)
}
