package question

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/julienduc-econ/finquiz/internal/finance"
)

// ErrUnknownCategory is returned when a filter outside the category set is
// requested. This is a programming error in the caller, not a content gap.
var ErrUnknownCategory = errors.New("unknown question category")

// archetype is a question template tied to one formula.
type archetype int

const (
	archetypeFutureValue archetype = iota
	archetypeSequentialReturn
	archetypePresentValue
	archetypeSolveRate
	archetypeAverageReturn
	archetypeAnnuityPayment
	archetypeInheritanceShare
	archetypeNPV
)

var categoryArchetypes = map[Category][]archetype{
	CategoryCapitalisation: {archetypeFutureValue, archetypeSequentialReturn},
	CategoryActualisation:  {archetypePresentValue},
	CategoryRates:          {archetypeSolveRate, archetypeAverageReturn},
	CategoryLoans:          {archetypeAnnuityPayment},
	CategoryInheritance:    {archetypeInheritanceShare},
	CategoryNPV:            {archetypeNPV},
	CategoryAll: {
		archetypeFutureValue,
		archetypeSequentialReturn,
		archetypePresentValue,
		archetypeSolveRate,
		archetypeAverageReturn,
		archetypeAnnuityPayment,
		archetypeInheritanceShare,
	},
}

// SamplingConfig holds the parameter ranges questions draw from. The zero
// value is not usable; start from DefaultSampling.
type SamplingConfig struct {
	Principals []float64
	// Annual rates are sampled as tick*RateStep with tick in
	// [RateTickMin, RateTickMax], rounded to 2 decimals.
	RateTickMin int
	RateTickMax int
	RateStep    float64
	DaysMin     int
	DaysMax     int
	MonthsMin   int
	MonthsMax   int
	YearsMin    int
	YearsMax    int
}

// DefaultSampling returns the course parameter ranges: rates roughly in
// [1.2 %, 7.2 %], durations 30-700 days, 2-24 months or 1-10 years.
func DefaultSampling() SamplingConfig {
	return SamplingConfig{
		Principals:  []float64{500, 1000, 5000, 10000, 20000, 50000},
		RateTickMin: 10,
		RateTickMax: 60,
		RateStep:    0.12,
		DaysMin:     30,
		DaysMax:     700,
		MonthsMin:   2,
		MonthsMax:   24,
		YearsMin:    1,
		YearsMax:    10,
	}
}

// Generator produces questions deterministically given its random source.
type Generator struct {
	rng      *rand.Rand
	sampling SamplingConfig
}

func NewGenerator(rng *rand.Rand, sampling SamplingConfig) *Generator {
	return &Generator{rng: rng, sampling: sampling}
}

// Generate resolves the filter to one archetype, samples parameters and
// returns the rendered question. A theme whose archetype has no template
// yet yields a placeholder question with solution 0 rather than an error,
// so the session question count stays stable.
func (g *Generator) Generate(filter Category) (Question, error) {
	archetypes, ok := categoryArchetypes[filter]
	if !ok {
		return Question{}, fmt.Errorf("%w: %q", ErrUnknownCategory, filter)
	}
	arch := archetypes[g.rng.Intn(len(archetypes))]

	switch arch {
	case archetypeFutureValue:
		return g.futureValue()
	case archetypeSequentialReturn:
		return g.sequentialReturn()
	case archetypePresentValue:
		return g.presentValue()
	case archetypeSolveRate:
		return g.solveRate()
	case archetypeAverageReturn:
		return g.averageReturn()
	case archetypeAnnuityPayment:
		return g.annuityPayment()
	case archetypeInheritanceShare:
		return g.inheritanceShare()
	}
	return placeholderQuestion(filter), nil
}

// PlaceholderStatement labels themes whose templates are not written yet.
const PlaceholderStatement = "Question en préparation (logique à compléter)."

func placeholderQuestion(category Category) Question {
	return Question{
		Category:  category,
		Statement: PlaceholderStatement,
		Solution:  0,
		Unit:      UnitCurrency,
	}
}

func (g *Generator) principal() float64 {
	return g.sampling.Principals[g.rng.Intn(len(g.sampling.Principals))]
}

func (g *Generator) annualRatePct() float64 {
	tick := g.randInt(g.sampling.RateTickMin, g.sampling.RateTickMax)
	return math.Round(float64(tick)*g.sampling.RateStep*100) / 100
}

func (g *Generator) duration() (float64, finance.DurationUnit) {
	switch g.rng.Intn(3) {
	case 0:
		return float64(g.randInt(g.sampling.DaysMin, g.sampling.DaysMax)), finance.UnitDays
	case 1:
		return float64(g.randInt(g.sampling.MonthsMin, g.sampling.MonthsMax)), finance.UnitMonths
	}
	return float64(g.randInt(g.sampling.YearsMin, g.sampling.YearsMax)), finance.UnitYears
}

// randInt returns a uniform integer in [low, high], both inclusive.
func (g *Generator) randInt(low, high int) int {
	return low + g.rng.Intn(high-low+1)
}

func (g *Generator) pick(variants []string) string {
	return variants[g.rng.Intn(len(variants))]
}

func (g *Generator) futureValue() (Question, error) {
	principal := g.principal()
	ratePct := g.annualRatePct()
	magnitude, unit := g.duration()

	solution, err := finance.FutureValue(principal, ratePct, magnitude, unit)
	if err != nil {
		return Question{}, fmt.Errorf("finance.FutureValue() > %w", err)
	}
	years, err := finance.YearsFromDuration(magnitude, unit)
	if err != nil {
		return Question{}, fmt.Errorf("finance.YearsFromDuration() > %w", err)
	}
	mode := "Simples"
	if years > 1.0 {
		mode = "Composés"
	}

	amount := FormatAmount(principal, UnitCurrency)
	rate := formatRate(ratePct)
	period := formatDuration(magnitude, unit)
	statement := g.pick([]string{
		fmt.Sprintf("Valeur acquise de %s placés à %s pendant %s ?", amount, rate, period),
		fmt.Sprintf("Vous placez %s à %s. Quel capital obtenez-vous après %s ?", amount, rate, period),
		fmt.Sprintf("Quel montant récupère-t-on en plaçant %s au taux annuel de %s pendant %s ?", amount, rate, period),
	})

	return Question{
		Category:  Category(fmt.Sprintf("%s (%s)", CategoryCapitalisation, mode)),
		Statement: statement,
		Solution:  solution,
		Unit:      UnitCurrency,
	}, nil
}

func (g *Generator) sequentialReturn() (Question, error) {
	principal := g.principal()
	count := g.randInt(2, 4)
	returns := make([]float64, count)
	labels := make([]string, count)
	for i := range returns {
		returns[i] = math.Round(float64(g.randInt(-60, 60))*g.sampling.RateStep*100) / 100
		labels[i] = formatRate(returns[i])
	}

	solution := finance.SequentialReturn(principal, returns)
	amount := FormatAmount(principal, UnitCurrency)
	sequence := joinFrench(labels)
	statement := g.pick([]string{
		fmt.Sprintf("Une action achetée %s enregistre des rendements successifs de %s. Quelle est sa valeur finale ?", amount, sequence),
		fmt.Sprintf("Vous investissez %s. Les rendements annuels sont %s. Que vaut le placement à l'issue ?", amount, sequence),
	})

	return Question{
		Category:  Category(fmt.Sprintf("%s (Rendements successifs)", CategoryCapitalisation)),
		Statement: statement,
		Solution:  solution,
		Unit:      UnitCurrency,
	}, nil
}

func (g *Generator) presentValue() (Question, error) {
	target := g.principal()
	ratePct := g.annualRatePct()
	magnitude, unit := g.duration()

	solution, err := finance.PresentValue(target, ratePct, magnitude, unit)
	if err != nil {
		return Question{}, fmt.Errorf("finance.PresentValue() > %w", err)
	}

	amount := FormatAmount(target, UnitCurrency)
	rate := formatRate(ratePct)
	period := formatDuration(magnitude, unit)
	statement := g.pick([]string{
		fmt.Sprintf("Quel capital faut-il placer aujourd'hui à %s pour obtenir %s dans %s ?", rate, amount, period),
		fmt.Sprintf("Valeur actuelle de %s perçus dans %s, actualisés à %s ?", amount, period, rate),
	})

	return Question{
		Category:  CategoryActualisation,
		Statement: statement,
		Solution:  solution,
		Unit:      UnitCurrency,
	}, nil
}

func (g *Generator) solveRate() (Question, error) {
	principal := g.principal()
	ratePct := g.annualRatePct()
	magnitude, unit := g.duration()

	grown, err := finance.FutureValue(principal, ratePct, magnitude, unit)
	if err != nil {
		return Question{}, fmt.Errorf("finance.FutureValue() > %w", err)
	}
	// The statement shows the rounded future value, so the reference rate
	// is solved from that same rounded figure.
	futureValue := math.Round(grown*100) / 100
	solution, err := finance.SolveRate(principal, futureValue, magnitude, unit)
	if err != nil {
		return Question{}, fmt.Errorf("finance.SolveRate() > %w", err)
	}

	initial := FormatAmount(principal, UnitCurrency)
	final := FormatAmount(futureValue, UnitCurrency)
	period := formatDuration(magnitude, unit)
	statement := g.pick([]string{
		fmt.Sprintf("À quel taux annuel %s deviennent-ils %s en %s ?", initial, final, period),
		fmt.Sprintf("Un capital de %s atteint %s après %s. Quel est le taux annuel ?", initial, final, period),
	})

	return Question{
		Category:  CategoryRates,
		Statement: statement,
		Solution:  solution,
		Unit:      UnitPercentage,
	}, nil
}

func (g *Generator) averageReturn() (Question, error) {
	count := g.randInt(2, 4)
	returns := make([]float64, count)
	labels := make([]string, count)
	for i := range returns {
		returns[i] = math.Round(float64(g.randInt(-60, 60))*g.sampling.RateStep*100) / 100
		labels[i] = formatRate(returns[i])
	}

	solution, err := finance.AverageAnnualReturn(returns)
	if err != nil {
		return Question{}, fmt.Errorf("finance.AverageAnnualReturn() > %w", err)
	}

	sequence := joinFrench(labels)
	statement := g.pick([]string{
		fmt.Sprintf("Un placement rapporte %s sur des années successives. Quel est son rendement moyen annuel ?", sequence),
		fmt.Sprintf("Rendement moyen annuel d'un titre dont les performances sont %s ?", sequence),
	})

	return Question{
		Category:  CategoryRates,
		Statement: statement,
		Solution:  solution,
		Unit:      UnitPercentage,
	}, nil
}

func (g *Generator) annuityPayment() (Question, error) {
	principal := g.principal()
	ratePct := g.annualRatePct()
	months := g.randInt(1, 10) * 12
	deferral := g.randInt(0, 2) * 3
	periodicRate := ratePct / 100 / 12

	payment, _, err := finance.ConstantAnnuityPayment(principal, periodicRate, months, deferral)
	if err != nil {
		return Question{}, fmt.Errorf("finance.ConstantAnnuityPayment() > %w", err)
	}

	amount := FormatAmount(principal, UnitCurrency)
	rate := formatRate(ratePct)
	base := g.pick([]string{
		fmt.Sprintf("Emprunt de %s au taux annuel de %s remboursé par %d mensualités constantes.", amount, rate, months),
		fmt.Sprintf("Vous empruntez %s à %s sur %d mois, par mensualités constantes.", amount, rate, months),
	})
	if deferral > 0 {
		base += fmt.Sprintf(" Le remboursement commence après un différé de %d mois.", deferral)
	}
	statement := base + " Quel est le montant de la mensualité ?"

	return Question{
		Category:  CategoryLoans,
		Statement: statement,
		Solution:  payment,
		Unit:      UnitCurrency,
	}, nil
}

func (g *Generator) inheritanceShare() (Question, error) {
	capital := g.principal() * 10
	ratePct := g.annualRatePct()
	inflationPct := math.Round(float64(g.randInt(5, 25))*g.sampling.RateStep*100) / 100
	const majorityAge = 18

	count := g.randInt(2, 4)
	ages := make([]int, count)
	for i := range ages {
		ages[i] = g.randInt(4, 17)
	}

	shares, err := finance.InheritanceSplit(capital, ratePct/100, inflationPct/100, ages, majorityAge)
	if err != nil {
		return Question{}, fmt.Errorf("finance.InheritanceSplit() > %w", err)
	}
	youngest := 0
	for i, age := range ages {
		if age < ages[youngest] {
			youngest = i
		}
	}

	ageLabels := make([]string, count)
	for i, age := range ages {
		ageLabels[i] = fmt.Sprintf("%d ans", age)
	}
	statement := fmt.Sprintf(
		"Un capital de %s est partagé entre %d enfants âgés de %s, de façon équitable à leur majorité (%d ans), "+
			"avec un taux de placement de %s et une inflation de %s. Quelle est la part du plus jeune ?",
		FormatAmount(capital, UnitCurrency), count, joinFrench(ageLabels), majorityAge,
		formatRate(ratePct), formatRate(inflationPct),
	)

	return Question{
		Category:  CategoryInheritance,
		Statement: statement,
		Solution:  shares[youngest],
		Unit:      UnitCurrency,
	}, nil
}

// joinFrench renders "a, b et c".
func joinFrench(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	head := items[:len(items)-1]
	return fmt.Sprintf("%s et %s", joinComma(head), items[len(items)-1])
}

func joinComma(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}
