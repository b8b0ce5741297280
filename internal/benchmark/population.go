package benchmark

type accumulator struct {
	sum float64
	n   int
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.n++
}

func (a *accumulator) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

// respondentKey identifies a respondent across companies
type respondentKey struct {
	company    string
	respondent string
}

// population collects the scores of one construct or dimension.
// records averages every record; respondents keeps one mean per respondent
// so several waves of the same person count once in the distribution.
type population struct {
	records     accumulator
	respondents map[respondentKey]*accumulator
}

func group(groups map[int]*population, id int) *population {
	p, ok := groups[id]
	if !ok {
		p = &population{respondents: make(map[respondentKey]*accumulator)}
		groups[id] = p
	}
	return p
}

func (p *population) add(key respondentKey, score float64) {
	p.records.add(score)
	acc, ok := p.respondents[key]
	if !ok {
		acc = &accumulator{}
		p.respondents[key] = acc
	}
	acc.add(score)
}

// distribution returns one mean score per respondent
func (p *population) distribution() []float64 {
	out := make([]float64, 0, len(p.respondents))
	for _, acc := range p.respondents {
		out = append(out, acc.mean())
	}
	return out
}
