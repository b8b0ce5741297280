package contracts

// BenchmarkFilters are exact-match predicates on the peer population.
// An empty field imposes no constraint.
type BenchmarkFilters struct {
	Region    string `json:"region,omitempty"` // matches country_synthetic
	Industry  string `json:"industry,omitempty"`
	Continent string `json:"continent,omitempty"`
}

// Match reports whether a record passes every provided filter
func (f BenchmarkFilters) Match(r ScoreRecord) bool {
	if f.Region != "" && r.CountrySynthetic != f.Region {
		return false
	}
	if f.Industry != "" && r.IndustrySynthetic != f.Industry {
		return false
	}
	if f.Continent != "" && r.ContinentSynthetic != f.Continent {
		return false
	}
	return true
}

// ConstructBenchmark compares the company to its peers on one construct.
// Peer-derived fields are nil when the filtered peer population is empty.
type ConstructBenchmark struct {
	ConstructID       int      `json:"construct_id"`
	DimensionID       int      `json:"dimension_id"`
	CompanyAverage    float64  `json:"company_average"`
	PeerAverage       *float64 `json:"peer_average"`
	Percentile        *float64 `json:"percentile"`
	Gap               *float64 `json:"gap"`
	Passed            *bool    `json:"passed"`
	CompanySampleSize int      `json:"company_sample_size"`
	PeerSampleSize    int      `json:"peer_sample_size"`
}

// HasPeers reports whether peer data existed for the construct
func (c ConstructBenchmark) HasPeers() bool {
	return c.PeerAverage != nil
}

// DimensionBenchmark is the same comparison rolled up to one dimension
type DimensionBenchmark struct {
	DimensionID       int      `json:"dimension_id"`
	Name              string   `json:"name"`
	CompanyAverage    float64  `json:"company_average"`
	PeerAverage       *float64 `json:"peer_average"`
	Percentile        *float64 `json:"percentile"`
	Gap               *float64 `json:"gap"`
	Passed            *bool    `json:"passed"`
	CompanySampleSize int      `json:"company_sample_size"`
	PeerSampleSize    int      `json:"peer_sample_size"`
}

// BenchmarkResult is derived per request and never stored
type BenchmarkResult struct {
	Constructs         map[int]ConstructBenchmark `json:"constructs"`
	Dimensions         map[int]DimensionBenchmark `json:"dimensions"`
	OverallPeerAverage *float64                   `json:"overall_peer_average"`
	PeerSampleSize     int                        `json:"peer_sample_size"`
	FiltersApplied     BenchmarkFilters           `json:"filters_applied"`
	RegionAverages     map[string]map[int]float64 `json:"region_averages,omitempty"`
	IndustryAverages   map[string]map[int]float64 `json:"industry_averages,omitempty"`
}

// WeakDimensions returns dimensions where the company trails its peers, worst gap first
func (r BenchmarkResult) WeakDimensions() []DimensionBenchmark {
	weak := make([]DimensionBenchmark, 0)
	for _, d := range r.Dimensions {
		if d.Passed != nil && !*d.Passed {
			weak = append(weak, d)
		}
	}
	// insertion sort: at most eight dimensions
	for i := 1; i < len(weak); i++ {
		for j := i; j > 0 && lessGap(weak[j], weak[j-1]); j-- {
			weak[j], weak[j-1] = weak[j-1], weak[j]
		}
	}
	return weak
}

func lessGap(a, b DimensionBenchmark) bool {
	if *a.Gap != *b.Gap {
		return *a.Gap < *b.Gap
	}
	return a.DimensionID < b.DimensionID
}
