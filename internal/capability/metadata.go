package capability

import "github.com/wonny/ainavigator/backend/internal/contracts"

// Dimension describes one of the eight capability dimensions
type Dimension struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Constructs  [4]int `json:"constructs"`
}

// Construct describes one scored survey construct
type Construct struct {
	ID          int    `json:"id"`
	DimensionID int    `json:"dimension_id"`
	Name        string `json:"name"`
}

// ⭐ SSOT: capability dimension and construct catalogue
var dimensions = [contracts.DimensionCount]Dimension{
	{1, "Strategy and Vision", "AI initiatives aligned with business objectives, backed by leadership and resource allocation.", [4]int{1, 2, 3, 4}},
	{2, "Data", "Reliable, accessible and governed data that supports data-driven decisions.", [4]int{5, 6, 7, 8}},
	{3, "Technology", "Scalable AI tools and platforms integrated across cloud and on-premises systems.", [4]int{9, 10, 11, 12}},
	{4, "Talent and Skills", "AI expertise, ongoing training and cross-functional collaboration.", [4]int{13, 14, 15, 16}},
	{5, "Organisation and Processes", "AI embedded in structure, governance and decision-making processes.", [4]int{17, 18, 19, 20}},
	{6, "Innovation", "Experimentation, prototyping and fast implementation of AI products.", [4]int{21, 22, 23, 24}},
	{7, "Adaptation & Adoption", "Tools and work methods updated so employees use AI as intended.", [4]int{25, 26, 27, 28}},
	{8, "Ethics and Responsibility", "Fair, transparent and accountable AI with privacy and legal compliance.", [4]int{29, 30, 31, 32}},
}

var constructNames = [contracts.MaxConstructID]string{
	"Alignment with Business Goals",
	"Leadership Commitment",
	"Long-Term Vision",
	"Resource Allocation",
	"Data Quality",
	"Data Accessibility",
	"Data Governance Framework",
	"Data Integration",
	"AI Tools and Platforms",
	"Scalability",
	"Cloud vs. On-Premises Solutions",
	"Integration and Optimization",
	"AI Skills and Expertise",
	"Training and Development",
	"Recruitment and Team Formation",
	"Cross-Functional Collaboration",
	"AI Governance and Structure",
	"Process Integration and Optimization",
	"Change Management",
	"AI-Driven Decision Optimization",
	"Prototyping and Experimentation",
	"Products and Services",
	"Speed of Implementation",
	"Innovation Culture and Leadership",
	"Tool Adoption",
	"Job Redesign",
	"Employee Engagement",
	"Confidence/Authority",
	"Ethical AI Framework",
	"Bias and Fairness",
	"Transparency and Explainability",
	"Data Privacy and Security",
}

// Dimensions returns all dimensions ordered by id
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensions))
	copy(out, dimensions[:])
	return out
}

// DimensionByID looks up a dimension
func DimensionByID(id int) (Dimension, bool) {
	if id < 1 || id > contracts.DimensionCount {
		return Dimension{}, false
	}
	return dimensions[id-1], true
}

// DimensionName returns the dimension's name or "" for an unknown id
func DimensionName(id int) string {
	d, _ := DimensionByID(id)
	return d.Name
}

// ConstructByID looks up a construct
func ConstructByID(id int) (Construct, bool) {
	dim := contracts.DimensionOf(id)
	if dim == 0 {
		return Construct{}, false
	}
	return Construct{ID: id, DimensionID: dim, Name: constructNames[id-1]}, true
}

// Constructs returns the constructs of one dimension
func Constructs(dimensionID int) []Construct {
	d, ok := DimensionByID(dimensionID)
	if !ok {
		return nil
	}
	out := make([]Construct, 0, len(d.Constructs))
	for _, id := range d.Constructs {
		c, _ := ConstructByID(id)
		out = append(out, c)
	}
	return out
}
