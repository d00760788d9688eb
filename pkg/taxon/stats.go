package taxon

// GeneCategory is a category of genes reported in feature statistics of
// an annotation.
type GeneCategory string

const (
	Coding     GeneCategory = "coding"
	NonCoding  GeneCategory = "non_coding"
	Pseudogene GeneCategory = "pseudogene"
)

// GeneCategories returns all gene categories with computed statistics.
func GeneCategories() []GeneCategory {
	return []GeneCategory{Coding, NonCoding, Pseudogene}
}

// Keys returns keys under which the category can appear in feature
// statistics documents. Older documents use the longer forms.
func (g GeneCategory) Keys() []string {
	switch g {
	case Coding:
		return []string{"coding", "coding_genes"}
	case NonCoding:
		return []string{"non_coding", "non_coding_genes"}
	case Pseudogene:
		return []string{"pseudogene", "pseudogenes"}
	}
	return []string{string(g)}
}

// Summary holds descriptive statistics of a sample.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	N      int     `json:"n"`
}

// CountStats wraps a Summary of gene counts.
type CountStats struct {
	Count Summary `json:"count"`
}

// Stats are statistics attached to a taxon.
type Stats struct {
	Genes map[GeneCategory]CountStats `json:"genes"`
}

// NewStats creates Stats with degenerate summaries for every category.
func NewStats() *Stats {
	res := &Stats{Genes: make(map[GeneCategory]CountStats)}
	for _, g := range GeneCategories() {
		res.Genes[g] = CountStats{}
	}
	return res
}
