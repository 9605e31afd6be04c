package genre

import (
	"sort"
	"strings"

	"shortsd/internal/models"
)

// Scores maps a genre label to its normalized keyword density.
type Scores map[string]float64

// Result is the outcome of one classification. Primary is empty when no
// keyword matched.
type Result struct {
	Scores     Scores
	Primary    string
	Confidence float64
}

// Classifier scores free text against a Catalog. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	catalog Catalog
}

func NewClassifier(catalog Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// NewDefaultClassifier is the wire provider for the built-in catalog.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultCatalog())
}

func (c *Classifier) Catalog() Catalog {
	return c.catalog
}

// Analyze returns the per-genre scores of title, description and tags.
func (c *Classifier) Analyze(title, description string, tags []string) Scores {
	text := strings.ToLower(title + " " + description + " " + strings.Join(tags, " "))
	words := len(strings.Fields(text))

	scores := make(Scores, len(c.catalog.genres))
	for _, g := range c.catalog.genres {
		if words == 0 {
			scores[g.Label] = 0
			continue
		}
		hits := 0
		for _, kw := range g.Keywords {
			hits += strings.Count(text, strings.ToLower(kw))
		}
		scores[g.Label] = float64(hits) / float64(words)
	}
	return scores
}

// Primary picks the highest scoring genre, the first in catalog order on a
// tie. It returns "" when every score is zero.
func (c *Classifier) Primary(scores Scores) string {
	best, bestScore := "", 0.0
	for _, g := range c.catalog.genres {
		s, ok := scores[g.Label]
		if !ok {
			continue
		}
		if s > bestScore {
			best, bestScore = g.Label, s
		}
	}
	return best
}

// Confidence is the margin between the two best scores, capped at 1.
func Confidence(scores Scores) float64 {
	if len(scores) == 0 {
		return 0
	}
	values := make([]float64, 0, len(scores))
	for _, s := range scores {
		values = append(values, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	conf := values[0]
	if len(values) > 1 {
		conf -= values[1]
	}
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

// Classify runs Analyze, Primary and Confidence in one step.
func (c *Classifier) Classify(title, description string, tags []string) Result {
	scores := c.Analyze(title, description, tags)
	return Result{
		Scores:     scores,
		Primary:    c.Primary(scores),
		Confidence: Confidence(scores),
	}
}

// Annotate returns a copy of v carrying its classification.
func (c *Classifier) Annotate(v models.Video) models.Video {
	res := c.Classify(v.Title, v.Description, v.Tags)
	v.Tags = append([]string(nil), v.Tags...)
	v.GenreScores = res.Scores
	v.PrimaryGenre = res.Primary
	v.GenreConfidence = res.Confidence
	return v
}

// FilterByGenre annotates every video and keeps those whose primary genre is
// one of targets with at least minConfidence. Input order is preserved and
// the input slice is left untouched.
func (c *Classifier) FilterByGenre(videos []models.Video, targets []string, minConfidence float64) []models.Video {
	wanted := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		wanted[t] = struct{}{}
	}

	filtered := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		annotated := c.Annotate(v)
		if annotated.PrimaryGenre == "" {
			continue
		}
		if _, ok := wanted[annotated.PrimaryGenre]; !ok {
			continue
		}
		if annotated.GenreConfidence < minConfidence {
			continue
		}
		filtered = append(filtered, annotated)
	}
	return filtered
}

// Statistics counts videos per primary genre, skipping unclassified ones.
func Statistics(videos []models.Video) map[string]int {
	stats := make(map[string]int)
	for _, v := range videos {
		if v.PrimaryGenre == "" {
			continue
		}
		stats[v.PrimaryGenre]++
	}
	return stats
}
