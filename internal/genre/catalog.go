package genre

// Genre is a label with the keyword phrases that vote for it.
type Genre struct {
	Label    string
	Keywords []string
}

// Catalog is an ordered, read-only set of genres. Order matters: it decides
// ties when two genres reach the same score.
type Catalog struct {
	genres []Genre
}

// NewCatalog copies genres so later changes by the caller are not observed.
func NewCatalog(genres []Genre) Catalog {
	cp := make([]Genre, len(genres))
	for i, g := range genres {
		cp[i] = Genre{Label: g.Label, Keywords: append([]string(nil), g.Keywords...)}
	}
	return Catalog{genres: cp}
}

func (c Catalog) Len() int {
	return len(c.genres)
}

// Labels returns the genre labels in catalog order.
func (c Catalog) Labels() []string {
	labels := make([]string, len(c.genres))
	for i, g := range c.genres {
		labels[i] = g.Label
	}
	return labels
}

// Has reports whether label is part of the catalog.
func (c Catalog) Has(label string) bool {
	for _, g := range c.genres {
		if g.Label == label {
			return true
		}
	}
	return false
}

var defaultGenres = []Genre{
	{Label: "hip_hop", Keywords: []string{
		"hip hop", "rap", "trap", "drill", "beat", "flow", "bars", "freestyle",
		"mixtape", "album", "verse", "hook", "rhyme", "lyrics", "mc", "dj",
	}},
	{Label: "pop", Keywords: []string{
		"pop", "mainstream", "hit", "chart", "radio", "catchy", "melody", "chorus",
		"single", "top 40", "commercial", "mainstream pop",
	}},
	{Label: "electronic", Keywords: []string{
		"electronic", "edm", "dubstep", "house", "techno", "trance", "drum", "bass",
		"synth", "beat", "drop", "remix", "mix", "dj set", "electronic music",
	}},
	{Label: "rock", Keywords: []string{
		"rock", "metal", "punk", "alternative", "indie", "guitar", "drums", "band",
		"concert", "live", "acoustic", "electric", "riff", "solo",
	}},
	{Label: "rnb", Keywords: []string{
		"r&b", "rnb", "soul", "funk", "blues", "jazz", "smooth", "vocal", "singer",
		"melody", "harmony", "groove", "rhythm",
	}},
	{Label: "country", Keywords: []string{
		"country", "folk", "bluegrass", "acoustic", "guitar", "banjo", "fiddle",
		"western", "southern", "rural", "cowboy", "honky tonk",
	}},
	{Label: "latin", Keywords: []string{
		"latin", "reggaeton", "salsa", "bachata", "merengue", "cumbia", "spanish",
		"latino", "hispanic", "tropical", "caribbean",
	}},
	{Label: "classical", Keywords: []string{
		"classical", "orchestra", "symphony", "piano", "violin", "cello", "opera",
		"chamber", "baroque", "romantic", "composer", "conductor",
	}},
	{Label: "jazz", Keywords: []string{
		"jazz", "blues", "swing", "bebop", "fusion", "improvisation", "saxophone",
		"trumpet", "piano", "bass", "drums", "combo", "big band",
	}},
	{Label: "reggae", Keywords: []string{
		"reggae", "dancehall", "ska", "rocksteady", "jamaican", "island", "tropical",
		"bob marley", "rasta", "dub", "roots",
	}},
}

// DefaultCatalog returns the built-in music genre catalog.
func DefaultCatalog() Catalog {
	return NewCatalog(defaultGenres)
}

var searchQueries = map[string][]string{
	"hip_hop": {
		"hip hop shorts", "rap music shorts", "trap beat shorts", "drill music shorts",
		"hip hop viral", "rap trending", "trap music viral", "hip hop beat",
	},
	"pop": {
		"pop music shorts", "mainstream pop shorts", "pop hit shorts", "chart music shorts",
		"pop viral", "mainstream trending", "pop music viral", "hit song shorts",
	},
	"electronic": {
		"edm shorts", "electronic music shorts", "dubstep shorts", "house music shorts",
		"edm viral", "electronic trending", "dubstep viral", "house music viral",
	},
	"rock": {
		"rock music shorts", "metal shorts", "punk shorts", "alternative rock shorts",
		"rock viral", "metal trending", "punk viral", "rock music viral",
	},
	"rnb": {
		"r&b shorts", "rnb shorts", "soul music shorts", "funk shorts",
		"r&b viral", "soul trending", "rnb viral", "soul music viral",
	},
}

// SearchQueries returns provider search phrases for the requested genres in
// request order. Genres without phrases are skipped.
func SearchQueries(genres []string) []string {
	var queries []string
	for _, g := range genres {
		queries = append(queries, searchQueries[g]...)
	}
	return queries
}
