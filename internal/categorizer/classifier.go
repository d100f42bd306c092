package categorizer

import (
	"math"
	"regexp"
	"strings"
)

// The similarity machinery below is a small TF-IDF vectorizer with
// cosine scoring. It backs two optional signals: the cascade's
// similarity stage (scored against the keyword corpus) and the
// statistical classifier (nearest centroid over labeled samples).
// Neither signal is authoritative; the rule cascade always remains the
// baseline.

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(s string) []string {
	return tokenRe.FindAllString(strings.ToLower(s), -1)
}

// vectorizer computes TF-IDF vectors over a fixed document corpus.
type vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// fitVectorizer learns the vocabulary and inverse document frequencies
// from the given documents.
func fitVectorizer(docs []string) *vectorizer {
	v := &vectorizer{vocabulary: make(map[string]int)}

	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, tok := range tokenize(doc) {
			if _, ok := v.vocabulary[tok]; !ok {
				v.vocabulary[tok] = len(v.vocabulary)
			}
			if !seen[tok] {
				docFreq[tok]++
				seen[tok] = true
			}
		}
	}

	v.idf = make([]float64, len(v.vocabulary))
	n := float64(len(docs))
	for tok, idx := range v.vocabulary {
		// Smoothed IDF keeps terms present in every document from
		// vanishing entirely.
		v.idf[idx] = math.Log((1+n)/(1+float64(docFreq[tok]))) + 1
	}

	return v
}

// transform maps a document to its L2-normalized TF-IDF vector,
// represented sparsely as index -> weight.
func (v *vectorizer) transform(doc string) map[int]float64 {
	counts := make(map[int]float64)
	for _, tok := range tokenize(doc) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return counts
	}

	var norm float64
	for idx, tf := range counts {
		w := tf * v.idf[idx]
		counts[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx := range counts {
		counts[idx] /= norm
	}
	return counts
}

func cosine(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, w := range a {
		dot += w * b[idx]
	}
	return dot
}

// similarityIndex scores descriptions against the category keyword
// corpus. Each keyword is a separate document labeled with its
// category, mirroring how the keyword corpus is indexed for matching.
type similarityIndex struct {
	vec    *vectorizer
	docs   []map[int]float64
	labels []string
}

func buildSimilarityIndex(keywordDocs []string, labels []string) *similarityIndex {
	if len(keywordDocs) == 0 {
		return nil
	}

	idx := &similarityIndex{
		vec:    fitVectorizer(keywordDocs),
		labels: labels,
	}
	for _, doc := range keywordDocs {
		idx.docs = append(idx.docs, idx.vec.transform(doc))
	}
	return idx
}

// nearest returns the best-matching category and its cosine similarity.
func (si *similarityIndex) nearest(description string) (string, float64) {
	query := si.vec.transform(description)
	if len(query) == 0 {
		return "", 0
	}

	best := -1
	bestScore := 0.0
	for i, doc := range si.docs {
		if score := cosine(query, doc); score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return "", 0
	}
	return si.labels[best], bestScore
}

// Sample is one labeled description used to train the statistical
// classifier.
type Sample struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Classifier is the optional statistical refinement: a nearest-centroid
// model over TF-IDF vectors of historical categorized descriptions. Its
// prediction overrides the rule cascade only above the configured
// acceptance threshold.
type Classifier struct {
	vec       *vectorizer
	centroids map[string]map[int]float64
	trained   bool
}

// NewClassifier creates an untrained classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// IsTrained reports whether Train has been called with usable data.
func (c *Classifier) IsTrained() bool {
	return c.trained
}

// Train fits the classifier on labeled samples. Retraining replaces the
// previous model.
func (c *Classifier) Train(samples []Sample) {
	if len(samples) == 0 {
		return
	}

	docs := make([]string, len(samples))
	for i, s := range samples {
		docs[i] = s.Description
	}
	c.vec = fitVectorizer(docs)

	sums := make(map[string]map[int]float64)
	for _, s := range samples {
		v := c.vec.transform(s.Description)
		if sums[s.Category] == nil {
			sums[s.Category] = make(map[int]float64)
		}
		for idx, w := range v {
			sums[s.Category][idx] += w
		}
	}

	// Normalize each centroid so cosine against it is well scaled.
	c.centroids = make(map[string]map[int]float64, len(sums))
	for category, sum := range sums {
		var norm float64
		for _, w := range sum {
			norm += w * w
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		centroid := make(map[int]float64, len(sum))
		for idx, w := range sum {
			centroid[idx] = w / norm
		}
		c.centroids[category] = centroid
	}

	c.trained = len(c.centroids) > 0
}

// Predict returns the nearest category and the cosine similarity as the
// model's own confidence. An untrained classifier predicts nothing.
func (c *Classifier) Predict(description string) (string, float64) {
	if !c.trained {
		return "", 0
	}

	query := c.vec.transform(description)
	if len(query) == 0 {
		return "", 0
	}

	best := ""
	bestScore := 0.0
	for category, centroid := range c.centroids {
		if score := cosine(query, centroid); score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best, bestScore
}
