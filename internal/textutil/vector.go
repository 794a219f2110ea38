package textutil

import "math"

// termVector is a bag of title tokens with per-term weights.
type termVector struct {
	weights map[string]float64
	norm    float64
}

func newTermVector(title string) termVector {
	weights := make(map[string]float64)
	for _, token := range Tokenize(title) {
		weights[token]++
	}
	return termVector{weights: weights, norm: magnitude(weights)}
}

func magnitude(weights map[string]float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// reweight multiplies each term by its idf factor. Terms missing from idf keep
// their weight; terms whose weight drops to zero are removed.
func (v termVector) reweight(idf map[string]float64) termVector {
	if len(idf) == 0 {
		return v
	}
	weights := make(map[string]float64, len(v.weights))
	for token, w := range v.weights {
		if factor, ok := idf[token]; ok {
			w *= factor
		}
		if w != 0 {
			weights[token] = w
		}
	}
	return termVector{weights: weights, norm: magnitude(weights)}
}

// cosine is 0 when either vector is empty.
func cosine(a, b termVector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, w := range a.weights {
		dot += w * b.weights[token]
	}
	return dot / (a.norm * b.norm)
}

// inverseDocumentFrequency returns log((N+1)/(1+df)) for every term seen in
// docs, where df counts the documents containing the term.
func inverseDocumentFrequency(docs []termVector) map[string]float64 {
	if len(docs) == 0 {
		return nil
	}
	df := make(map[string]int)
	for _, doc := range docs {
		for token := range doc.weights {
			df[token]++
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for token, count := range df {
		idf[token] = math.Log((n + 1) / (1 + float64(count)))
	}
	return idf
}
