package textutil

// DefaultMatchThreshold is the minimum similarity BestMatch accepts.
const DefaultMatchThreshold = 0.5

// minDocsForIDF is the smallest candidate set where down-weighting common
// tokens helps rather than erasing them.
const minDocsForIDF = 3

// BestMatch returns the index of the candidate most similar to query, or -1
// when nothing reaches threshold. A case-folded exact match always wins.
// Tokens shared by many candidates are down-weighted.
func BestMatch(query string, candidates []string, threshold float64) (int, float64) {
	folded := FoldTitle(query)
	if folded == "" || len(candidates) == 0 {
		return -1, 0
	}
	for i, candidate := range candidates {
		if FoldTitle(candidate) == folded {
			return i, 1
		}
	}

	docs := make([]termVector, len(candidates))
	for i, candidate := range candidates {
		docs[i] = newTermVector(candidate)
	}
	var idf map[string]float64
	if len(docs) >= minDocsForIDF {
		idf = inverseDocumentFrequency(docs)
	}

	target := newTermVector(query).reweight(idf)
	best, bestScore := -1, 0.0
	for i, doc := range docs {
		if score := cosine(target, doc.reweight(idf)); score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore < threshold {
		return -1, bestScore
	}
	return best, bestScore
}
