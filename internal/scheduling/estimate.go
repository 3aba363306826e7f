package scheduling

// DefaultWordsPerDay is the studio's observed narration throughput.
const DefaultWordsPerDay = 6975

// Estimator converts a manuscript word count into whole production days.
type Estimator struct {
	wordsPerDay int
}

// NewEstimator builds an estimator; non-positive throughput falls back to
// DefaultWordsPerDay.
func NewEstimator(wordsPerDay int) Estimator {
	if wordsPerDay <= 0 {
		wordsPerDay = DefaultWordsPerDay
	}
	return Estimator{wordsPerDay: wordsPerDay}
}

// WordsPerDay exposes the configured throughput.
func (e Estimator) WordsPerDay() int {
	return e.wordsPerDay
}

// Days returns ceil(wordCount / wordsPerDay). A zero or negative word count
// yields 0 — "no estimate yet", distinct from a one-day minimum.
func (e Estimator) Days(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + e.wordsPerDay - 1) / e.wordsPerDay
}
