package dto

// MetricsSnapshot is the JSON view of the in-process metrics.
type MetricsSnapshot struct {
	Goroutines         int     `json:"goroutines"`
	CacheHitRatio      float64 `json:"cacheHitRatio"`
	RequestCount       float64 `json:"requestCount"`
	GenerationRuns     float64 `json:"generationRuns"`
	GenerationFailures float64 `json:"generationFailures"`
	EventsPublished    float64 `json:"eventsPublished"`
}
