package photo

// Result represents a single similarity search hit. Results are ordered by
// ascending distance: lower means more similar. The distance is whatever
// ranking score the backend produces: a monotone ordering, not necessarily
// a true metric.
type Result struct {
	photoPath   string
	aspectName  string
	distance    float64
	description string
}

// NewResult creates a new Result.
func NewResult(photoPath, aspectName string, distance float64, description string) Result {
	return Result{
		photoPath:   photoPath,
		aspectName:  aspectName,
		distance:    distance,
		description: description,
	}
}

// PhotoPath returns the path of the matched photo.
func (r Result) PhotoPath() string { return r.photoPath }

// AspectName returns the aspect the match was indexed under.
func (r Result) AspectName() string { return r.aspectName }

// Distance returns the ranking score (lower = more similar).
func (r Result) Distance() float64 { return r.distance }

// Description returns the stored description of the matched record.
func (r Result) Description() string { return r.description }
