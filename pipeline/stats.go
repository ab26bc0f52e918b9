package pipeline

import (
	"github.com/kbukum/etlkit/logger"
)

// Stats carries the running counters of a pipeline. It is passed by value;
// every stage returns an updated copy.
type Stats struct {
	TotalExtracted   int      `json:"total_extracted"`
	TotalTransformed int      `json:"total_transformed"`
	TotalFiltered    int      `json:"total_filtered"`
	Errors           []string `json:"errors,omitempty"`
}

// Add returns the elementwise sum of s and other. Errors are concatenated,
// s first.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		TotalExtracted:   s.TotalExtracted + other.TotalExtracted,
		TotalTransformed: s.TotalTransformed + other.TotalTransformed,
		TotalFiltered:    s.TotalFiltered + other.TotalFiltered,
		Errors:           concat(s.Errors, other.Errors),
	}
}

// WithErrors returns a copy of s with msgs appended to its error list.
func (s Stats) WithErrors(msgs ...string) Stats {
	s.Errors = concat(s.Errors, msgs)
	return s
}

// Rejected is the number of transformed elements dropped by filters.
func (s Stats) Rejected() int {
	return s.TotalTransformed - s.TotalFiltered
}

// LogSummary writes the counters at info level and each recorded error at
// warn level.
func (s Stats) LogSummary(log *logger.Logger) {
	log.Info("pipeline statistics", map[string]interface{}{
		"extracted":   s.TotalExtracted,
		"transformed": s.TotalTransformed,
		"filtered":    s.TotalFiltered,
		"rejected":    s.Rejected(),
		"errors":      len(s.Errors),
	})
	for _, msg := range s.Errors {
		log.Warn("pipeline error", logger.Fields(logger.FieldError, msg))
	}
}

// concat always allocates so that Stats copies never share a backing array.
func concat(a, b []string) []string {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func (s Stats) clone() Stats {
	s.Errors = concat(s.Errors, nil)
	return s
}
