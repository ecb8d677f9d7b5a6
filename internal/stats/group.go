package stats

import (
	"time"

	"github.com/verte-zerg/quizstat/internal/model"
)

// DateBucket holds the records of one attempt, identified by a shared timestamp.
type DateBucket struct {
	Date    time.Time
	Records []model.AnswerRecord
}

// GroupByDate buckets records by exact timestamp. Buckets keep the order in
// which their timestamp was first seen and records keep input order.
func GroupByDate(records []model.AnswerRecord) []DateBucket {
	buckets := make([]DateBucket, 0)
	index := make(map[int64]int, len(records))
	for _, rec := range records {
		key := rec.Date.UnixNano()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DateBucket{Date: rec.Date})
		}
		buckets[i].Records = append(buckets[i].Records, rec)
	}
	return buckets
}
