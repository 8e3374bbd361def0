package rating

import "bookreview/internal/entity"

// Summarize derives the aggregate pair for bookID from its full review set.
func Summarize(bookID string, reviews []entity.Review) entity.RatingSummary {
	if len(reviews) == 0 {
		return entity.RatingSummary{BookID: bookID}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return entity.RatingSummary{
		BookID:        bookID,
		AverageRating: RoundedAverage(sum, len(reviews)),
		ReviewCount:   len(reviews),
	}
}

// RoundedAverage returns sum/count rounded to one decimal place, halves
// away from zero. The rounding is done on integer tenths so 73/20 gives
// exactly 3.7 rather than whatever 3.65 rounds to in binary.
func RoundedAverage(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	num := 20 * sum
	den := 2 * count
	var tenths int
	if num >= 0 {
		tenths = (num + count) / den
	} else {
		tenths = -((-num + count) / den)
	}
	return float64(tenths) / 10
}
