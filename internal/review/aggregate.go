package review

import "math"

// Incremental maintenance of a book's (averageRating, ratingsCount) pair.
// The average is derived from the stored pair, never re-scanned from
// reviews, and is rounded to one decimal only at the point of persistence.
// Arithmetic runs in integer tenths so that a create followed by a delete
// of the same rating restores the previous average exactly, which plain
// float math does not guarantee (4.3*3 - 5 drifts below 7.9).
// Both the Postgres repository and the test fakes run these inside the same
// transaction as the review write.

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// tenths converts a stored one-decimal average to its integer-tenths form.
func tenths(avg float64) float64 {
	return math.Round(avg * 10)
}

// aggregateOnCreate folds one new rating into the pair.
func aggregateOnCreate(avg float64, count, rating int) (float64, int) {
	newCount := count + 1
	newTenths := math.Round((tenths(avg)*float64(count) + float64(rating*10)) / float64(newCount))
	return newTenths / 10, newCount
}

// aggregateOnDelete removes one rating from the pair. A count of zero
// resets the average to zero.
func aggregateOnDelete(avg float64, count, rating int) (float64, int) {
	newCount := count - 1
	if newCount <= 0 {
		return 0, 0
	}
	newTenths := math.Round((tenths(avg)*float64(count) - float64(rating*10)) / float64(newCount))
	return newTenths / 10, newCount
}

// aggregateOnChange swaps one rating for another; the count is unchanged.
func aggregateOnChange(avg float64, count, oldRating, newRating int) float64 {
	if count <= 0 {
		return 0
	}
	newTenths := math.Round((tenths(avg)*float64(count) - float64(oldRating*10) + float64(newRating*10)) / float64(count))
	return newTenths / 10
}
