package rooms

// Tally is the raw sum and count of review ratings for one room.
type Tally struct {
	Sum   int
	Count int
}

// RatingSummary holds the denormalized rating fields stored on a room.
type RatingSummary struct {
	Rating float64
	Count  int
}

// Summary computes the mean rating rounded half-up to one decimal place.
// An empty tally yields a zero summary.
func (t Tally) Summary() RatingSummary {
	if t.Count <= 0 {
		return RatingSummary{}
	}
	// floor(10*sum/count + 1/2) in integers, so x.x5 never drifts down.
	tenths := (20*t.Sum + t.Count) / (2 * t.Count)
	return RatingSummary{Rating: float64(tenths) / 10, Count: t.Count}
}

// TallyOf folds a list of ratings into a Tally.
func TallyOf(ratings []int) Tally {
	t := Tally{Count: len(ratings)}
	for _, r := range ratings {
		t.Sum += r
	}
	return t
}
