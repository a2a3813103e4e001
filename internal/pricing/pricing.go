// Package pricing holds the pure price calculations for stays and tours.
// Everything here is deterministic and side-effect free; amounts are in cents.
package pricing

// StayTotal computes the total charge for a stay of the given number of
// nights. A configured two-night rate (non-zero) is the total price for an
// exactly-two-night stay, not a per-night rate.
func StayTotal(nights int, nightlyCents, twoNightCents int64) int64 {
	if nights <= 0 {
		return 0
	}
	if nights == 2 && twoNightCents > 0 {
		return twoNightCents
	}
	return int64(nights) * nightlyCents
}

// TourTotal computes the charge for a tour booking. The schedule may carry
// its own price; when it does not (zero), the tour's base price applies.
func TourTotal(schedulePriceCents, tourPriceCents int64, participants int) int64 {
	if participants <= 0 {
		return 0
	}
	price := schedulePriceCents
	if price == 0 {
		price = tourPriceCents
	}
	return price * int64(participants)
}
