package market

import "time"

// Match runs one pass of order matching over the pool: every PPA
// posting is walked against every REC offer, and whenever the buyer's
// bid covers the seller's ask a fill clears at the ask for the smaller
// of the two open quantities. Listings are mutated in place; depleted
// listings stay in the slice with KWh == 0 and the caller decides
// whether to remove them.
//
// Match is pure apart from the now timestamp: no I/O, no map iteration,
// deterministic for a given listing order.
func Match(listings []*Listing, now time.Time) []*Fill {
	var recs, ppas []*Listing
	for _, l := range listings {
		switch l.Kind {
		case KindREC:
			recs = append(recs, l)
		case KindPPA:
			ppas = append(ppas, l)
		}
	}

	var fills []*Fill
	for _, buyer := range ppas {
		for _, seller := range recs {
			if buyer.KWh <= 0 || seller.KWh <= 0 {
				continue
			}
			if buyer.PricePerKWh.LessThan(seller.PricePerKWh) {
				continue
			}

			kwh := min(buyer.KWh, seller.KWh)
			fills = append(fills, &Fill{
				Buyer:     buyer.Owner,
				Seller:    seller.Owner,
				KWh:       kwh,
				Price:     seller.PricePerKWh,
				MatchedAt: now,
			})
			buyer.KWh -= kwh
			seller.KWh -= kwh
		}
	}

	return fills
}
