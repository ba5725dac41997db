package scoring

// RatingInput feeds the HLTV-style rating approximation.
type RatingInput struct {
	Kills       int
	Deaths      int
	Assists     int
	ADR         float64
	KAST        float64
	TotalRounds int
}

// CalculateRating approximates the HLTV 2.0 rating from per-round stats.
// Returns 1.0 for a demo with no rounds and clamps the result to [0,3].
func CalculateRating(in RatingInput) float64 {
	if in.TotalRounds == 0 {
		return 1.0
	}

	kpr := float64(in.Kills) / float64(in.TotalRounds)
	dpr := float64(in.Deaths) / float64(in.TotalRounds)
	apr := float64(in.Assists) / float64(in.TotalRounds)

	impact := 2.13*kpr + 0.42*apr - 0.41

	rating := 0.0073*in.KAST +
		0.3591*kpr -
		0.5329*dpr +
		0.2372*impact +
		0.0032*in.ADR +
		0.1587

	return clampFloat(rating, 0, 3)
}

// CalculateSimpleRating is the quick estimate used for non-main players,
// where no KAST or ADR refinement is available. Clamped to [0.3, 2.5].
func CalculateSimpleRating(kills, deaths, assists, rounds int) float64 {
	if rounds == 0 {
		return 1.0
	}

	kd := float64(kills)
	if deaths > 0 {
		kd = float64(kills) / float64(deaths)
	}
	kpr := float64(kills) / float64(rounds)
	apr := float64(assists) / float64(rounds)

	rating := 0.5*kd + 0.3*(kpr*10) + 0.2*(apr*10)
	return clampFloat(rating, 0.3, 2.5)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
