package poker

// StartingHandTier buckets two hole cards by preflop strength.
type StartingHandTier uint8

const (
	TierUnknown StartingHandTier = iota
	TierTrash
	TierWeak
	TierMedium
	TierStrong
	TierPremium
)

func (t StartingHandTier) String() string {
	switch t {
	case TierPremium:
		return "premium"
	case TierStrong:
		return "strong"
	case TierMedium:
		return "medium"
	case TierWeak:
		return "weak"
	case TierTrash:
		return "trash"
	default:
		return "unknown"
	}
}

// ClassifyStartingHand returns the tier for a pair of hole cards.
//
//	premium: JJ+, AK
//	strong:  TT, AQ, AJ
//	medium:  77-99, suited broadway
//	weak:    22-66, suited cards at most two apart
//	trash:   everything else
func ClassifyStartingHand(hole []Card) StartingHandTier {
	if len(hole) != 2 || !hole[0].Valid() || !hole[1].Valid() {
		return TierUnknown
	}

	lo, hi := hole[0].Rank, hole[1].Rank
	if lo > hi {
		lo, hi = hi, lo
	}
	pair := lo == hi
	suited := hole[0].Suit == hole[1].Suit

	switch {
	case pair && lo >= Jack, lo == King && hi == Ace:
		return TierPremium
	case pair && lo == Ten, hi == Ace && (lo == Queen || lo == Jack):
		return TierStrong
	case pair && lo >= Seven, suited && lo >= Ten:
		return TierMedium
	case pair, suited && hi-lo <= 2:
		return TierWeak
	}
	return TierTrash
}
