package collision

// Outcome is the state of a round.
type Outcome int

const (
	Playing Outcome = iota
	// HumansWiped means every human was infected; the player loses.
	HumansWiped
	// ZombiesCured means every zombie was cured; the player wins.
	ZombiesCured
	// TimeUp means the frame limit ran out first.
	TimeUp
)

func (o Outcome) String() string {
	switch o {
	case HumansWiped:
		return "humans_wiped"
	case ZombiesCured:
		return "zombies_cured"
	case TimeUp:
		return "time_up"
	default:
		return "playing"
	}
}

// Terminal reports whether the round is over.
func (o Outcome) Terminal() bool {
	return o != Playing
}

// Evaluate derives the outcome from roster sizes. An empty human roster is
// checked first, so a round where both empty at once counts as a loss.
func Evaluate(r *Rosters) Outcome {
	switch {
	case r.Humans.Empty():
		return HumansWiped
	case r.Zombies.Empty():
		return ZombiesCured
	default:
		return Playing
	}
}
