package image

// Interaction types and vote values reported by the interactions API.
const (
	InteractionFaved = "faved"
	InteractionVoted = "voted"

	VoteUp   = "up"
	VoteDown = "down"
)

// Interaction is one action the current user took on an image.
type Interaction struct {
	ImageID         int64  `json:"image_id"`
	InteractionType string `json:"interaction_type"`
	UserID          int64  `json:"user_id"`
	Value           string `json:"value"`
}

// Snapshot is the caller-supplied view of the user's interactions.
// An absent snapshot (no data available) differs from a present, empty one.
type Snapshot struct {
	items   []Interaction
	present bool
}

// NoSnapshot returns a snapshot marking interaction data as unavailable.
func NoSnapshot() Snapshot { return Snapshot{} }

// NewSnapshot wraps a list of interactions. A nil or empty list is still present.
func NewSnapshot(items []Interaction) Snapshot {
	return Snapshot{items: items, present: true}
}

// Present reports whether interaction data was supplied.
func (s Snapshot) Present() bool { return s.present }

// Items returns the interactions in the snapshot.
func (s Snapshot) Items() []Interaction { return s.items }

// Has reports whether any interaction of the given type exists for the image.
func (s Snapshot) Has(imageID int64, interactionType string) bool {
	for _, it := range s.items {
		if it.ImageID == imageID && it.InteractionType == interactionType {
			return true
		}
	}
	return false
}

// HasValue is Has restricted to interactions carrying the given value.
func (s Snapshot) HasValue(imageID int64, interactionType, value string) bool {
	for _, it := range s.items {
		if it.ImageID == imageID && it.InteractionType == interactionType && it.Value == value {
			return true
		}
	}
	return false
}
