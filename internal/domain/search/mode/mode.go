package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Local scores and ranks entirely in-process.
	Local Mode = "local"
	// Semantic asks the external ranking collaborator to reorder the
	// locally pre-filtered candidates, falling back to Local on failure.
	Semantic Mode = "semantic"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Local || m == Semantic
}
