package model

// Cell state discriminator values used on the wire.
const (
	StateHidden   = "hidden"
	StateMarked   = "marked"
	StateFlagged  = "flagged"
	StateRevealed = "revealed"
	StateBomb     = "bomb"
)

// Cell is the wire projection of a board cell. Adjacent is present only for
// the "revealed" variant; a pointer keeps a zero adjacency from being
// dropped by omitempty.
type Cell struct {
	State    string `json:"state"`
	Adjacent *uint8 `json:"adjacent,omitempty"`
}

// HiddenCell, MarkedCell, FlaggedCell and BombCell build the annotation-only
// projections. A cell that still carries a bomb projects as its annotation
// state, never as "bomb", until the game has been lost.
func HiddenCell() Cell  { return Cell{State: StateHidden} }
func MarkedCell() Cell  { return Cell{State: StateMarked} }
func FlaggedCell() Cell { return Cell{State: StateFlagged} }
func BombCell() Cell    { return Cell{State: StateBomb} }

// RevealedCell projects a safe revealed cell with its original adjacency
// count.
func RevealedCell(adjacent uint8) Cell {
	return Cell{State: StateRevealed, Adjacent: &adjacent}
}

// CellUpdate pairs a position with its new projection inside an "update"
// event.
type CellUpdate struct {
	Pos   Pos  `json:"pos"`
	Value Cell `json:"value"`
}
