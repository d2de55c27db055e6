// Package game holds the table-level records a bot tracks.
package game

import "maps"

// NoSeat marks a TableState whose own seat has not been assigned.
const NoSeat = -1

// Default token counts at the start of a game.
const (
	DefaultClueTokens    = 8
	DefaultMistakeTokens = 3
)

// ActionType names the moves a bot can send.
type ActionType string

const (
	ActionPlay     ActionType = "play"
	ActionDiscard  ActionType = "discard"
	ActionRankClue ActionType = "clueRank"
	ActionSuitClue ActionType = "clueSuit"
)

// Card is one observed card. It never changes once seen.
type Card struct {
	Order     int `json:"order"`
	SuitIndex int `json:"suitIndex"`
	Rank      int `json:"rank"`
}

// Action is the strategy-defined payload of an outbound "action" command.
type Action map[string]any

// Clone returns a shallow copy so callers can add fields without touching the original.
func (a Action) Clone() Action {
	return maps.Clone(a)
}

// TableState is what one bot knows about one table.
type TableState struct {
	TableID            int            `json:"tableID"`
	PlayerNames        []string       `json:"playerNames"`
	OurPlayerIndex     int            `json:"ourPlayerIndex"`
	Hands              map[int][]Card `json:"hands"`
	ClueTokens         int            `json:"clueTokens"`
	MistakeTokens      int            `json:"mistakeTokens"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
}

// NewTableState returns a freshly initialised table.
func NewTableState(tableID int, playerNames []string, ourPlayerIndex int) *TableState {
	return &TableState{
		TableID:        tableID,
		PlayerNames:    append([]string(nil), playerNames...),
		OurPlayerIndex: ourPlayerIndex,
		Hands:          make(map[int][]Card),
		ClueTokens:     DefaultClueTokens,
		MistakeTokens:  DefaultMistakeTokens,
	}
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (s *TableState) Clone() TableState {
	c := *s
	c.PlayerNames = append([]string(nil), s.PlayerNames...)
	c.Hands = make(map[int][]Card, len(s.Hands))
	for seat, hand := range s.Hands {
		c.Hands[seat] = append([]Card(nil), hand...)
	}
	return c
}

// IsOurTurn reports whether the current seat is ours.
func (s *TableState) IsOurTurn() bool {
	return s.OurPlayerIndex != NoSeat && s.CurrentPlayerIndex == s.OurPlayerIndex
}

// ValidSeat reports whether seat indexes a player at this table.
func (s *TableState) ValidSeat(seat int) bool {
	return seat >= 0 && seat < len(s.PlayerNames)
}
