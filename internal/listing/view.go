package listing

import (
	"errors"
	"fmt"
)

type View int

const (
	ViewHome View = iota
	ViewParties
	ViewGames
	ViewCreateGame
)

var ErrInvalidTransition = errors.New("invalid view transition")

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewParties:
		return "parties"
	case ViewGames:
		return "games"
	case ViewCreateGame:
		return "create-game"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// Polling reports whether the view keeps the game list refreshed in the background.
func (v View) Polling() bool {
	return v == ViewGames || v == ViewCreateGame
}

var transitions = map[View][]View{
	ViewHome:       {ViewParties, ViewGames, ViewCreateGame},
	ViewParties:    {ViewHome},
	ViewGames:      {ViewHome, ViewCreateGame},
	ViewCreateGame: {ViewHome, ViewGames},
}

// CanTransition reports whether to is reachable from from in one step. Staying put is
// always allowed.
func CanTransition(from, to View) bool {
	if from == to {
		return true
	}
	for _, v := range transitions[from] {
		if v == to {
			return true
		}
	}
	return false
}
