package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrCreatureNameEmpty = errors.New("creature name is empty")

// Creature is the fixed "named creature" record posted by the demo forms.
// It mirrors the subset of a PokéAPI pokemon resource the demo displays, the json tags are the
// wire names and also the variable names available in templates.
type Creature struct {
	Name        string      `json:"name"`
	ID          ID          `json:"id"`
	Height      int         `json:"height"`
	Weight      int         `json:"weight"`
	GameIndices []GameIndex `json:"game_indices"`
}

// GameIndex tags a creature with a game version it appears in.
type GameIndex struct {
	Version Version `json:"version"`
}

type Version struct {
	Name string `json:"name"`
}

// Versions returns the names of all game versions, in wire order.
func (c Creature) Versions() []string {
	names := make([]string, 0, len(c.GameIndices))
	for _, index := range c.GameIndices {
		names = append(names, index.Version.Name)
	}
	return names
}

// creatureWire is the decoding target, pointers mark which fields were actually present.
type creatureWire struct {
	Name        *string `json:"name"`
	ID          *ID     `json:"id"`
	Height      *int    `json:"height"`
	Weight      *int    `json:"weight"`
	GameIndices []struct {
		Version *Version `json:"version"`
	} `json:"game_indices"`
}

// ParseCreature decodes a creature from its JSON representation.
// "name" and "id" are required, "height", "weight" and "game_indices" default to their zero
// values. Unknown fields are ignored. Every failure wraps ErrInvalidInput.
func ParseCreature(data []byte) (*Creature, error) {
	var wire creatureWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.Join(ErrInvalidInput, fmt.Errorf("cannot decode creature: %w", err))
	}

	if wire.Name == nil {
		return nil, errors.Join(ErrInvalidInput, errors.New(`creature field "name" is required`))
	}
	name := strings.TrimSpace(*wire.Name)
	if len(name) == 0 {
		return nil, errors.Join(ErrInvalidInput, ErrCreatureNameEmpty)
	}
	if wire.ID == nil {
		return nil, errors.Join(ErrInvalidInput, errors.New(`creature field "id" is required`))
	}

	creature := Creature{
		Name:        name,
		ID:          *wire.ID,
		GameIndices: make([]GameIndex, 0, len(wire.GameIndices)),
	}
	if wire.Height != nil {
		creature.Height = *wire.Height
	}
	if wire.Weight != nil {
		creature.Weight = *wire.Weight
	}
	for i, index := range wire.GameIndices {
		if index.Version == nil {
			return nil, errors.Join(
				ErrInvalidInput,
				fmt.Errorf(`creature field "game_indices[%d].version" is required`, i),
			)
		}
		creature.GameIndices = append(creature.GameIndices, GameIndex{Version: *index.Version})
	}
	return &creature, nil
}
