// AngelaMos | 2026
// storage.go

package game

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Slot 0 is reserved for the anonymized identity substituted when a
// participant's account is deleted.
const (
	AnonymousUserID   int64 = 0
	AnonymousUsername       = "Competitor"
)

// PlayerSlot keys the players and editors maps inside a game's storage
// document. Slots are user ids for live participants and 0 for the
// anonymized competitor; JSON encodes them as stringified integers.
type PlayerSlot int64

type StoredPlayer struct {
	ID       int64  `json:"id"`
	Team     string `json:"team"`
	Username string `json:"username"`
}

type StoredEditor struct {
	Player int64  `json:"player"`
	Lang   string `json:"lang,omitempty"`
	Text   string `json:"text,omitempty"`
}

// GameStorage is the structured document persisted in the games.storage
// jsonb column. It is mutated in place during account deletion and must
// round-trip through explicit serialization, never ad hoc key access.
type GameStorage struct {
	Players map[PlayerSlot]StoredPlayer `json:"players,omitempty"`
	Editors map[PlayerSlot]StoredEditor `json:"editors,omitempty"`
}

func NewGameStorage() GameStorage {
	return GameStorage{
		Players: make(map[PlayerSlot]StoredPlayer),
		Editors: make(map[PlayerSlot]StoredEditor),
	}
}

func (s GameStorage) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal game storage: %w", err)
	}
	return data, nil
}

func (s *GameStorage) Scan(src any) error {
	if src == nil {
		*s = GameStorage{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan game storage: unsupported type %T", src)
	}

	if len(data) == 0 {
		*s = GameStorage{}
		return nil
	}

	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("scan game storage: %w", err)
	}

	return nil
}

// AddPlayer registers a participant in the document, keyed by user id,
// with one editor pane bound to the same slot.
func (s *GameStorage) AddPlayer(userID int64, team, username string) {
	if s.Players == nil {
		s.Players = make(map[PlayerSlot]StoredPlayer)
	}
	if s.Editors == nil {
		s.Editors = make(map[PlayerSlot]StoredEditor)
	}

	slot := PlayerSlot(userID)
	s.Players[slot] = StoredPlayer{
		ID:       userID,
		Team:     team,
		Username: username,
	}
	s.Editors[slot] = StoredEditor{Player: userID}
}

func (s *GameStorage) Player(userID int64) (StoredPlayer, bool) {
	p, ok := s.Players[PlayerSlot(userID)]
	return p, ok
}

// AnonymizeUser rewrites every trace of userID in the document. The
// player record moves to slot 0 as the anonymous Competitor with its
// team preserved; a previous occupant of slot 0 is overwritten
// (last-write-wins, one retained Competitor per game). Editor entries
// referencing the user keep all fields except the player reference,
// which becomes 0. Reports whether the document changed.
func (s *GameStorage) AnonymizeUser(userID int64) bool {
	if userID == AnonymousUserID {
		return false
	}

	changed := false

	slot := PlayerSlot(userID)
	if player, ok := s.Players[slot]; ok {
		s.Players[PlayerSlot(AnonymousUserID)] = StoredPlayer{
			ID:       AnonymousUserID,
			Team:     player.Team,
			Username: AnonymousUsername,
		}
		delete(s.Players, slot)
		changed = true
	}

	for key, editor := range s.Editors {
		if editor.Player == userID {
			editor.Player = AnonymousUserID
			s.Editors[key] = editor
			changed = true
		}
	}

	return changed
}

// Validate checks the document's slot invariant: every player entry's
// key matches its record id, and slot 0, when present, holds the
// anonymous competitor identity.
func (s *GameStorage) Validate() error {
	for slot, player := range s.Players {
		if int64(slot) != player.ID {
			return fmt.Errorf(
				"player slot %d holds record with id %d",
				slot,
				player.ID,
			)
		}
		if player.ID == AnonymousUserID &&
			player.Username != AnonymousUsername {
			return fmt.Errorf(
				"anonymous slot holds username %q",
				player.Username,
			)
		}
	}
	return nil
}
