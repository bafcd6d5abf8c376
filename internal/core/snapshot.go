package core

import "github.com/22Titanium/Backend/internal/domain"

// RoomSummary is one row of the room-list payload pushed to observers.
type RoomSummary struct {
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	NumPlayers int    `json:"num_players"`
	Status     int    `json:"status"`
}

// buildSummaries is the pure room-list transform: rooms in creation
// order, owner names resolved against the user sequence. Callers must
// hand it a consistent pair of slices; Registry.Snapshot does so under
// its read lock. The result is never nil so an empty lobby encodes as
// an empty JSON array.
func buildSummaries(rooms []domain.Room, users []domain.User) []RoomSummary {
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomSummary{
			Name:       room.Name,
			Owner:      users[room.OwnerID].Name,
			NumPlayers: len(room.Members),
			Status:     int(room.Status),
		})
	}
	return out
}
