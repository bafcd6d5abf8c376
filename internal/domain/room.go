package domain

// RoomID is the room's creation index in the registry, dense from zero.
type RoomID int

// Status is a room lifecycle phase. The integer value is the wire code
// pushed to room-list observers.
type Status int

const (
	StatusWaiting Status = iota // open, accepting players
	StatusRunning               // game started, entry closed
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

type Room struct {
	ID      RoomID   `json:"id"`
	Name    string   `json:"name"`
	OwnerID UserID   `json:"owner_id"`
	Members []UserID `json:"members"`
	Status  Status   `json:"status"`
}

// HasMember reports whether id already sits in the member list.
// Member lists stay small, a linear scan is fine.
func (r *Room) HasMember(id UserID) bool {
	for _, m := range r.Members {
		if m == id {
			return true
		}
	}
	return false
}

// CheckRoomName validates a room name at the boundary, against the
// room cap. The registry itself accepts any name.
func CheckRoomName(name string) error {
	return checkName(name, MaxRoomNameLen)
}
