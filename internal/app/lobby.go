// Package app wires the lobby use cases: user and room mutations on the
// registry, and the per-subscriber loop that pushes room-list snapshots.
package app

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/22Titanium/Backend/internal/core"
	"github.com/22Titanium/Backend/internal/domain"
)

// ErrSubscriberClosed reports that the remote end of a room-list
// subscription went away on its own terms. Watch treats it as a normal
// exit; any other send error is a transport failure.
var ErrSubscriberClosed = errors.New("subscriber closed")

// Sender delivers one room-list snapshot to a single subscriber.
// Implementations live in the transport adapters.
type Sender interface {
	Send(rooms []core.RoomSummary) error
}

// Lobby ties the registry to the change signal. Every successful
// mutation lands in the registry first and notifies watchers second,
// so a woken watcher always observes at least that mutation.
type Lobby struct {
	Registry *core.Registry
	Signal   *core.Signal

	watchers atomic.Int64
}

// CreateUser registers a user and returns its id. Registration never
// fails and does not wake watchers: users alone do not change the room
// list.
func (l *Lobby) CreateUser(name string) domain.UserID {
	id := l.Registry.AddUser(name)
	log.Info().Str("module", "app.lobby").Int("user_id", int(id)).Str("name", name).Msg("user created")
	return id
}

// CreateRoom opens a room owned by userID, with the owner already
// inside. Returns -1 when the owner is not a registered user; nothing
// is stored and nobody is woken in that case.
func (l *Lobby) CreateRoom(name string, userID domain.UserID) domain.RoomID {
	id, err := l.Registry.AddRoom(name, userID)
	if err != nil {
		log.Warn().Str("module", "app.lobby").Err(err).Int("user_id", int(userID)).Str("name", name).Msg("room not created")
		return -1
	}
	l.Signal.Notify()
	log.Info().Str("module", "app.lobby").Int("room_id", int(id)).Int("user_id", int(userID)).Str("name", name).Msg("room created")
	return id
}

// EnterRoom adds userID to a waiting room. It reports false when the
// room or user is unknown, the room is already running, or the user is
// already inside; a rejected entry wakes nobody.
func (l *Lobby) EnterRoom(roomID domain.RoomID, userID domain.UserID) bool {
	if err := l.Registry.JoinRoom(roomID, userID); err != nil {
		log.Warn().Str("module", "app.lobby").Err(err).Int("room_id", int(roomID)).Int("user_id", int(userID)).Msg("enter rejected")
		return false
	}
	l.Signal.Notify()
	log.Info().Str("module", "app.lobby").Int("room_id", int(roomID)).Int("user_id", int(userID)).Msg("user entered room")
	return true
}

// StartRoom flips a waiting room to running and closes it to new
// members. It reports false when the room is unknown or already
// running.
func (l *Lobby) StartRoom(roomID domain.RoomID) bool {
	if err := l.Registry.StartRoom(roomID); err != nil {
		log.Warn().Str("module", "app.lobby").Err(err).Int("room_id", int(roomID)).Msg("start rejected")
		return false
	}
	l.Signal.Notify()
	log.Info().Str("module", "app.lobby").Int("room_id", int(roomID)).Msg("room started")
	return true
}

// Rooms returns a point-in-time room list, the same payload a
// subscriber gets pushed.
func (l *Lobby) Rooms() []core.RoomSummary {
	return l.Registry.Snapshot()
}

func (l *Lobby) User(id domain.UserID) (domain.User, error) {
	return l.Registry.GetUser(id)
}

func (l *Lobby) Room(id domain.RoomID) (domain.Room, error) {
	return l.Registry.GetRoom(id)
}

// Stats reports registry sizes and the number of live subscriptions.
func (l *Lobby) Stats() (users, rooms int, watchers int64) {
	return l.Registry.UserCount(), l.Registry.RoomCount(), l.watchers.Load()
}

// Watch runs one subscriber's push loop: an immediate snapshot on
// attach, then one fresh snapshot per wake, until the subscriber goes
// away, the transport fails, or ctx ends. The wake channel is armed
// before each snapshot is built, so a mutation landing mid-send is
// picked up by the next cycle instead of being lost. Returns nil on a
// clean exit and the send error when the transport failed; callers own
// the logging.
func (l *Lobby) Watch(ctx context.Context, s Sender) error {
	l.watchers.Add(1)
	defer l.watchers.Add(-1)
	for {
		wake := l.Signal.Wake()
		if err := s.Send(l.Registry.Snapshot()); err != nil {
			if errors.Is(err, ErrSubscriberClosed) {
				return nil
			}
			return err
		}
		select {
		case <-wake:
		case <-ctx.Done():
			return nil
		}
	}
}
