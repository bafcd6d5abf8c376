// Package core holds the lobby state machine: the registry of users and
// rooms, the snapshot builder for the room list, and the change signal
// that fans mutations out to watchers.
package core

import (
	"errors"
	"slices"
	"sync"

	"github.com/22Titanium/Backend/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrInvalidUser    = errors.New("owner is not a registered user")
	ErrRoomRunning    = errors.New("room is already running")
	ErrAlreadyMember  = errors.New("user is already a member")
	ErrAlreadyRunning = errors.New("room was already started")
)

// Registry is the authoritative in-memory store of users and rooms.
// Both sequences are append-only and indexed by creation order, nothing
// is ever removed, so an id handed out once stays valid for the whole
// process lifetime. A single lock covers both sequences; every mutator
// validates and mutates inside one critical section, so a rejected call
// leaves the state exactly as it found it.
type Registry struct {
	mu    sync.RWMutex
	users []domain.User
	rooms []domain.Room
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AddUser appends a user and returns its id, the creation index.
func (r *Registry) AddUser(name string) domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := domain.UserID(len(r.users))
	r.users = append(r.users, domain.User{ID: id, Name: name})
	return id
}

// AddRoom creates a waiting room owned by ownerID, with the owner as
// its only member. The owner joining is part of creation, not a
// separate mutation.
func (r *Registry) AddRoom(name string, ownerID domain.UserID) (domain.RoomID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasUser(ownerID) {
		return 0, ErrInvalidUser
	}
	id := domain.RoomID(len(r.rooms))
	r.rooms = append(r.rooms, domain.Room{
		ID:      id,
		Name:    name,
		OwnerID: ownerID,
		Members: []domain.UserID{ownerID},
		Status:  domain.StatusWaiting,
	})
	return id, nil
}

func (r *Registry) GetUser(id domain.UserID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.hasUser(id) {
		return domain.User{}, ErrUserNotFound
	}
	return r.users[id], nil
}

// GetRoom returns a copy of the room. The member list is cloned so the
// caller can never alias registry state.
func (r *Registry) GetRoom(id domain.RoomID) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.hasRoom(id) {
		return domain.Room{}, ErrRoomNotFound
	}
	room := r.rooms[id]
	room.Members = slices.Clone(room.Members)
	return room, nil
}

// JoinRoom appends userID to the room's member list, preserving join
// order. Entry is refused once the room is running and a user can be a
// member only once.
func (r *Registry) JoinRoom(roomID domain.RoomID, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasRoom(roomID) {
		return ErrRoomNotFound
	}
	if !r.hasUser(userID) {
		return ErrUserNotFound
	}
	room := &r.rooms[roomID]
	if room.Status == domain.StatusRunning {
		return ErrRoomRunning
	}
	if room.HasMember(userID) {
		return ErrAlreadyMember
	}
	room.Members = append(room.Members, userID)
	return nil
}

// StartRoom moves a room from waiting to running. The transition is
// one-way; starting an already running room is rejected, not ignored.
func (r *Registry) StartRoom(roomID domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasRoom(roomID) {
		return ErrRoomNotFound
	}
	room := &r.rooms[roomID]
	if room.Status == domain.StatusRunning {
		return ErrAlreadyRunning
	}
	room.Status = domain.StatusRunning
	return nil
}

func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Snapshot builds the room-list view under the read lock, so it always
// reflects a single point in time even while mutators are running.
func (r *Registry) Snapshot() []RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return buildSummaries(r.rooms, r.users)
}

func (r *Registry) hasUser(id domain.UserID) bool {
	return id >= 0 && int(id) < len(r.users)
}

func (r *Registry) hasRoom(id domain.RoomID) bool {
	return id >= 0 && int(id) < len(r.rooms)
}
