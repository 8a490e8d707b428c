package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// MemoryStore is an in-memory implementation of the persistence interfaces.
// It mirrors the SQLite layer's observable behavior closely enough for
// service tests: duplicate detection, scoped resource names, half-open
// window filtering, and delete-refusal for booked resources.
type MemoryStore struct {
	mu sync.Mutex

	nextID       int64
	users        map[int64]persistence.User
	homes        map[int64]persistence.Home
	members      map[int64]map[int64]bool
	resources    map[int64]persistence.Resource
	reservations map[int64]persistence.Reservation
	sessions     map[int64]persistence.Session
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]persistence.User),
		homes:        make(map[int64]persistence.Home),
		members:      make(map[int64]map[int64]bool),
		resources:    make(map[int64]persistence.Resource),
		reservations: make(map[int64]persistence.Reservation),
		sessions:     make(map[int64]persistence.Session),
	}
}

func (m *MemoryStore) allocateID() int64 {
	m.nextID++
	return m.nextID
}

// CreateUser implements persistence.UserRepository.
func (m *MemoryStore) CreateUser(_ context.Context, user persistence.User) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return persistence.User{}, persistence.ErrDuplicate
		}
	}
	user.ID = m.allocateID()
	m.users[user.ID] = user
	return user, nil
}

// GetUser implements persistence.UserRepository.
func (m *MemoryStore) GetUser(_ context.Context, id int64) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail implements persistence.UserRepository.
func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers implements persistence.UserRepository.
func (m *MemoryStore) ListUsers(_ context.Context) ([]persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]persistence.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// CountUsers implements persistence.UserRepository.
func (m *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// UpdateUser implements persistence.UserRepository.
func (m *MemoryStore) UpdateUser(_ context.Context, user persistence.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

// DeleteUser implements persistence.UserRepository.
func (m *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.users, id)
	for homeID := range m.members {
		delete(m.members[homeID], id)
	}
	return nil
}

// CreateHome implements persistence.HomeRepository.
func (m *MemoryStore) CreateHome(_ context.Context, home persistence.Home) (persistence.Home, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.homes {
		if existing.Name == home.Name {
			return persistence.Home{}, persistence.ErrDuplicate
		}
	}
	home.ID = m.allocateID()
	m.homes[home.ID] = home
	m.members[home.ID] = map[int64]bool{home.OwnerID: true}
	return home, nil
}

// GetHome implements persistence.HomeRepository.
func (m *MemoryStore) GetHome(_ context.Context, id int64) (persistence.Home, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	home, ok := m.homes[id]
	if !ok {
		return persistence.Home{}, persistence.ErrNotFound
	}
	return home, nil
}

// ListHomesForUser implements persistence.HomeRepository.
func (m *MemoryStore) ListHomesForUser(_ context.Context, userID int64) ([]persistence.Home, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	homes := make([]persistence.Home, 0)
	for homeID, memberSet := range m.members {
		if memberSet[userID] {
			homes = append(homes, m.homes[homeID])
		}
	}
	sort.Slice(homes, func(i, j int) bool { return homes[i].ID < homes[j].ID })
	return homes, nil
}

// AddMember implements persistence.HomeRepository.
func (m *MemoryStore) AddMember(_ context.Context, homeID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	memberSet, ok := m.members[homeID]
	if !ok {
		return persistence.ErrNotFound
	}
	memberSet[userID] = true
	return nil
}

// RemoveMember implements persistence.HomeRepository.
func (m *MemoryStore) RemoveMember(_ context.Context, homeID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	memberSet, ok := m.members[homeID]
	if !ok {
		return persistence.ErrNotFound
	}
	delete(memberSet, userID)
	return nil
}

// IsMember implements persistence.HomeRepository.
func (m *MemoryStore) IsMember(_ context.Context, homeID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.members[homeID][userID], nil
}

// ListMembers implements persistence.HomeRepository.
func (m *MemoryStore) ListMembers(_ context.Context, homeID int64) ([]persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]persistence.User, 0)
	for userID := range m.members[homeID] {
		if user, ok := m.users[userID]; ok {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// DeleteHome implements persistence.HomeRepository.
func (m *MemoryStore) DeleteHome(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.homes[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.homes, id)
	delete(m.members, id)
	for resourceID, resource := range m.resources {
		if resource.HomeID != nil && *resource.HomeID == id {
			delete(m.resources, resourceID)
		}
	}
	for reservationID, reservation := range m.reservations {
		if reservation.HomeID != nil && *reservation.HomeID == id {
			delete(m.reservations, reservationID)
		}
	}
	return nil
}

// CreateResource implements persistence.ResourceRepository.
func (m *MemoryStore) CreateResource(_ context.Context, resource persistence.Resource) (persistence.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.resourceNameTaken(resource.HomeID, resource.Name, 0) {
		return persistence.Resource{}, persistence.ErrDuplicate
	}
	resource.ID = m.allocateID()
	m.resources[resource.ID] = resource
	return resource, nil
}

// GetResource implements persistence.ResourceRepository.
func (m *MemoryStore) GetResource(_ context.Context, id int64) (persistence.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resource, ok := m.resources[id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

// GetResourceByName implements persistence.ResourceRepository.
func (m *MemoryStore) GetResourceByName(_ context.Context, scope persistence.ResourceScope, name string) (persistence.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, resource := range m.resources {
		if resource.Name == name && sameScope(resource.HomeID, scope.HomeID) {
			return resource, nil
		}
	}
	return persistence.Resource{}, persistence.ErrNotFound
}

// ListResources implements persistence.ResourceRepository.
func (m *MemoryStore) ListResources(_ context.Context, scope persistence.ResourceScope) ([]persistence.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resources := make([]persistence.Resource, 0)
	for _, resource := range m.resources {
		if sameScope(resource.HomeID, scope.HomeID) {
			resources = append(resources, resource)
		}
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].ID < resources[j].ID })
	return resources, nil
}

// ListAllResources implements persistence.ResourceRepository.
func (m *MemoryStore) ListAllResources(_ context.Context) ([]persistence.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resources := make([]persistence.Resource, 0, len(m.resources))
	for _, resource := range m.resources {
		resources = append(resources, resource)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].ID < resources[j].ID })
	return resources, nil
}

// UpdateResource implements persistence.ResourceRepository.
func (m *MemoryStore) UpdateResource(_ context.Context, resource persistence.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resources[resource.ID]; !ok {
		return persistence.ErrNotFound
	}
	if m.resourceNameTaken(resource.HomeID, resource.Name, resource.ID) {
		return persistence.ErrDuplicate
	}
	m.resources[resource.ID] = resource
	return nil
}

// DeleteResource implements persistence.ResourceRepository.
func (m *MemoryStore) DeleteResource(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resources[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, reservation := range m.reservations {
		if reservation.ResourceID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(m.resources, id)
	return nil
}

// CreateReservation implements persistence.ReservationRepository.
func (m *MemoryStore) CreateReservation(_ context.Context, reservation persistence.Reservation) (persistence.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !reservation.StartUTC.Before(reservation.EndUTC) {
		return persistence.Reservation{}, persistence.ErrConstraintViolation
	}
	if _, ok := m.resources[reservation.ResourceID]; !ok {
		return persistence.Reservation{}, persistence.ErrForeignKeyViolation
	}
	reservation.ID = m.allocateID()
	m.reservations[reservation.ID] = reservation
	return reservation, nil
}

// GetReservation implements persistence.ReservationRepository.
func (m *MemoryStore) GetReservation(_ context.Context, id int64) (persistence.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reservation, ok := m.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

// ListReservations implements persistence.ReservationRepository.
func (m *MemoryStore) ListReservations(_ context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reservations := make([]persistence.Reservation, 0)
	for _, reservation := range m.reservations {
		if filter.ResourceID != nil && reservation.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.HomeID != nil && (reservation.HomeID == nil || *reservation.HomeID != *filter.HomeID) {
			continue
		}
		if filter.Start != nil && filter.End != nil && reservation.RecurrenceRule == "" {
			if !reservation.EndUTC.After(*filter.Start) || !reservation.StartUTC.Before(*filter.End) {
				continue
			}
		}
		reservations = append(reservations, reservation)
	}
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].StartUTC.Equal(reservations[j].StartUTC) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].StartUTC.Before(reservations[j].StartUTC)
	})
	return reservations, nil
}

// ListReservationsForResource implements persistence.ReservationRepository.
func (m *MemoryStore) ListReservationsForResource(ctx context.Context, resourceID int64) ([]persistence.Reservation, error) {
	return m.ListReservations(ctx, persistence.ReservationFilter{ResourceID: &resourceID})
}

// DeleteReservation implements persistence.ReservationRepository.
func (m *MemoryStore) DeleteReservation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.reservations, id)
	return nil
}

// DeleteReservationsForHome implements persistence.ReservationRepository.
func (m *MemoryStore) DeleteReservationsForHome(_ context.Context, homeID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, reservation := range m.reservations {
		if reservation.HomeID != nil && *reservation.HomeID == homeID {
			delete(m.reservations, id)
			deleted++
		}
	}
	return deleted, nil
}

// CreateSession implements persistence.SessionRepository.
func (m *MemoryStore) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.sessions {
		if existing.Token == session.Token {
			return persistence.Session{}, persistence.ErrDuplicate
		}
	}
	session.ID = m.allocateID()
	m.sessions[session.ID] = session
	return session, nil
}

// GetSessionByToken implements persistence.SessionRepository.
func (m *MemoryStore) GetSessionByToken(_ context.Context, token string) (persistence.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range m.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

// RevokeSession implements persistence.SessionRepository.
func (m *MemoryStore) RevokeSession(_ context.Context, token string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if session.Token == token && session.RevokedAt == nil {
			session.RevokedAt = &revokedAt
			m.sessions[id] = session
			return nil
		}
	}
	return persistence.ErrNotFound
}

// DeleteExpiredSessions implements persistence.SessionRepository.
func (m *MemoryStore) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *MemoryStore) resourceNameTaken(homeID *int64, name string, excludeID int64) bool {
	for _, resource := range m.resources {
		if resource.ID == excludeID {
			continue
		}
		if resource.Name == name && sameScope(resource.HomeID, homeID) {
			return true
		}
	}
	return false
}

func sameScope(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
