package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/google/uuid"
)

type roomEntry struct {
	locker  sync.Mutex
	room    domain.Room
	deleted bool
}

// MemoryRepo keeps users, playlists and rooms in process. Each room carries
// its own mutex so updates of distinct rooms never wait on each other.
type MemoryRepo struct {
	locker    sync.RWMutex
	users     map[string]domain.User
	usernames map[string]string
	playlists map[string]domain.Playlist
	rooms     map[string]*roomEntry
	now       func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:     make(map[string]domain.User),
		usernames: make(map[string]string),
		playlists: make(map[string]domain.Playlist),
		rooms:     make(map[string]*roomEntry),
		now:       time.Now,
	}
}

func (m *MemoryRepo) GetOrCreateUser(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	m.locker.Lock()
	defer m.locker.Unlock()

	if id, ok := m.usernames[username]; ok {
		return m.users[id], nil
	}
	user := domain.User{Id: uuid.NewString(), Username: username, CreatedAt: m.now()}
	m.users[user.Id] = user
	m.usernames[username] = user.Id
	return user, nil
}

func (m *MemoryRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	m.locker.RLock()
	defer m.locker.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *MemoryRepo) CreatePlaylist(ctx context.Context, ownerId, name string, songs []domain.Song) (domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return domain.Playlist{}, err
	}
	m.locker.Lock()
	defer m.locker.Unlock()

	if _, ok := m.users[ownerId]; !ok {
		return domain.Playlist{}, domain.ErrUserNotFound
	}
	p := domain.Playlist{
		Id:        uuid.NewString(),
		OwnerId:   ownerId,
		Name:      name,
		Songs:     slices.Clone(songs),
		CreatedAt: m.now(),
	}
	m.playlists[p.Id] = p
	return p, nil
}

func (m *MemoryRepo) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return domain.Playlist{}, err
	}
	m.locker.RLock()
	defer m.locker.RUnlock()

	p, ok := m.playlists[id]
	if !ok {
		return domain.Playlist{}, domain.ErrPlaylistNotFound
	}
	p.Songs = slices.Clone(p.Songs)
	return p, nil
}

func (m *MemoryRepo) ListPlaylistsByOwner(ctx context.Context, ownerId string) ([]domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.locker.RLock()
	defer m.locker.RUnlock()

	res := []domain.Playlist{}
	for _, p := range m.playlists {
		if p.OwnerId == ownerId {
			p.Songs = slices.Clone(p.Songs)
			res = append(res, p)
		}
	}
	slices.SortStableFunc(res, func(a, b domain.Playlist) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res, nil
}

func (m *MemoryRepo) DeletePlaylist(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.locker.Lock()
	defer m.locker.Unlock()

	if _, ok := m.playlists[id]; !ok {
		return domain.ErrPlaylistNotFound
	}
	delete(m.playlists, id)
	return nil
}

func (m *MemoryRepo) CreateRoom(ctx context.Context, room domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.locker.Lock()
	defer m.locker.Unlock()

	m.rooms[room.Id] = &roomEntry{room: room.Clone()}
	return nil
}

func (m *MemoryRepo) entry(id string) (*roomEntry, bool) {
	m.locker.RLock()
	defer m.locker.RUnlock()
	e, ok := m.rooms[id]
	return e, ok
}

func (m *MemoryRepo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	e, ok := m.entry(id)
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}

	e.locker.Lock()
	defer e.locker.Unlock()
	if e.deleted {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return e.room.Clone(), nil
}

// UpdateRoom holds the room mutex across load, apply and save. apply works
// on a copy, so an error leaves the stored room untouched.
func (m *MemoryRepo) UpdateRoom(ctx context.Context, id string, apply func(room *domain.Room) error) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	e, ok := m.entry(id)
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}

	e.locker.Lock()
	defer e.locker.Unlock()
	if e.deleted {
		return domain.Room{}, domain.ErrRoomNotFound
	}

	working := e.room.Clone()
	if err := apply(&working); err != nil {
		return domain.Room{}, err
	}
	e.room = working
	return working.Clone(), nil
}

func (m *MemoryRepo) DeleteRoom(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.locker.Lock()
	e, ok := m.rooms[id]
	delete(m.rooms, id)
	m.locker.Unlock()

	if !ok {
		return domain.ErrRoomNotFound
	}
	e.locker.Lock()
	e.deleted = true
	e.locker.Unlock()
	return nil
}

func (m *MemoryRepo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.locker.RLock()
	entries := make([]*roomEntry, 0, len(m.rooms))
	for _, e := range m.rooms {
		entries = append(entries, e)
	}
	m.locker.RUnlock()

	rooms := make([]domain.Room, 0, len(entries))
	for _, e := range entries {
		e.locker.Lock()
		if !e.deleted {
			rooms = append(rooms, e.room.Clone())
		}
		e.locker.Unlock()
	}
	slices.SortStableFunc(rooms, func(a, b domain.Room) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rooms, nil
}
