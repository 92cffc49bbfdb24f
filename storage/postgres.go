package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pg *PostgresRepo) Ping(ctx context.Context) error {
	return pg.pool.Ping(ctx)
}

func (pg *PostgresRepo) Close() {
	pg.pool.Close()
}

// validId reports whether id can be bound to a uuid column. Anything else can
// never match a row.
func validId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// wrapErr maps driver errors onto domain errors.
func wrapErr(err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}

// GetOrCreateUser returns the user named username, creating it on first use.
func (pg *PostgresRepo) GetOrCreateUser(ctx context.Context, username string) (domain.User, error) {
	row := pg.pool.QueryRow(ctx, `
		INSERT INTO users(username) VALUES($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, created_at`, username)

	var user domain.User
	if err := row.Scan(&user.Id, &user.Username, &user.CreatedAt); err != nil {
		return domain.User{}, wrapErr(err, domain.ErrUserNotFound)
	}
	return user, nil
}

func (pg *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	if !validId(id) {
		return domain.User{}, domain.ErrUserNotFound
	}
	user := domain.User{}
	row := pg.pool.QueryRow(ctx, "SELECT id, username, created_at FROM users WHERE id = $1", id)

	if err := row.Scan(&user.Id, &user.Username, &user.CreatedAt); err != nil {
		return domain.User{}, wrapErr(err, domain.ErrUserNotFound)
	}
	return user, nil
}

func (pg *PostgresRepo) CreatePlaylist(ctx context.Context, ownerId, name string, songs []domain.Song) (domain.Playlist, error) {
	if !validId(ownerId) {
		return domain.Playlist{}, domain.ErrUserNotFound
	}
	if songs == nil {
		songs = []domain.Song{}
	}
	p := domain.Playlist{OwnerId: ownerId, Name: name, Songs: songs}

	row := pg.pool.QueryRow(ctx,
		"INSERT INTO playlists(owner_id, name, songs) VALUES($1, $2, $3) RETURNING id, created_at",
		ownerId, name, songs)

	if err := row.Scan(&p.Id, &p.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		// "23503" is foreign_key_violation: the owner does not exist
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Playlist{}, domain.ErrUserNotFound
		}
		return domain.Playlist{}, wrapErr(err, domain.ErrUserNotFound)
	}
	return p, nil
}

func (pg *PostgresRepo) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	if !validId(id) {
		return domain.Playlist{}, domain.ErrPlaylistNotFound
	}
	p := domain.Playlist{}
	row := pg.pool.QueryRow(ctx,
		"SELECT id, owner_id, name, songs, created_at FROM playlists WHERE id = $1", id)

	if err := row.Scan(&p.Id, &p.OwnerId, &p.Name, &p.Songs, &p.CreatedAt); err != nil {
		return domain.Playlist{}, wrapErr(err, domain.ErrPlaylistNotFound)
	}
	return p, nil
}

func (pg *PostgresRepo) ListPlaylistsByOwner(ctx context.Context, ownerId string) ([]domain.Playlist, error) {
	if !validId(ownerId) {
		return []domain.Playlist{}, nil
	}
	rows, err := pg.pool.Query(ctx,
		"SELECT id, owner_id, name, songs, created_at FROM playlists WHERE owner_id = $1 ORDER BY created_at DESC",
		ownerId)
	if err != nil {
		return nil, wrapErr(err, domain.ErrUserNotFound)
	}

	playlists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Playlist, error) {
		var p domain.Playlist
		err := row.Scan(&p.Id, &p.OwnerId, &p.Name, &p.Songs, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, wrapErr(err, domain.ErrUserNotFound)
	}
	return playlists, nil
}

func (pg *PostgresRepo) DeletePlaylist(ctx context.Context, id string) error {
	if !validId(id) {
		return domain.ErrPlaylistNotFound
	}
	tag, err := pg.pool.Exec(ctx, "DELETE FROM playlists WHERE id = $1", id)
	if err != nil {
		return wrapErr(err, domain.ErrPlaylistNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlaylistNotFound
	}
	return nil
}

const selectRoom = `
	SELECT id, host_id, host_name, COALESCE(playlist_id::text, ''), playlist_name, songs,
	       status, current_song_index, players, settings, round_started_at, created_at
	FROM rooms`

func scanRoom(row pgx.Row) (domain.Room, error) {
	var (
		r              domain.Room
		status         string
		roundStartedAt *time.Time
	)
	err := row.Scan(&r.Id, &r.HostId, &r.HostName, &r.PlaylistId, &r.PlaylistName, &r.Songs,
		&status, &r.CurrentSongIndex, &r.Players, &r.Settings, &roundStartedAt, &r.CreatedAt)
	if err != nil {
		return domain.Room{}, err
	}
	r.Status = domain.RoomStatus(status)
	if roundStartedAt != nil {
		r.RoundStartedAt = *roundStartedAt
	}
	if r.Players == nil {
		r.Players = map[string]*domain.Player{}
	}
	return r, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (pg *PostgresRepo) CreateRoom(ctx context.Context, room domain.Room) error {
	var playlistId *string
	if room.PlaylistId != "" {
		playlistId = &room.PlaylistId
	}
	if room.Players == nil {
		room.Players = map[string]*domain.Player{}
	}
	if room.Songs == nil {
		room.Songs = []domain.Song{}
	}

	_, err := pg.pool.Exec(ctx, `
		INSERT INTO rooms(id, host_id, host_name, playlist_id, playlist_name, songs, status,
		                  current_song_index, players, settings, round_started_at, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		room.Id, room.HostId, room.HostName, playlistId, room.PlaylistName, room.Songs, string(room.Status),
		room.CurrentSongIndex, room.Players, room.Settings, nullableTime(room.RoundStartedAt), room.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrUserNotFound
		}
		return wrapErr(err, domain.ErrRoomNotFound)
	}
	return nil
}

func (pg *PostgresRepo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	if !validId(id) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	room, err := scanRoom(pg.pool.QueryRow(ctx, selectRoom+" WHERE id = $1", id))
	if err != nil {
		return domain.Room{}, wrapErr(err, domain.ErrRoomNotFound)
	}
	return room, nil
}

// UpdateRoom locks the row with SELECT ... FOR UPDATE, so concurrent updates
// of one room queue up on the row lock while other rooms proceed.
func (pg *PostgresRepo) UpdateRoom(ctx context.Context, id string, apply func(room *domain.Room) error) (domain.Room, error) {
	if !validId(id) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	tx, err := pg.pool.Begin(ctx)
	if err != nil {
		return domain.Room{}, wrapErr(err, domain.ErrRoomNotFound)
	}
	defer tx.Rollback(ctx)

	room, err := scanRoom(tx.QueryRow(ctx, selectRoom+" WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return domain.Room{}, wrapErr(err, domain.ErrRoomNotFound)
	}

	if err := apply(&room); err != nil {
		return domain.Room{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE rooms
		SET players = $2, status = $3, current_song_index = $4, round_started_at = $5
		WHERE id = $1`,
		id, room.Players, string(room.Status), room.CurrentSongIndex, nullableTime(room.RoundStartedAt))
	if err != nil {
		return domain.Room{}, wrapErr(err, domain.ErrRoomNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Room{}, wrapErr(err, domain.ErrRoomNotFound)
	}
	return room, nil
}

func (pg *PostgresRepo) DeleteRoom(ctx context.Context, id string) error {
	if !validId(id) {
		return domain.ErrRoomNotFound
	}
	tag, err := pg.pool.Exec(ctx, "DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		return wrapErr(err, domain.ErrRoomNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// ListRooms skips rooms whose pointer already ran past the playable songs.
func (pg *PostgresRepo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := pg.pool.Query(ctx, selectRoom+`
		WHERE current_song_index < LEAST((settings->>'rounds')::int, jsonb_array_length(songs))
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapErr(err, domain.ErrRoomNotFound)
	}

	rooms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Room, error) {
		return scanRoom(row)
	})
	if err != nil {
		return nil, wrapErr(err, domain.ErrRoomNotFound)
	}
	return rooms, nil
}
