// Package postgres provides a PostgreSQL implementation of the storage interface.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/storage"
)

// pool is the subset of pgxpool.Pool used by the store; pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool pool
}

// New connects to the database, optionally applying migrations first.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.AutoMigrate {
		if err := Migrate(cfg.URL); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}

	return &Storage{pool: p}, nil
}

// NewWithPool wraps an existing pool (for testing)
func NewWithPool(p pool) *Storage {
	return &Storage{pool: p}
}

// Migrate applies every pending migration and closes the migrator.
func Migrate(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	upErr := m.Up()
	closeErr := m.Close()
	if upErr != nil {
		return upErr
	}
	return closeErr
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO players (id, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		string(player.ID), player.PasswordHash, player.CreatedAt, player.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgerrcode.UniqueViolation {
			return model.ErrPlayerExists
		}
		return oops.Code("PLAYER_CREATE_FAILED").With("player_id", player.ID).Wrap(err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		playerID string
		player   model.Player
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, password_hash, created_at, updated_at FROM players WHERE id = $1`,
		string(id)).Scan(&playerID, &player.PasswordHash, &player.CreatedAt, &player.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_FAILED").With("player_id", id).Wrap(err)
	}
	player.ID = model.PlayerID(playerID)
	return &player, nil
}

func (s *Storage) UpdatePlayerPassword(ctx context.Context, id model.PlayerID, passwordHash string, updatedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE players SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		string(id), passwordHash, updatedAt)
	if err != nil {
		return oops.Code("PLAYER_UPDATE_FAILED").With("player_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, string(id))
	if err != nil {
		return oops.Code("PLAYER_DELETE_FAILED").With("player_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Topic operations

func (s *Storage) SaveTopics(ctx context.Context, topics []model.Topic) error {
	for _, t := range topics {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO topics (id, name) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			int(t.ID), t.Name)
		if err != nil {
			return oops.Code("TOPIC_SAVE_FAILED").With("topic_id", t.ID).Wrap(err)
		}
	}
	return nil
}

func (s *Storage) ListTopics(ctx context.Context) ([]model.Topic, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM topics ORDER BY id`)
	if err != nil {
		return nil, oops.Code("TOPIC_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	topics := []model.Topic{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, oops.Code("TOPIC_LIST_FAILED").With("operation", "scan").Wrap(err)
		}
		topics = append(topics, model.Topic{ID: model.TopicID(id), Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TOPIC_LIST_FAILED").With("operation", "iterate").Wrap(err)
	}
	return topics, nil
}

func (s *Storage) GetTopic(ctx context.Context, id model.TopicID) (*model.Topic, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT name FROM topics WHERE id = $1`, int(id)).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrTopicNotFound
	}
	if err != nil {
		return nil, oops.Code("TOPIC_GET_FAILED").With("topic_id", id).Wrap(err)
	}
	return &model.Topic{ID: id, Name: name}, nil
}

// Room operations

const roomColumns = `id, name, player_id, topic_id, start_time, end_time, created_at`

// CreateRoom inserts only while the owner row exists. The key-share lock
// makes a concurrent player delete wait for this insert to commit.
func (s *Storage) CreateRoom(ctx context.Context, room *model.Room) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (`+roomColumns+`)
		 SELECT $1, $2, $3, $4, $5, $6, $7
		 WHERE EXISTS (SELECT 1 FROM players WHERE id = $3 FOR KEY SHARE)`,
		string(room.ID), room.Name, string(room.PlayerID), int(room.TopicID),
		room.StartTime, room.EndTime, room.CreatedAt)
	if err != nil {
		switch pgCode(err) {
		case pgerrcode.UniqueViolation:
			return model.ErrRoomNameTaken
		case pgerrcode.ForeignKeyViolation:
			return model.ErrTopicNotFound
		}
		return oops.Code("ROOM_CREATE_FAILED").With("room_id", room.ID).With("room_name", room.Name).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) RoomNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, oops.Code("ROOM_NAME_LOOKUP_FAILED").With("room_name", name).Wrap(err)
	}
	return exists, nil
}

func (s *Storage) ListRooms(ctx context.Context, q model.RoomQuery) ([]*model.Room, error) {
	var topic *int
	if q.TopicID != nil {
		t := int(*q.TopicID)
		topic = &t
	}

	// LIMIT NULL is unlimited in PostgreSQL
	rows, err := s.pool.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms
		 WHERE ($1::integer IS NULL OR topic_id = $1) AND id > $2
		 ORDER BY id ASC
		 LIMIT NULLIF($3, 0)`,
		topic, string(q.After), q.Limit)
	if err != nil {
		return nil, oops.Code("ROOM_LIST_FAILED").With("after", q.After).Wrap(err)
	}
	return scanRooms(rows)
}

func (s *Storage) GetRoomsByIDs(ctx context.Context, ids []model.RoomID) ([]*model.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ANY($1) ORDER BY id ASC`, raw)
	if err != nil {
		return nil, oops.Code("ROOM_LOOKUP_FAILED").With("count", len(ids)).Wrap(err)
	}
	return scanRooms(rows)
}

func (s *Storage) CountActiveRoomsByTopic(ctx context.Context, at time.Time) (map[model.TopicID]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT topic_id, count(*) FROM rooms WHERE end_time > $1 GROUP BY topic_id`, at)
	if err != nil {
		return nil, oops.Code("ROOM_COUNT_FAILED").Wrap(err)
	}
	defer rows.Close()

	counts := make(map[model.TopicID]int)
	for rows.Next() {
		var (
			topicID int
			count   int64
		)
		if err := rows.Scan(&topicID, &count); err != nil {
			return nil, oops.Code("ROOM_COUNT_FAILED").With("operation", "scan").Wrap(err)
		}
		counts[model.TopicID(topicID)] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROOM_COUNT_FAILED").With("operation", "iterate").Wrap(err)
	}
	return counts, nil
}

func scanRooms(rows pgx.Rows) ([]*model.Room, error) {
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		var (
			id, playerID string
			topicID      int
			room         model.Room
		)
		if err := rows.Scan(&id, &room.Name, &playerID, &topicID, &room.StartTime, &room.EndTime, &room.CreatedAt); err != nil {
			return nil, oops.Code("ROOM_SCAN_FAILED").Wrap(err)
		}
		room.ID = model.RoomID(id)
		room.PlayerID = model.PlayerID(playerID)
		room.TopicID = model.TopicID(topicID)
		rooms = append(rooms, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROOM_SCAN_FAILED").With("operation", "iterate").Wrap(err)
	}
	return rooms, nil
}
