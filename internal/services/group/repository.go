package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dineflow/internal/database"
	"dineflow/internal/models"
	"dineflow/internal/services/order"
)

// Repository persists group sessions and their participants. Session rows
// are only ever mutated under a row lock, so every write takes the
// transaction; reads accept either the pool or a transaction.
type Repository struct {
	*order.Repository
	db *database.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *database.DB) *Repository {
	return &Repository{Repository: order.NewRepository(db), db: db}
}

// Pool exposes the pool-backed read surface for queries outside a transaction.
func (r *Repository) Pool() database.Querier {
	return r.db
}

func scanSession(row pgx.Row) (*models.GroupOrderSession, error) {
	var s models.GroupOrderSession
	err := row.Scan(
		&s.ID, &s.SessionCode, &s.MerchantID, &s.OrderID, &s.OrderType,
		&s.TableNumber, &s.Status, &s.MaxParticipants, &s.ExpiresAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan group session: %w", err)
	}
	return &s, nil
}

// ActiveSessionByCode returns the newest OPEN or LOCKED session under the
// code, or nil. Finished sessions release their code for reuse.
func (r *Repository) ActiveSessionByCode(ctx context.Context, code string) (*models.GroupOrderSession, error) {
	return scanSession(r.db.QueryRow(ctx, database.GetActiveSessionByCodeSQL, code))
}

// SessionForUpdate reloads a session by id and locks its row.
func (r *Repository) SessionForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.GroupOrderSession, error) {
	return scanSession(tx.QueryRow(ctx, database.GetSessionForUpdateSQL, id))
}

// SessionCodeInUse reports whether an active session already holds the code.
func (r *Repository) SessionCodeInUse(ctx context.Context, tx pgx.Tx, code string) (bool, error) {
	var inUse bool
	if err := tx.QueryRow(ctx, database.SessionCodeInUseSQL, code).Scan(&inUse); err != nil {
		return false, fmt.Errorf("check session code: %w", err)
	}
	return inUse, nil
}

func (r *Repository) InsertSession(ctx context.Context, tx pgx.Tx, s *models.GroupOrderSession) error {
	err := tx.QueryRow(ctx, database.InsertSessionSQL,
		s.SessionCode, s.MerchantID, s.OrderType, s.TableNumber,
		s.MaxParticipants, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert group session: %w", err)
	}
	s.Status = models.GroupSessionOpen
	return nil
}

func (r *Repository) SetSessionStatus(ctx context.Context, tx pgx.Tx, id int64, status models.GroupSessionStatus) error {
	if _, err := tx.Exec(ctx, database.UpdateSessionStatusSQL, id, status); err != nil {
		return fmt.Errorf("update session %d status: %w", id, err)
	}
	return nil
}

// MarkSubmitted stamps the session SUBMITTED and attaches the merged order.
func (r *Repository) MarkSubmitted(ctx context.Context, tx pgx.Tx, id, orderID int64) error {
	if _, err := tx.Exec(ctx, database.MarkSessionSubmittedSQL, id, orderID); err != nil {
		return fmt.Errorf("mark session %d submitted: %w", id, err)
	}
	return nil
}

func scanParticipants(rows pgx.Rows) ([]models.GroupParticipant, error) {
	defer rows.Close()
	var out []models.GroupParticipant
	for rows.Next() {
		var p models.GroupParticipant
		err := rows.Scan(
			&p.ID, &p.SessionID, &p.CustomerID, &p.Name, &p.DeviceID,
			&p.IsHost, &p.Cart, &p.JoinedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Participants returns the session's members in join order.
func (r *Repository) Participants(ctx context.Context, q database.Querier, sessionID int64) ([]models.GroupParticipant, error) {
	rows, err := q.Query(ctx, database.GetParticipantsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	return scanParticipants(rows)
}

func scanParticipant(row pgx.Row) (*models.GroupParticipant, error) {
	var p models.GroupParticipant
	err := row.Scan(
		&p.ID, &p.SessionID, &p.CustomerID, &p.Name, &p.DeviceID,
		&p.IsHost, &p.Cart, &p.JoinedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	return &p, nil
}

// ParticipantByDevice returns the session member using the device, or nil.
func (r *Repository) ParticipantByDevice(ctx context.Context, q database.Querier, sessionID int64, deviceID string) (*models.GroupParticipant, error) {
	return scanParticipant(q.QueryRow(ctx, database.GetParticipantByDeviceSQL, sessionID, deviceID))
}

// Participant returns the member by id within the session, or nil.
func (r *Repository) Participant(ctx context.Context, q database.Querier, id, sessionID int64) (*models.GroupParticipant, error) {
	return scanParticipant(q.QueryRow(ctx, database.GetParticipantSQL, id, sessionID))
}

func (r *Repository) CountParticipants(ctx context.Context, q database.Querier, sessionID int64) (int, error) {
	var count int
	if err := q.QueryRow(ctx, database.CountParticipantsSQL, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func (r *Repository) InsertParticipant(ctx context.Context, tx pgx.Tx, p *models.GroupParticipant) error {
	err := tx.QueryRow(ctx, database.InsertParticipantSQL,
		p.SessionID, p.CustomerID, p.Name, p.DeviceID, p.IsHost,
	).Scan(&p.ID, &p.JoinedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *Repository) UpdateParticipantCart(ctx context.Context, tx pgx.Tx, id int64, cart []byte) error {
	if _, err := tx.Exec(ctx, database.UpdateParticipantCartSQL, id, cart); err != nil {
		return fmt.Errorf("update participant %d cart: %w", id, err)
	}
	return nil
}

func (r *Repository) DeleteParticipant(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, database.DeleteParticipantSQL, id); err != nil {
		return fmt.Errorf("delete participant %d: %w", id, err)
	}
	return nil
}

func (r *Repository) SetParticipantHost(ctx context.Context, tx pgx.Tx, id int64, isHost bool) error {
	if _, err := tx.Exec(ctx, database.SetParticipantHostSQL, id, isHost); err != nil {
		return fmt.Errorf("set participant %d host: %w", id, err)
	}
	return nil
}
