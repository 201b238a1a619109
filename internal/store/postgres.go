package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openfpl/draft-backend/internal/model"
)

func New(ctx context.Context, connString string, clock clock.Clock) (Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &postgresStore{pool: pool, clock: clock}, nil
}

type postgresStore struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

const leagueColumns = `id, name, code, status, admin_manager_id, draft_start,
						draft_turn_duration_ms, max_per_club`

func (s *postgresStore) GetLeague(ctx context.Context, id int64) (*model.League, error) {
	query := fmt.Sprintf(`SELECT %s FROM leagues WHERE id=@id`, leagueColumns)

	row := s.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	l, err := scanLeague(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("error loading league %d: %w", id, err)
	}
	return l, nil
}

func (s *postgresStore) DueLeagues(ctx context.Context, since, until time.Time) ([]model.League, error) {
	query := fmt.Sprintf(`SELECT %s FROM leagues
							WHERE status=@status
								AND draft_start > @since
								AND draft_start <= @until`, leagueColumns)

	args := pgx.NamedArgs{
		"status": string(model.StatusWaitingForDraft),
		"since":  since,
		"until":  until,
	}
	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying due leagues: %w", err)
	}
	defer rows.Close()

	results := make([]model.League, 0, 4)
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *l)
	}
	return results, rows.Err()
}

func (s *postgresStore) ClaimLeagueForDraft(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE leagues SET status=@drafting
					WHERE id=@id AND status=@waiting`

	args := pgx.NamedArgs{
		"id":       id,
		"drafting": string(model.StatusDrafting),
		"waiting":  string(model.StatusWaitingForDraft),
	}
	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("error claiming league %d for draft: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *postgresStore) LeagueManagers(ctx context.Context, leagueID int64) ([]model.Manager, error) {
	const query = `SELECT DISTINCT m.id, m.username
					FROM managers m
					JOIN teams t ON t.manager_id = m.id
					WHERE t.league_id=@leagueID
					ORDER BY m.id`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"leagueID": leagueID})
	if err != nil {
		return nil, fmt.Errorf("error querying league managers: %w", err)
	}
	defer rows.Close()

	results := make([]model.Manager, 0, 8)
	for rows.Next() {
		var m model.Manager
		if err := rows.Scan(&m.ID, &m.Username); err != nil {
			return nil, fmt.Errorf("error scanning manager: %w", err)
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *postgresStore) AvailablePlayers(ctx context.Context) ([]model.Player, error) {
	const query = `SELECT p.id, p.first_name, p.last_name, p.position,
							p.club_id, c.short_name, p.available
					FROM players p
					JOIN clubs c ON c.id = p.club_id
					WHERE p.available
					ORDER BY p.id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying available players: %w", err)
	}
	defer rows.Close()

	results := make([]model.Player, 0, 64)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *p)
	}
	return results, rows.Err()
}

func (s *postgresStore) ManagerByUsername(ctx context.Context, username string) (*model.Manager, error) {
	const query = `SELECT id, username FROM managers WHERE username=@username`

	var m model.Manager
	err := s.pool.QueryRow(ctx, query, pgx.NamedArgs{"username": username}).
		Scan(&m.ID, &m.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrManagerNotFound
		}
		return nil, fmt.Errorf("error loading manager %q: %w", username, err)
	}
	return &m, nil
}

func (s *postgresStore) SaveDraftResults(ctx context.Context, leagueID int64, rosters map[int64][]model.Player) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting draft results tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for managerID, roster := range rosters {
		const teamQuery = `SELECT id FROM teams
							WHERE league_id=@leagueID AND manager_id=@managerID`

		var teamID int64
		args := pgx.NamedArgs{"leagueID": leagueID, "managerID": managerID}
		if err := tx.QueryRow(ctx, teamQuery, args).Scan(&teamID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: manager %d in league %d", ErrTeamNotFound, managerID, leagueID)
			}
			return fmt.Errorf("error finding team for manager %d: %w", managerID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM team_players WHERE team_id=@teamID`,
			pgx.NamedArgs{"teamID": teamID}); err != nil {
			return fmt.Errorf("error clearing team %d players: %w", teamID, err)
		}

		for _, p := range roster {
			const insert = `INSERT INTO team_players(team_id, player_id) VALUES(@teamID, @playerID)`
			args := pgx.NamedArgs{"teamID": teamID, "playerID": p.ID}
			if _, err := tx.Exec(ctx, insert, args); err != nil {
				return fmt.Errorf("error inserting player %d onto team %d: %w", p.ID, teamID, err)
			}
		}

		const stamp = `UPDATE teams SET drafted_at=@now WHERE id=@teamID`
		if _, err := tx.Exec(ctx, stamp,
			pgx.NamedArgs{"now": s.clock.Now().UTC(), "teamID": teamID}); err != nil {
			return fmt.Errorf("error stamping team %d: %w", teamID, err)
		}
	}

	const statusQuery = `UPDATE leagues SET status=@status WHERE id=@id`
	args := pgx.NamedArgs{"status": string(model.StatusInSeason), "id": leagueID}
	if _, err := tx.Exec(ctx, statusQuery, args); err != nil {
		return fmt.Errorf("error updating league %d status: %w", leagueID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing draft results: %w", err)
	}
	return nil
}

func (s *postgresStore) Close() {
	s.pool.Close()
}

func scanLeague(row pgx.Row) (*model.League, error) {
	var l model.League
	var status string
	var turnMS int64
	err := row.Scan(&l.ID, &l.Name, &l.Code, &status, &l.AdminManagerID,
		&l.DraftStart, &turnMS, &l.MaxPerClub)
	if err != nil {
		return nil, err
	}
	l.Status = model.LeagueStatus(status)
	l.DraftTurnDuration = time.Duration(turnMS) * time.Millisecond
	return &l, nil
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	var pos string
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &pos,
		&p.ClubID, &p.ClubShort, &p.Available)
	if err != nil {
		return nil, fmt.Errorf("error scanning player: %w", err)
	}
	p.Position = model.ParsePosition(pos)
	return &p, nil
}
