package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/repository"
)

type MatchingRepo struct {
	pool *pgxpool.Pool
}

func NewMatchingRepo(pool *pgxpool.Pool) *MatchingRepo {
	return &MatchingRepo{pool: pool}
}

// bestImageSubquery picks the profile image shown on a candidate card:
// MAIN type wins, then lowest display order.
const bestImageSubquery = `(
	SELECT pi.image_url
	FROM profile_images pi
	WHERE pi.profile_id = p.id
	ORDER BY (CASE WHEN pi.image_type = 'MAIN' THEN 1 ELSE 0 END) DESC,
		pi.display_order ASC
	LIMIT 1
)`

// bestAreaJoin resolves each candidate's freshest location area, matching
// LocationRepository.GetBestArea ordering.
const bestAreaJoin = `(
	SELECT DISTINCT ON (user_id)
		user_id, latitude, longitude, address, verified_at
	FROM location_areas
	ORDER BY user_id, is_primary DESC, verified_at DESC NULLS LAST, created_at DESC
) la`

func (r *MatchingRepo) FindCandidates(ctx context.Context, q repository.CandidateQuery) ([]repository.CandidateRow, error) {
	if q.MaxDistanceMeters <= 0 {
		return r.findCandidatesUnfiltered(ctx, q)
	}
	return r.findCandidatesByDistance(ctx, q)
}

func (r *MatchingRepo) findCandidatesUnfiltered(ctx context.Context, q repository.CandidateQuery) ([]repository.CandidateRow, error) {
	query := `
		SELECT u.id, p.display_name, p.age, p.height, p.occupation, p.education, p.bio,
			la.address, NULL::double precision AS distance_meters,
			` + bestImageSubquery + ` AS image_url
		FROM users u
		JOIN profiles p ON u.id = p.user_id
		LEFT JOIN ` + bestAreaJoin + ` ON la.user_id = u.id
		WHERE u.id <> $1
			AND u.status = 'ACTIVE'
			AND u.deleted_at IS NULL
			AND p.is_complete = true
			AND ($2::text IS NULL OR p.gender IS NULL OR p.gender <> $2)
			AND NOT EXISTS (
				SELECT 1 FROM user_blocks ub
				WHERE (ub.user_id = $1 AND ub.blocked_user_id = u.id)
					OR (ub.user_id = u.id AND ub.blocked_user_id = $1)
			)
		ORDER BY p.updated_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, q.UserID, q.Gender, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCandidates(rows)
}

func (r *MatchingRepo) findCandidatesByDistance(ctx context.Context, q repository.CandidateQuery) ([]repository.CandidateRow, error) {
	query := `
		SELECT u.id, p.display_name, p.age, p.height, p.occupation, p.education, p.bio,
			la.address,
			(
				6371000 * acos(
					cos(radians($4)) * cos(radians(la.latitude)) *
					cos(radians(la.longitude) - radians($5)) +
					sin(radians($4)) * sin(radians(la.latitude))
				)
			) AS distance_meters,
			` + bestImageSubquery + ` AS image_url
		FROM users u
		JOIN profiles p ON u.id = p.user_id
		JOIN ` + bestAreaJoin + ` ON la.user_id = u.id
		WHERE u.id <> $1
			AND u.status = 'ACTIVE'
			AND u.deleted_at IS NULL
			AND p.is_complete = true
			AND ($2::text IS NULL OR p.gender IS NULL OR p.gender <> $2)
			AND la.verified_at > $6
			AND (
				6371000 * acos(
					cos(radians($4)) * cos(radians(la.latitude)) *
					cos(radians(la.longitude) - radians($5)) +
					sin(radians($4)) * sin(radians(la.latitude))
				)
			) <= $7
			AND NOT EXISTS (
				SELECT 1 FROM user_blocks ub
				WHERE (ub.user_id = $1 AND ub.blocked_user_id = u.id)
					OR (ub.user_id = u.id AND ub.blocked_user_id = $1)
			)
		ORDER BY distance_meters ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query,
		q.UserID, q.Gender, q.Limit,
		q.Latitude, q.Longitude, q.VerifiedAfter, q.MaxDistanceMeters,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCandidates(rows)
}

func (r *MatchingRepo) GetHistory(ctx context.Context, userID, targetUserID uuid.UUID) (*domain.MatchingHistory, error) {
	query := `
		SELECT id, user_id, target_user_id, action, match_score, viewed_profile, view_duration, created_at, updated_at
		FROM matching_history
		WHERE user_id = $1 AND target_user_id = $2`
	var h domain.MatchingHistory
	err := r.pool.QueryRow(ctx, query, userID, targetUserID).Scan(
		&h.ID, &h.UserID, &h.TargetUserID, &h.Action, &h.MatchScore,
		&h.ViewedProfile, &h.ViewDuration, &h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &h, err
}

func (r *MatchingRepo) UpsertHistory(ctx context.Context, h *domain.MatchingHistory) error {
	query := `
		INSERT INTO matching_history (id, user_id, target_user_id, action, match_score, viewed_profile, view_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, target_user_id) DO UPDATE
		SET action = EXCLUDED.action,
			match_score = EXCLUDED.match_score,
			viewed_profile = EXCLUDED.viewed_profile,
			view_duration = EXCLUDED.view_duration,
			updated_at = EXCLUDED.updated_at
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		h.ID, h.UserID, h.TargetUserID, h.Action, h.MatchScore,
		h.ViewedProfile, h.ViewDuration, h.CreatedAt, h.UpdatedAt,
	).Scan(&h.ID)
}

func (r *MatchingRepo) CreateActionLog(ctx context.Context, entry *domain.MatchingActionLog) error {
	query := `
		INSERT INTO matching_action_logs (id, user_id, target_user_id, action, match_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.TargetUserID, entry.Action, entry.MatchScore, entry.CreatedAt,
	)
	return err
}

func (r *MatchingRepo) CountActions(ctx context.Context, userID uuid.UUID, action string, received bool) (int, error) {
	column := "user_id"
	if received {
		column = "target_user_id"
	}
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM matching_action_logs WHERE `+column+` = $1 AND action = $2`,
		userID, action,
	).Scan(&count)
	return count, err
}

func (r *MatchingRepo) CountOngoingChats(ctx context.Context, userID uuid.UUID) (int, error) {
	// Rooms without a single message yet don't count as ongoing.
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chat_rooms cr
		JOIN chat_room_participants p ON p.room_id = cr.id AND p.user_id = $1 AND p.left_at IS NULL
		WHERE cr.status = 'ACTIVE'
			AND EXISTS (SELECT 1 FROM chat_messages m WHERE m.room_id = cr.id)`,
		userID,
	).Scan(&count)
	return count, err
}

func (r *MatchingRepo) ListActionUsers(ctx context.Context, userID uuid.UUID, action string, received bool, limit int) ([]domain.ActionUser, error) {
	ownColumn, otherColumn := "user_id", "target_user_id"
	if received {
		ownColumn, otherColumn = "target_user_id", "user_id"
	}

	query := `
		SELECT l.` + otherColumn + `, COALESCE(p.display_name, ''), p.age,
			` + bestImageSubquery + ` AS image_url,
			l.action, l.created_at
		FROM matching_action_logs l
		LEFT JOIN profiles p ON p.user_id = l.` + otherColumn + `
		WHERE l.` + ownColumn + ` = $1 AND l.action = $2
		ORDER BY l.created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, action, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.ActionUser
	for rows.Next() {
		var u domain.ActionUser
		if err := rows.Scan(&u.UserID, &u.DisplayName, &u.Age, &u.ImageURL, &u.Action, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanCandidates(rows pgx.Rows) ([]repository.CandidateRow, error) {
	var candidates []repository.CandidateRow
	for rows.Next() {
		var c repository.CandidateRow
		if err := rows.Scan(
			&c.UserID, &c.DisplayName, &c.Age, &c.Height, &c.Occupation,
			&c.Education, &c.Bio, &c.LocationAddress, &c.DistanceMeters, &c.ImageURL,
		); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
