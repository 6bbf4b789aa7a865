package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/engagepod/internal/model"
)

// PostgresEngagementRepo はPostgreSQLを使用したエンゲージメントリポジトリ。
type PostgresEngagementRepo struct {
	db *sql.DB
}

// NewPostgresEngagementRepo はPostgresEngagementRepoを生成する。
func NewPostgresEngagementRepo(db *sql.DB) *PostgresEngagementRepo {
	return &PostgresEngagementRepo{db: db}
}

// Create はエンゲージメントを作成する。
// (post_id, member_id, engagement_type) の一意制約違反はErrDuplicateとして返す。
// 重複判定をDBの一意インデックスに委ねることで、同時リクエストでも
// 同一トリプルが二重に記録されることはない。
func (r *PostgresEngagementRepo) Create(ctx context.Context, engagement *model.Engagement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO engagements (id, post_id, member_id, engagement_type, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		engagement.ID, engagement.PostID, engagement.MemberID, string(engagement.Type), engagement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert engagement: %w", err)
	}

	return nil
}

// Delete は (post_id, member_id, engagement_type) で特定される
// エンゲージメントを削除する。存在しない場合はErrNotFoundを返す。
func (r *PostgresEngagementRepo) Delete(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM engagements
		 WHERE post_id = $1 AND member_id = $2 AND engagement_type = $3`,
		postID, memberID, string(engagementType),
	)
	if err != nil {
		return fmt.Errorf("failed to delete engagement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByPostIDs は指定された投稿群の全エンゲージメントをメンバー名付きで返す。
// 空のIDリストに対しては空の結果を返す。
func (r *PostgresEngagementRepo) ListByPostIDs(ctx context.Context, postIDs []string) ([]EngagementWithMember, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT e.post_id, e.member_id, m.name, e.engagement_type
		 FROM engagements e
		 JOIN members m ON e.member_id = m.id
		 WHERE e.post_id = ANY($1)
		 ORDER BY e.created_at`,
		pq.Array(postIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	defer rows.Close()

	var engagements []EngagementWithMember
	for rows.Next() {
		var e EngagementWithMember
		var engagementType string
		if err := rows.Scan(&e.PostID, &e.MemberID, &e.MemberName, &engagementType); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		e.Type = model.EngagementType(engagementType)
		engagements = append(engagements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate engagements: %w", err)
	}

	return engagements, nil
}

// compile-time interface check
var _ EngagementRepository = (*PostgresEngagementRepo)(nil)
