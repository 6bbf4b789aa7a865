package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/engagepod/internal/model"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// isUniqueViolation はエラーが一意制約違反かを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// PostgresMemberRepo はPostgreSQLを使用したメンバーリポジトリ。
type PostgresMemberRepo struct {
	db *sql.DB
}

// NewPostgresMemberRepo はPostgresMemberRepoを生成する。
func NewPostgresMemberRepo(db *sql.DB) *PostgresMemberRepo {
	return &PostgresMemberRepo{db: db}
}

// Create はメンバーを作成する。メール重複時はErrDuplicateを返す。
func (r *PostgresMemberRepo) Create(ctx context.Context, member *model.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, name, email, created_at, is_active)
		 VALUES ($1, $2, $3, $4, $5)`,
		member.ID, member.Name, member.Email, member.CreatedAt, member.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return nil
}

// FindByID は指定IDのメンバーを取得する。見つからない場合はnilを返す。
func (r *PostgresMemberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	member := &model.Member{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at, is_active FROM members WHERE id = $1`,
		id,
	).Scan(&member.ID, &member.Name, &member.Email, &member.CreatedAt, &member.IsActive)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member by ID: %w", err)
	}

	return member, nil
}

// FindByEmail はメールアドレス（小文字比較）でメンバーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresMemberRepo) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	member := &model.Member{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at, is_active FROM members WHERE lower(email) = lower($1)`,
		email,
	).Scan(&member.ID, &member.Name, &member.Email, &member.CreatedAt, &member.IsActive)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member by email: %w", err)
	}

	return member, nil
}

// ListActive はアクティブなメンバー一覧を登録日時降順で返す。
func (r *PostgresMemberRepo) ListActive(ctx context.Context) ([]*model.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, created_at, is_active
		 FROM members
		 WHERE is_active = TRUE
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active members: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		member := &model.Member{}
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &member.CreatedAt, &member.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// CountActive はアクティブなメンバー数を返す。
func (r *PostgresMemberRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE is_active = TRUE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active members: %w", err)
	}

	return count, nil
}

// Update はメンバーの全フィールドを上書き更新する。
func (r *PostgresMemberRepo) Update(ctx context.Context, member *model.Member) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE members SET name = $2, email = $3, is_active = $4 WHERE id = $1`,
		member.ID, member.Name, member.Email, member.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update member: %w", err)
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

// DeleteByID は指定IDのメンバーを削除する。
// 所有する投稿とエンゲージメントはCASCADE削除される。
func (r *PostgresMemberRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM members WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
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

// compile-time interface check
var _ MemberRepository = (*PostgresMemberRepo)(nil)
