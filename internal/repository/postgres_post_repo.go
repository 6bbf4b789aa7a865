package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/engagepod/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	var note sql.NullString
	if post.Note != "" {
		note = sql.NullString{String: post.Note, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, member_id, linkedin_url, note, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.MemberID, post.LinkedInURL, note, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	var note sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, member_id, linkedin_url, note, created_at FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.MemberID, &post.LinkedInURL, &note, &post.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	post.Note = note.String

	return post, nil
}

// ListRecentWithMember は投稿を投稿者情報付きで作成日時降順に返す。
func (r *PostgresPostRepo) ListRecentWithMember(ctx context.Context, limit int) ([]model.PostWithMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.member_id, p.linkedin_url, p.note, p.created_at,
		        m.name, m.email
		 FROM posts p
		 JOIN members m ON p.member_id = m.id
		 ORDER BY p.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent posts: %w", err)
	}
	defer rows.Close()

	return scanPostsWithMember(rows)
}

// ListSinceWithMember はsince以降に作成された投稿を投稿者情報付きで
// 作成日時降順、最大limit件返す。
func (r *PostgresPostRepo) ListSinceWithMember(ctx context.Context, since time.Time, limit int) ([]model.PostWithMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.member_id, p.linkedin_url, p.note, p.created_at,
		        m.name, m.email
		 FROM posts p
		 JOIN members m ON p.member_id = m.id
		 WHERE p.created_at >= $1
		 ORDER BY p.created_at DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return scanPostsWithMember(rows)
}

// scanPostsWithMember はJOIN済みの投稿行をスキャンする。
func scanPostsWithMember(rows *sql.Rows) ([]model.PostWithMember, error) {
	var posts []model.PostWithMember
	for rows.Next() {
		var p model.PostWithMember
		var note sql.NullString
		if err := rows.Scan(&p.ID, &p.MemberID, &p.LinkedInURL, &note, &p.CreatedAt, &p.MemberName, &p.MemberEmail); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.Note = note.String
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
