package repository

import (
	"context"

	"tasksphere/internal/domain/comment"
)

type commentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, tx DBTX, c *comment.Comment) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	return execDB.QueryRow(ctx, `
        INSERT INTO comments (issue_id, author_id, text)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, c.IssueID, c.AuthorID, c.Text).Scan(&c.ID, &c.CreatedAt)
}

func (r *commentRepository) ListByIssue(ctx context.Context, issueID int64) ([]comment.Comment, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, issue_id, author_id, text, created_at
        FROM comments
        WHERE issue_id = $1
        ORDER BY created_at ASC
    `, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []comment.Comment
	for rows.Next() {
		var c comment.Comment
		if err := rows.Scan(&c.ID, &c.IssueID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
