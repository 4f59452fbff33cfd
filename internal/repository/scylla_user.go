package repository

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository/queries"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/database"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

type scyllaUserRepository struct {
	conn *database.Connection
}

func (r *scyllaUserRepository) Create(ctx context.Context, user *types.UserData) error {
	return r.conn.Session().Query(queries.InsertUserQuery,
		user.ID, user.SessionID, user.WalletBalance, user.Roles,
		user.CreatedAt, user.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *scyllaUserRepository) GetByID(ctx context.Context, id string) (*types.UserData, error) {
	var user types.UserData
	err := r.conn.Session().Query(queries.SelectUserByIDQuery, id).WithContext(ctx).Scan(
		&user.ID, &user.SessionID, &user.WalletBalance, &user.Roles,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *scyllaUserRepository) GetBySession(ctx context.Context, sessionID string) (*types.UserData, error) {
	var user types.UserData
	err := r.conn.Session().Query(queries.SelectUserBySessionQuery, sessionID).WithContext(ctx).Scan(
		&user.ID, &user.SessionID, &user.WalletBalance, &user.Roles,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *scyllaUserRepository) Update(ctx context.Context, user *types.UserData) error {
	user.UpdatedAt = time.Now().UTC()
	return r.conn.Session().Query(queries.UpdateUserQuery,
		user.WalletBalance, user.Roles, user.UpdatedAt, user.ID,
	).WithContext(ctx).Exec()
}
