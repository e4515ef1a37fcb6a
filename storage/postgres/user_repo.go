package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/storage"
)

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	var u models.User
	var hash string
	err := r.db.QueryRow(ctx, `
		SELECT id, username, full_name, role, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		r.log.Error("failed to get user", logger.String("username", username), logger.Error(err))
		return nil, "", err
	}
	return &u, hash, nil
}

func (r *userRepo) Create(ctx context.Context, username, fullName, role, passwordHash string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, full_name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, full_name, role, created_at
	`, username, fullName, role, passwordHash).Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.CreatedAt)
	if err != nil {
		r.log.Error("failed to create user", logger.String("username", username), logger.Error(err))
		return nil, err
	}
	return &u, nil
}
