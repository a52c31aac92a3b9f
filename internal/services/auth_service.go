package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/procurax/meetings/internal/models"
)

type authServiceImpl struct {
	logger        zerolog.Logger
	pgPool        *pgxpool.Pool
	jwtIssuer     string
	jwtSigningKey []byte
	jwtTokenTTL   time.Duration
}

func NewAuthService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	jwtIssuer string,
	jwtSigningKey []byte,
	jwtTokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:        logger,
		pgPool:        pgPool,
		jwtIssuer:     jwtIssuer,
		jwtSigningKey: jwtSigningKey,
		jwtTokenTTL:   jwtTokenTTL,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	hash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}

	now := time.Now()
	user := models.User{
		ID:        userUUID.String(),
		Name:      params.Name,
		Email:     params.Email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertUserQuery = `
INSERT INTO users (id, name, email, password, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Warn().
				Str("email", user.Email).
				Msg("user already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to insert user")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")

	result, err := s.issueToken(&user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return result, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user := models.User{
		Email: params.Email,
	}

	const selectUserByEmailQuery = `
SELECT id,
       name,
       password
FROM users
WHERE email = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Password,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("email", user.Email).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Warn().
			Str("email", user.Email).
			Msg("passwords do not match")
		return nil, ErrUserPasswordMismatch
	}

	result, err := s.issueToken(&user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in user")
	return result, nil
}

func (s *authServiceImpl) ParseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return s.jwtSigningKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, fmt.Errorf("failed to parse token claims")
	}
	return claims, nil
}

func (s *authServiceImpl) issueToken(user *models.User) (*AuthResult, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtTokenTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    s.jwtIssuer,
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(s.jwtSigningKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to sign token")
		return nil, err
	}

	return &AuthResult{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
