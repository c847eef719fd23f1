package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/entities"
	apperrors "biomed-inventory/pkg/errors"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userFieldsWithRole = `u.id, u.fio, u.email, u.phone, u.password_hash, u.position, u.role_id, u.is_active, u.created_at, u.updated_at,
	r.id, r.code, r.name`

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	GetUsers(ctx context.Context, limit uint64, offset uint64) ([]dto.UserDTO, uint64, error)
	GetReceiversByRoleCode(ctx context.Context, roleCode string) ([]dto.ReceiverDTO, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO, passwordHash string) (uint64, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{
		storage: storage,
		logger:  logger,
	}
}

func (r *UserRepository) scanUserWithRole(row pgx.Row) (*entities.User, error) {
	var user entities.User
	var role entities.Role

	err := row.Scan(
		&user.ID, &user.Fio, &user.Email, &user.Phone, &user.PasswordHash,
		&user.Position, &user.RoleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&role.ID, &role.Code, &role.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
	}

	user.Role = &role
	return &user, nil
}

// ReceiverRoleInTx читает код роли и активность получателя под разделяемой
// блокировкой строки пользователя. Вызывается из транзакции создания акта:
// роль могла смениться между проверкой до транзакции и коммитом.
func ReceiverRoleInTx(ctx context.Context, tx pgx.Tx, userID uint64) (string, bool, error) {
	var roleCode string
	var isActive bool
	err := tx.QueryRow(ctx, `
		SELECT r.code, u.is_active
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.id = $1
		FOR SHARE OF u`, userID,
	).Scan(&roleCode, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, apperrors.ErrUnknownReceiver
		}
		return "", false, fmt.Errorf("ошибка чтения роли получателя: %w", err)
	}
	return roleCode, isActive, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u JOIN roles r ON u.role_id = r.id WHERE u.id = $1`, userFieldsWithRole)
	return r.scanUserWithRole(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u JOIN roles r ON u.role_id = r.id WHERE u.email = $1`, userFieldsWithRole)
	return r.scanUserWithRole(r.storage.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetUsers(ctx context.Context, limit uint64, offset uint64) ([]dto.UserDTO, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}

	query := `
		SELECT u.id, u.fio, u.email, u.phone, u.position, u.is_active, u.created_at,
			r.id, r.code, r.name
		FROM users u
		JOIN roles r ON u.role_id = r.id
		ORDER BY u.fio
		LIMIT $1 OFFSET $2`

	rows, err := r.storage.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]dto.UserDTO, 0)
	for rows.Next() {
		var user dto.UserDTO
		var createdAt time.Time

		err := rows.Scan(
			&user.ID, &user.Fio, &user.Email, &user.Phone, &user.Position, &user.IsActive, &createdAt,
			&user.Role.ID, &user.Role.Code, &user.Role.Name,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования пользователя в списке: %w", err)
		}

		user.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
		users = append(users, user)
	}
	return users, total, nil
}

// GetReceiversByRoleCode возвращает активных пользователей с заданной ролью.
// Используется списком допустимых получателей акта (роль CUSTODIAN).
func (r *UserRepository) GetReceiversByRoleCode(ctx context.Context, roleCode string) ([]dto.ReceiverDTO, error) {
	query := `
		SELECT u.id, u.fio, COALESCE(u.phone, u.email)
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE r.code = $1 AND u.is_active
		ORDER BY u.fio`

	rows, err := r.storage.Query(ctx, query, roleCode)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка получателей: %w", err)
	}
	defer rows.Close()

	receivers := make([]dto.ReceiverDTO, 0)
	for rows.Next() {
		var receiver dto.ReceiverDTO
		var hint string
		if err := rows.Scan(&receiver.ID, &receiver.Fio, &hint); err != nil {
			return nil, fmt.Errorf("ошибка сканирования получателя: %w", err)
		}
		receiver.ContactHint = null.StringFrom(hint)
		receivers = append(receivers, receiver)
	}
	return receivers, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, payload dto.CreateUserDTO, passwordHash string) (uint64, error) {
	query := `
		INSERT INTO users (fio, email, phone, position, password_hash, role_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING id`

	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		payload.Fio, payload.Email, payload.Phone, payload.Position, passwordHash, payload.RoleID,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return newID, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) error {
	query := "UPDATE users SET updated_at = NOW()"
	args := []interface{}{}
	argCounter := 1

	if payload.Fio != "" {
		query += fmt.Sprintf(", fio = $%d", argCounter)
		args = append(args, payload.Fio)
		argCounter++
	}
	if payload.Phone.Valid {
		query += fmt.Sprintf(", phone = $%d", argCounter)
		args = append(args, payload.Phone)
		argCounter++
	}
	if payload.Position.Valid {
		query += fmt.Sprintf(", position = $%d", argCounter)
		args = append(args, payload.Position)
		argCounter++
	}
	if payload.RoleID != 0 {
		query += fmt.Sprintf(", role_id = $%d", argCounter)
		args = append(args, payload.RoleID)
		argCounter++
	}
	if payload.IsActive != nil {
		query += fmt.Sprintf(", is_active = $%d", argCounter)
		args = append(args, *payload.IsActive)
		argCounter++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
