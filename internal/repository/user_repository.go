package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/doctrack-api/internal/models"
)

const userColumns = `u.id, u.username, u.full_name, u.designation, u.email, u.active, u.is_superuser,
       u.is_section_head, u.section_id, s.name AS section_name, u.sub_section_id, u.created_at, u.updated_at`

// UserRepository reads the staff directory. Users are managed elsewhere.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user together with its role assignments.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
	FROM users u LEFT JOIN sections s ON s.id = u.section_id
	WHERE u.id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}

	const rolesQuery = `SELECT user_id, role_name, active FROM user_roles WHERE user_id = $1 ORDER BY role_name`
	var roles []models.RoleAssignment
	if err := r.db.SelectContext(ctx, &roles, rolesQuery, id); err != nil {
		return nil, fmt.Errorf("load roles for %s: %w", id, err)
	}
	user.Roles = roles
	return &user, nil
}

// ListActiveDirectory returns every active user with roles attached, ordered by section then name.
func (r *UserRepository) ListActiveDirectory(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + `
	FROM users u LEFT JOIN sections s ON s.id = u.section_id
	WHERE u.active = TRUE
	ORDER BY s.name NULLS LAST, u.full_name`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	const rolesQuery = `SELECT ur.user_id, ur.role_name, ur.active
	FROM user_roles ur JOIN users u ON u.id = ur.user_id
	WHERE u.active = TRUE`
	var roles []models.RoleAssignment
	if err := r.db.SelectContext(ctx, &roles, rolesQuery); err != nil {
		return nil, fmt.Errorf("list active user roles: %w", err)
	}
	byUser := make(map[string][]models.RoleAssignment, len(users))
	for _, role := range roles {
		byUser[role.UserID] = append(byUser[role.UserID], role)
	}
	for i := range users {
		users[i].Roles = byUser[users[i].ID]
	}
	return users, nil
}

// ActiveIDs returns the subset of ids that still belong to active accounts.
func (r *UserRepository) ActiveIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	const query = `SELECT id FROM users WHERE active = TRUE AND id = ANY($1)`
	var active []string
	if err := r.db.SelectContext(ctx, &active, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("verify active users: %w", err)
	}
	return active, nil
}

// ListSections returns all sections ordered by name.
func (r *UserRepository) ListSections(ctx context.Context) ([]models.Section, error) {
	const query = `SELECT id, name, code FROM sections ORDER BY name`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}
