package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

const profileColumns = `id, full_name, email, phone_number, address, role, active, created_at, updated_at`

// FetchProfiles lists profiles, optionally filtered to one role (e.g. all
// riders for the riders page).
func (g *Gateway) FetchProfiles(ctx context.Context, role orders.Role) ([]orders.Profile, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if role == "" {
		rows, err = g.DB.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY full_name`)
	} else {
		rows, err = g.DB.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE role=$1 ORDER BY full_name`, role)
	}
	if err != nil {
		return nil, &orders.FetchError{Op: "profiles", Err: err}
	}
	defer rows.Close()

	var out []orders.Profile
	for rows.Next() {
		var p orders.Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.PhoneNumber, &p.Address,
			&p.Role, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, &orders.FetchError{Op: "profiles", Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &orders.FetchError{Op: "profiles", Err: err}
	}
	return out, nil
}

// Credentials pairs a profile with its stored password hash; only the auth
// service sees this shape.
type Credentials struct {
	Profile      orders.Profile
	PasswordHash string
}

func (g *Gateway) FindCredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	var c Credentials
	err := g.DB.QueryRow(ctx, `
		SELECT `+profileColumns+`, password_hash
		FROM profiles WHERE lower(email)=lower($1)`, email).
		Scan(&c.Profile.ID, &c.Profile.FullName, &c.Profile.Email, &c.Profile.PhoneNumber,
			&c.Profile.Address, &c.Profile.Role, &c.Profile.Active,
			&c.Profile.CreatedAt, &c.Profile.UpdatedAt, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &orders.FetchError{Op: "credentials", Err: err}
	}
	return &c, nil
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Active      *bool  `json:"active,omitempty"`
}

func (g *Gateway) UpdateProfile(ctx context.Context, id string, in ProfileInput) error {
	if strings.TrimSpace(in.FullName) == "" {
		return &orders.ValidationError{Field: "full_name", Reason: "full name is required"}
	}
	ct, err := g.DB.Exec(ctx, `
		UPDATE profiles
		SET full_name=$2, phone_number=$3, address=$4,
		    active=COALESCE($5, active), updated_at=now()
		WHERE id=$1`,
		id, strings.TrimSpace(in.FullName), in.PhoneNumber, in.Address, in.Active)
	if err != nil {
		return &orders.WriteError{Op: "update profile", Err: err}
	}
	if ct.RowsAffected() == 0 {
		return &orders.NotFoundError{Entity: "profile", ID: id}
	}
	return nil
}

// CreateRider registers a new rider profile (the riders page's "add rider").
func (g *Gateway) CreateRider(ctx context.Context, email string, in ProfileInput) (orders.Profile, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return orders.Profile{}, &orders.ValidationError{Field: "full_name", Reason: "full name is required"}
	}
	if strings.TrimSpace(email) == "" {
		return orders.Profile{}, &orders.ValidationError{Field: "email", Reason: "email is required"}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := g.DB.Exec(ctx, `
		INSERT INTO profiles (id, full_name, email, phone_number, address, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$7)`,
		id, strings.TrimSpace(in.FullName), strings.TrimSpace(email),
		in.PhoneNumber, in.Address, orders.RoleRider, now)
	if err != nil {
		return orders.Profile{}, &orders.WriteError{Op: "create rider", Err: err}
	}
	return orders.Profile{
		ID: id, FullName: strings.TrimSpace(in.FullName), Email: strings.TrimSpace(email),
		PhoneNumber: in.PhoneNumber, Address: in.Address,
		Role: orders.RoleRider, Active: true, CreatedAt: now, UpdatedAt: now,
	}, nil
}
