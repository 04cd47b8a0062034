package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

type PrincipalKind string

const (
	PrincipalUser     PrincipalKind = "user"
	PrincipalSupplier PrincipalKind = "supplier"
)

// Principal is an authenticated identity drawn from either store.
// Exactly one of User and Supplier is set, matching Kind.
type Principal struct {
	Kind     PrincipalKind
	User     *User
	Supplier *Supplier
}

func UserPrincipal(u *User) *Principal {
	return &Principal{Kind: PrincipalUser, User: u}
}

func SupplierPrincipal(s *Supplier) *Principal {
	return &Principal{Kind: PrincipalSupplier, Supplier: s}
}

func (p *Principal) ID() uuid.UUID {
	switch p.Kind {
	case PrincipalUser:
		return p.User.ID
	case PrincipalSupplier:
		return p.Supplier.ID
	}
	return uuid.Nil
}

func (p *Principal) Credentials() *Credentials {
	switch p.Kind {
	case PrincipalUser:
		return &p.User.Credentials
	case PrincipalSupplier:
		return &p.Supplier.Credentials
	}
	return &Credentials{}
}

func (p *Principal) Email() string { return p.Credentials().Email }

func (p *Principal) Role() Role {
	switch p.Kind {
	case PrincipalUser:
		return p.User.Role
	case PrincipalSupplier:
		if p.Supplier.Role == "" {
			return RoleSupplier
		}
		return p.Supplier.Role
	}
	return ""
}

// Sanitized returns a copy with every credential secret cleared.
func (p *Principal) Sanitized() *Principal {
	switch p.Kind {
	case PrincipalUser:
		u := *p.User
		u.Credentials.clearSecrets()
		return UserPrincipal(&u)
	case PrincipalSupplier:
		s := *p.Supplier
		s.Credentials.clearSecrets()
		return SupplierPrincipal(&s)
	}
	return &Principal{}
}

// Payload is the identity carried inside a token minted for p.
func (p *Principal) Payload(typ TokenType) TokenPayload {
	return TokenPayload{
		PrincipalID: p.ID().String(),
		Email:       p.Email(),
		Role:        p.Role(),
		TokenType:   typ,
	}
}

func (p Principal) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PrincipalUser:
		return json.Marshal(p.User)
	case PrincipalSupplier:
		return json.Marshal(p.Supplier)
	}
	return []byte("null"), nil
}
