package model

import "fmt"

// StaffRole описывает роль сотрудника у конкретного поставщика.
type StaffRole string

const (
	StaffRoleOwner   StaffRole = "owner"
	StaffRoleManager StaffRole = "manager"
	StaffRoleSales   StaffRole = "sales"
)

// ParseStaffRole проверяет роль сотрудника. Сравнение регистрозависимое.
func ParseStaffRole(s string) (StaffRole, error) {
	switch r := StaffRole(s); r {
	case StaffRoleOwner, StaffRoleManager, StaffRoleSales:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown staff role %q", ErrValidation, s)
}

// Authority описывает полномочия пользователя в отношении одного поставщика.
type Authority int

const (
	AuthorityNone Authority = iota
	AuthoritySales
	AuthorityManager
	AuthorityOwner
)

// CanManage сообщает, даёт ли полномочие право управлять данными поставщика.
func (a Authority) CanManage() bool {
	return a == AuthorityOwner || a == AuthorityManager
}

func (a Authority) String() string {
	switch a {
	case AuthorityOwner:
		return "owner"
	case AuthorityManager:
		return "manager"
	case AuthoritySales:
		return "sales"
	default:
		return "none"
	}
}
