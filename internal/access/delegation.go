// Package access определяет полномочия пользователя у поставщика и правила доступа к сущностям.
package access

import "github.com/mmeshcher/supplyhub/internal/model"

// Delegations содержит снимок связей пользователя с поставщиками: поставщики, которыми он владеет,
// и его членства в персонале.
type Delegations struct {
	Owned []model.Supplier
	Staff []model.SupplierStaff
}

// ResolveSupplierAuthority определяет полномочия пользователя в отношении поставщика.
// Владелец по строке поставщика всегда получает AuthorityOwner, даже при наличии строк персонала.
func ResolveSupplierAuthority(userID, supplierID int64, d Delegations) model.Authority {
	for _, s := range d.Owned {
		if s.UserID == userID && s.ID == supplierID {
			return model.AuthorityOwner
		}
	}

	best := model.AuthorityNone
	for _, st := range d.Staff {
		if st.UserID != userID || st.SupplierID != supplierID {
			continue
		}
		if a := staffAuthority(st.StaffRole); a > best {
			best = a
		}
	}
	return best
}

// Роль "owner" в таблице персонала не делает пользователя владельцем: владелец определяется
// только строкой поставщика.
func staffAuthority(r model.StaffRole) model.Authority {
	switch r {
	case model.StaffRoleOwner, model.StaffRoleManager:
		return model.AuthorityManager
	case model.StaffRoleSales:
		return model.AuthoritySales
	default:
		return model.AuthorityNone
	}
}
