package models

import "time"

type UserRole string // Роль пользователя

const (
	AdminRole    UserRole = "ADMIN"    // Администратор системы
	OwnerRole    UserRole = "OWNER"    // Заказчик, владелец тендеров
	SupplierRole UserRole = "SUPPLIER" // Поставщик, подаёт заявки
)

// User представляет модель пользователя.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Role             UserRole  `json:"role"`
	OrganizationName string    `json:"organizationName,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UserRequest представляет структуру запроса для создания пользователя.
type UserRequest struct {
	Email            string   `json:"email"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Role             UserRole `json:"role"`
	OrganizationName string   `json:"organizationName,omitempty"`
}

// DisplayName возвращает имя для отображения: организация, если задана, иначе ФИО.
func (u *User) DisplayName() string {
	if u.OrganizationName != "" {
		return u.OrganizationName
	}
	return u.FirstName + " " + u.LastName
}
