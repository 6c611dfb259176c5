package domain

import "time"

// UserRole разделяет покупателей и администраторов бэк-офиса.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

// User — учётная запись. Управление сессиями живёт во внешнем
// identity-провайдере; здесь хранится только API-токен для резолва личности.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      UserRole
	APIToken  string
	CreatedAt time.Time
}

// IsAdmin сообщает, есть ли у пользователя права бэк-офиса.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanNotify сообщает, достаточно ли данных профиля для отправки письма.
func (u *User) CanNotify() bool {
	return u.Email != "" && u.Name != ""
}
