package models

// Роли, которым разрешены админские операции.
const (
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

// Principal — аутентифицированный вызывающий.
// Передаётся явно в каждую админскую операцию.
type Principal struct {
	UserID string
	Role   string
}

// IsAdmin сообщает, может ли субъект выполнять админские действия.
func (p Principal) IsAdmin() bool {
	return p.UserID != "" && (p.Role == RoleAdmin || p.Role == RoleModerator)
}
