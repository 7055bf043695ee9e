package repository

import "context"

// Claves de configuración persistidas en la sesión.
const (
	SettingAdminPasswordHash = "admin_password_hash"
)

// SettingsRepository clave/valor de la sesión (hash de la contraseña de administrador).
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
