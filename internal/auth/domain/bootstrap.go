package domain

// BootstrapData describes the admin account created at first start.
type BootstrapData struct {
	AdminUsername string
	AdminPassword string
}

// Enabled reports whether both fields were provided.
func (b BootstrapData) Enabled() bool {
	return b.AdminUsername != "" && b.AdminPassword != ""
}
