package sqldriver

// Rebind exposes rebind to the external test package.
func (d *Driver) Rebind(query string) string {
	return d.rebind(query)
}
