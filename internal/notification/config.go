package notification

// SMTPConfig holds connection parameters for the SMTP provider.
type SMTPConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"-"`
	Encryption string `json:"encryption"` // "none", "starttls", "ssl_tls"
}

// Configured reports whether enough settings are present to attempt delivery.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port > 0
}
