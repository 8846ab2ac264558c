package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Required variables are
// enforced by must() and missing values cause the program to exit
// with a fatal log message; everything else has a sensible default.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	BcryptCost     int    // bcrypt cost for password hashing
	InvoiceDueDays int    // days a tenant has to pay a freshly created invoice

	MidtransServerKey string // gateway server key (basic auth user)
	MidtransBaseURL   string // gateway API base URL
	FrontendURL       string // client app URL, used for payment finish redirects

	SMTPHost string // SMTP server host; empty disables outgoing email
	SMTPPort string // SMTP server port
	SMTPUser string // SMTP username
	SMTPPass string // SMTP password
	MailFrom string // From address on notification emails
}

// Load reads configuration values from environment variables and
// returns a Config.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		InvoiceDueDays: envInt("INVOICE_DUE_DAYS", 1),

		MidtransServerKey: must("MIDTRANS_SERVER_KEY"),
		MidtransBaseURL:   envStr("MIDTRANS_BASE_URL", "https://api.sandbox.midtrans.com"),
		FrontendURL:       envStr("FRONTEND_URL", "http://localhost:5173"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envStr("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: envStr("EMAIL_FROM", "no-reply@kostly.local"),
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
