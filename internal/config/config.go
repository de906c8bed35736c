package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env             string // application environment (e.g. "dev", "prod")
    Port            string // HTTP port to listen on
    BaseURL         string // external base URL used when building reset links
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    SecretKey       string // secret used to sign password-reset tokens
    BcryptCost      int    // bcrypt cost for password hashing
    ResetTTLMin     int    // reset token time-to-live in minutes
    SessionTTLHours int    // session lifetime in hours for regular logins
    RememberTTLDays int    // session lifetime in days when "remember me" is set
    SMTPHost        string // SMTP relay host
    SMTPPort        int    // SMTP relay port
    SMTPUser        string // SMTP username (empty disables auth)
    SMTPPass        string // SMTP password
    MailFrom        string // sender address on outgoing mail
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Values with sane
// defaults use getenv() instead.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),      // environment (dev/test/prod)
        Port:            must("APP_PORT"),     // port to bind the HTTP server
        BaseURL:         getenv("BASE_URL", "http://localhost:8080"),
        DBUser:          must("DB_USER"),      // database user
        DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:          must("DB_HOST"),      // database host
        DBPort:          must("DB_PORT"),      // database port
        DBName:          must("DB_NAME"),      // database name
        SecretKey:       must("SECRET_KEY"),   // secret for signing reset tokens
        BcryptCost:      mustInt("BCRYPT_COST"),
        ResetTTLMin:     atoiDefault("RESET_TOKEN_TTL_MIN", 30),
        SessionTTLHours: atoiDefault("SESSION_TTL_HOURS", 12),
        RememberTTLDays: atoiDefault("REMEMBER_TTL_DAYS", 30),
        SMTPHost:        getenv("SMTP_HOST", "localhost"),
        SMTPPort:        atoiDefault("SMTP_PORT", 25),
        SMTPUser:        os.Getenv("SMTP_USER"),
        SMTPPass:        os.Getenv("SMTP_PASS"),
        MailFrom:        getenv("MAIL_FROM", "noreply@localhost"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// getenv returns the variable's value or a default when unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// atoiDefault parses an optional integer variable, falling back to def when
// the variable is unset.  A present but malformed value is a fatal error.
func atoiDefault(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
