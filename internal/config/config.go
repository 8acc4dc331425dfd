package config

import (
	"time" // Durations

	"github.com/joho/godotenv"             // For loading .env files
	"github.com/kelseyhightower/envconfig" // For typed environment parsing
)

// Config holds the application configuration
type Config struct {
	AppPort       string        `envconfig:"APP_PORT" default:"8080"`                          // Application port
	DBUser        string        `envconfig:"DB_USER"`                                          // Database user
	DBPassword    string        `envconfig:"DB_PASSWORD"`                                      // Database password
	DBHost        string        `envconfig:"DB_HOST" default:"127.0.0.1"`                      // Database host
	DBPort        string        `envconfig:"DB_PORT" default:"3306"`                           // Database port
	DBName        string        `envconfig:"DB_NAME"`                                          // Database name
	JWTSecret     string        `envconfig:"JWT_SECRET"`                                       // Identity provider signing secret, required by the server
	RedisAddr     string        `envconfig:"REDIS_ADDR"`                                       // Redis address, empty for in-process locks
	RedisPass     string        `envconfig:"REDIS_PASS"`                                       // Redis password
	RedisDB       int           `envconfig:"REDIS_DB"`                                         // Redis database number
	IsProd        bool          `envconfig:"IS_PROD"`                                          // Is production environment
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`                         // Logrus level
	BcryptCost    int           `envconfig:"BCRYPT_COST" default:"10"`                         // Password hash work factor
	LockTTL       time.Duration `envconfig:"LOCK_TTL" default:"5s"`                            // Expiry of Redis locks
	LockWait      time.Duration `envconfig:"LOCK_WAIT" default:"3s"`                           // Max wait for a busy lock
	EmployeeRoles []string      `envconfig:"EMPLOYEE_ROLES" default:"employee,manager,admin"` // Roles assignable under /employees
	UserRoles     []string      `envconfig:"USER_ROLES" default:"member,manager,admin"`       // Roles assignable under /users
	ManageRoles   []string      `envconfig:"MANAGE_ROLES" default:"admin,manager"`            // Roles allowed to manage accounts
}

// LoadConfig loads configuration from the environment and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=true&clientFoundRows=true"
}
