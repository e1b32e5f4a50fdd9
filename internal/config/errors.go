package config

import "errors"

// ErrLoadConfig wraps failures reading the config file, the dotenv file or
// the TODOS_* environment. ErrInvalidConfig marks values that were read
// but cannot start the server, such as an empty addr or unknown db_driver.
var (
	ErrLoadConfig    = errors.New("load todos config")
	ErrInvalidConfig = errors.New("invalid todos config")
)
