package config

import "os"

func IsDebug() bool {
	return os.Getenv("KONTEXT_DEBUG") == "true"
}
