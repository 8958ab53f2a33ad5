package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var portCmd = flag.Int("port", 3000, "HTTP server port")

const (
	DefaultDataDirectory = "data"
	DefaultBlockSize     = 4096
	DefaultLogLevel      = "info"
)

type Config struct {
	ServerPort        int
	DataDirectory     string
	WalDirectory      string
	BlockSize         int
	LogLevel          string
	TxnEventsEndpoint string
	InstanceId        string
}

func LoadConfig() Config {
	godotenv.Load(".env")
	dataDir := getEnv("DATA_DIRECTORY", DefaultDataDirectory)
	return Config{
		ServerPort:        *portCmd,
		DataDirectory:     dataDir,
		WalDirectory:      getEnv("WAL_DIRECTORY", dataDir),
		BlockSize:         getEnvInt("BLOCK_SIZE", DefaultBlockSize),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		TxnEventsEndpoint: os.Getenv("TXN_EVENTS_ENDPOINT"),
		InstanceId:        getEnv("INSTANCE_ID", uuid.NewString()),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
