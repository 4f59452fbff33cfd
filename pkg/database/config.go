package database

import "time"

const Keyspace = "taskrunner"

type Config struct {
	Hosts       []string
	Keyspace    string
	Timeout     time.Duration
	Retries     int
	ConnectWait time.Duration
}

func DefaultConfig(hosts []string) *Config {
	return &Config{
		Hosts:       hosts,
		Keyspace:    Keyspace,
		Timeout:     10 * time.Second,
		Retries:     3,
		ConnectWait: 5 * time.Second,
	}
}
