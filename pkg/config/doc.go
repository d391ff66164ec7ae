// Package config loads typed configuration structs from environment
// variables using caarlos0/env struct tags, with optional .env bootstrap via
// godotenv.
//
// Each configuration type is parsed once per process and cached, so packages
// can call config.Load for their own Config struct without coordinating at
// startup:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
package config
