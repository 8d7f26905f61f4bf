// Package config loads env-tagged configuration structs with per-type
// caching. Every component declares its own Config struct (pg.Config,
// subscription.PaddleConfig, ...) and the service wires them at startup:
//
//	var dbCfg pg.Config
//	config.MustLoad(&dbCfg)
//
// A .env file in the working directory is honored once, which keeps local
// development and production parity: same tags, different sources.
package config
