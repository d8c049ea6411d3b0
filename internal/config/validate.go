package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CheckConfigValidity reports every problem found in v at once.
func CheckConfigValidity(v *viper.Viper) error {
	var problems []string
	add := func(s string) { problems = append(problems, s) }

	if strings.TrimSpace(v.GetString("data_dir")) == "" && strings.TrimSpace(v.GetString("db_url")) == "" {
		add("data_dir is required when db_url is empty")
	}
	if u := strings.TrimSpace(v.GetString("db_url")); u != "" && strings.Contains(u, "://") {
		parsed, err := url.Parse(u)
		if err != nil {
			add("db_url is not a valid url")
		} else {
			switch parsed.Scheme {
			case "sqlite", "sqlite3", "postgres", "postgresql", "redis", "rediss", "memory":
			default:
				add("db_url scheme " + parsed.Scheme + " is not supported")
			}
		}
	}

	for _, key := range []string{"server.default_page_size", "server.max_page_size", "export.page_size"} {
		if v.GetInt(key) <= 0 {
			add(key + " must be greater than 0")
		}
	}
	if def, max := v.GetInt("server.default_page_size"), v.GetInt("server.max_page_size"); def > 0 && max > 0 && def > max {
		add("server.default_page_size must not exceed server.max_page_size")
	}
	if s := v.GetString("server.shutdown_timeout"); s != "" {
		if d, err := time.ParseDuration(s); err != nil || d < 0 {
			add("server.shutdown_timeout must be a duration like 10s")
		}
	}

	cert, key := v.GetString("tls.cert_file"), v.GetString("tls.key_file")
	if (cert == "") != (key == "") {
		add("tls.cert_file and tls.key_file must be set together")
	}
	if v.GetString("tls.domain") != "" && cert != "" {
		add("tls.domain and tls.cert_file are mutually exclusive")
	}
	if v.GetBool("tls.http3") && v.GetString("tls.domain") == "" && cert == "" {
		add("tls.http3 requires tls.domain or tls.cert_file")
	}

	switch strings.ToLower(v.GetString("log.level")) {
	case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		add("log.level must be one of debug, info, warn, error")
	}
	switch strings.ToLower(v.GetString("log.format")) {
	case "", "console", "json":
	default:
		add("log.format must be console or json")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid config:\n  - " + strings.Join(problems, "\n  - "))
}
