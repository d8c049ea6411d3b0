package config

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; the default DB is data_dir/quire.db"},
		{Key: "db_url", Default: "", Comment: "Database URL: sqlite://path, postgres://..., redis://host:port/db or memory://; empty uses data_dir"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for `quire serve`"},

		{Key: "server.default_page_size", Default: 20, Comment: "Entries returned by list/search when no limit is given"},
		{Key: "server.max_page_size", Default: 100, Comment: "Upper bound applied to the limit query parameter"},
		{Key: "server.shutdown_timeout", Default: "10s", Comment: "Grace period for in-flight requests on shutdown"},

		{Key: "tls.domain", Default: "", Comment: "Serve HTTPS with an ACME certificate for this domain (certmagic)"},
		{Key: "tls.email", Default: "", Comment: "ACME account email"},
		{Key: "tls.storage_dir", Default: "", Comment: "ACME certificate storage; empty means $XDG_CACHE_HOME/quire/certmagic"},
		{Key: "tls.ca", Default: "", Comment: "ACME directory URL; empty means Let's Encrypt production"},
		{Key: "tls.cert_file", Default: "", Comment: "PEM certificate; used with tls.key_file instead of ACME"},
		{Key: "tls.key_file", Default: "", Comment: "PEM private key"},
		{Key: "tls.http3", Default: false, Comment: "Also serve HTTP/3 over QUIC on the same address (requires TLS)"},

		{Key: "log.level", Default: "info", Comment: "debug, info, warn or error"},
		{Key: "log.format", Default: "console", Comment: "console or json"},

		{Key: "export.page_size", Default: 200, Comment: "Batch size for list/search export paging"},
	}
}
