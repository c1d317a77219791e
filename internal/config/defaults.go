package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Data.Directory == "" {
		cfg.Data.Directory = "."
	}
	if cfg.Data.TermFile == "" {
		cfg.Data.TermFile = "term_embeddings.jsonl"
	}
	if cfg.Data.DocumentFile == "" {
		cfg.Data.DocumentFile = "doc_embeddings.jsonl"
	}
	if cfg.Data.TopicFile == "" {
		cfg.Data.TopicFile = "topics.jsonl"
	}
	if cfg.Search.TopN == 0 {
		cfg.Search.TopN = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 200
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 256
	}
	if cfg.Cluster.KMin == 0 {
		cfg.Cluster.KMin = 2
	}
	if cfg.Cluster.KMax == 0 {
		cfg.Cluster.KMax = 15
	}
	if cfg.Cluster.Seed == 0 {
		cfg.Cluster.Seed = 42
	}
	if cfg.Cluster.Restarts == 0 {
		cfg.Cluster.Restarts = 10
	}
	if cfg.Cluster.MaxIterations == 0 {
		cfg.Cluster.MaxIterations = 300
	}
	if cfg.Cluster.Tolerance == 0 {
		cfg.Cluster.Tolerance = 1e-4
	}
	if cfg.Cluster.Workers == 0 {
		cfg.Cluster.Workers = 4
	}
	if cfg.Cluster.BestKPolicy == "" {
		cfg.Cluster.BestKPolicy = "argmax"
	}
	if cfg.Cluster.Source == "" {
		cfg.Cluster.Source = "terms"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./.semspace/cache.db"
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 400
	}
	if cfg.Export.Directory == "" {
		cfg.Export.Directory = "./exports"
	}
}
