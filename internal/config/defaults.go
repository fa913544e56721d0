package config

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		IndexPath: "~/.local/share/dupesweep/index.db",
		Scan: ScanConfig{
			ExcludeFolders: []string{
				"node_modules",
				".git",
				"__pycache__",
				".venv",
			},
			FileTypes:      []string{},
			MinFileSize:    "",
			ScanSubfolders: true,
			IncludeHidden:  false,
			IncludeDirs:    false,
			FlushEvery:     500,
		},
		Output: OutputConfig{
			SortBy:    "size",
			Reverse:   false,
			GroupSort: "group_size",
		},
		DryRun:  false,
		Verbose: false,
	}
}
