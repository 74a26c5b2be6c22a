package config

// YAMLConfig mirrors the batch file on disk.
type YAMLConfig struct {
	HTTP        YAMLHTTP          `yaml:"http"`
	Concurrency int               `yaml:"concurrency"`
	Vars        map[string]string `yaml:"vars"`
	Items       []YAMLItem        `yaml:"items"`
}

type YAMLHTTP struct {
	Timeout           string  `yaml:"timeout"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes"`
	UserAgent         string  `yaml:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type YAMLItem struct {
	Key    string `yaml:"key"`
	URL    string `yaml:"url"`
	Debug  []int  `yaml:"debug"`
	Select string `yaml:"select"`
}
