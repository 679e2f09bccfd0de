// internal/platform/config/config.go
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/errors"
	"trustlens/internal/platform/registry"
	"trustlens/internal/platform/resilience"
)

// EnvPrefix prefijo de todas las variables de entorno.
const EnvPrefix = "TRUSTLENS_"

// Valores permitidos para los campos enumerados.
var (
	Schedulers      = []string{"priority", "cost", "hybrid", "fifo"}
	RetryStrategies = []string{"linear", "exponential"}
	OutputFormats   = []string{"table", "json", "both"}
)

type Config struct {
	// Pipeline
	Workers         int           `yaml:"workers"`
	Scheduler       string        `yaml:"scheduler"`
	PipelineTimeout time.Duration `yaml:"pipeline_timeout"` // 0 = sin deadline global
	MinimumRequired int           `yaml:"minimum_required"`
	Levels          Levels        `yaml:"levels"`

	Cache   Cache   `yaml:"cache"`
	Retry   Retry   `yaml:"retry"`
	Breaker Breaker `yaml:"breaker"`
	HTTP    HTTP    `yaml:"http"`
	Output  Output  `yaml:"output"`

	LogLevel string `yaml:"log_level"`

	// Analyzers en orden de declaración. Se cargan aparte para poder
	// fusionar entradas parciales del YAML con los defaults.
	Analyzers []ports.AnalyzerConfig `yaml:"-"`
}

// Levels umbrales (inclusive) de cada nivel cualitativo.
type Levels struct {
	Excellent int `yaml:"excellent"`
	Good      int `yaml:"good"`
	Fair      int `yaml:"fair"`
}

type Cache struct {
	Enabled         bool          `yaml:"enabled"`
	MaxEntries      int           `yaml:"max_entries"`
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type Retry struct {
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
	Strategy   string        `yaml:"strategy"`
	Multiplier float64       `yaml:"multiplier"`
}

type Breaker struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
	HalfOpenProbes   int           `yaml:"half_open_probes"`
}

// HTTP configuración del cliente compartido por la pasada de mejora.
type HTTP struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type Output struct {
	Format   string `yaml:"format"`
	JSONPath string `yaml:"json_path"` // "" = stdout
	Progress bool   `yaml:"progress"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		Scheduler:       "priority",
		PipelineTimeout: 30 * time.Second,
		MinimumRequired: 2,
		Levels:          Levels{Excellent: 80, Good: 60, Fair: 40},

		Cache: Cache{
			Enabled:         true,
			MaxEntries:      1000,
			DefaultTTL:      15 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Retry: Retry{
			BaseDelay:  200 * time.Millisecond,
			MaxDelay:   5 * time.Second,
			Strategy:   "linear",
			Multiplier: 2.0,
		},
		Breaker: Breaker{
			Enabled:          true,
			FailureThreshold: 5,
			Cooldown:         60 * time.Second,
			HalfOpenProbes:   2,
		},
		HTTP: HTTP{
			Timeout:   15 * time.Second,
			UserAgent: "TrustLens/1.0",
		},
		Output: Output{
			Format:   "table",
			Progress: true,
		},
		LogLevel: "info",

		Analyzers: DefaultAnalyzers(),
	}
}

// DefaultAnalyzers configuración de los analyzers incluidos.
// factcheck viene deshabilitado porque requiere un endpoint.
func DefaultAnalyzers() []ports.AnalyzerConfig {
	return []ports.AnalyzerConfig{
		analyzer("credibility", true, 3*time.Second, 1, 0.35, 10),
		analyzer("sourcing", true, 3*time.Second, 1, 0.25, 8),
		analyzer("bias", true, 2*time.Second, 1, 0.20, 6),
		analyzer("manipulation", true, 2*time.Second, 1, 0.20, 6),
		func() ports.AnalyzerConfig {
			c := analyzer("factcheck", false, 8*time.Second, 3, 0.25, 4)
			c.RateLimit = 2
			c.CacheTTL = time.Hour
			return c
		}(),
	}
}

func analyzer(name string, enabled bool, timeout time.Duration, retries int, weight float64, priority int) ports.AnalyzerConfig {
	c := ports.DefaultAnalyzerConfig(name)
	c.Enabled = enabled
	c.Timeout = timeout
	c.MaxRetries = retries
	c.Weight = weight
	c.Priority = priority
	return c
}

// Load inicializa la configuración en capas:
// defaults -> archivo YAML -> ENV -> flags (cada capa pisa a la anterior).
// flags puede ser nil.
func Load(flags *Flags) (Config, error) {
	cfg := DefaultConfig()

	path := getenv(EnvPrefix+"CONFIG", "")
	if flags != nil && flags.ConfigPath != "" {
		path = flags.ConfigPath
	}
	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	loadFromEnv(&cfg)

	if flags != nil {
		if err := flags.apply(&cfg); err != nil {
			return cfg, err
		}
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// analyzerOverride entrada parcial del YAML: solo los campos presentes pisan al default.
type analyzerOverride struct {
	Name       string         `yaml:"name"`
	Enabled    *bool          `yaml:"enabled"`
	Timeout    *time.Duration `yaml:"timeout"`
	MaxRetries *int           `yaml:"max_retries"`
	Weight     *float64       `yaml:"weight"`
	CacheTTL   *time.Duration `yaml:"cache_ttl"`
	RateLimit  *float64       `yaml:"rate_limit"`
	Priority   *int           `yaml:"priority"`
	Options    map[string]any `yaml:"options"`
}

type fileConfig struct {
	Config    `yaml:",inline"`
	Analyzers []analyzerOverride `yaml:"analyzers"`
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(domain.ErrConfigLoadFailed, "read %s: %v", path, err)
	}
	return loadFromYAML(cfg, data)
}

func loadFromYAML(cfg *Config, data []byte) error {
	file := fileConfig{Config: *cfg}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(domain.ErrConfigLoadFailed, "parse yaml: %v", err)
	}

	analyzers := cfg.Analyzers
	*cfg = file.Config
	cfg.Analyzers = mergeAnalyzers(analyzers, file.Analyzers)
	return nil
}

// mergeAnalyzers aplica las entradas del archivo sobre los defaults.
// Un nombre repetido en el archivo se conserva duplicado para que el
// registro de configuración lo rechace.
func mergeAnalyzers(base []ports.AnalyzerConfig, overrides []analyzerOverride) []ports.AnalyzerConfig {
	out := make([]ports.AnalyzerConfig, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base))
	for _, c := range base {
		index[c.Name] = len(out)
		out = append(out, c)
	}

	seen := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		name := strings.ToLower(strings.TrimSpace(o.Name))
		i, known := index[name]
		if !known || seen[name] {
			c := ports.DefaultAnalyzerConfig(name)
			o.applyTo(&c)
			index[name] = len(out)
			out = append(out, c)
			seen[name] = true
			continue
		}
		seen[name] = true
		o.applyTo(&out[i])
	}
	return out
}

func (o analyzerOverride) applyTo(c *ports.AnalyzerConfig) {
	if o.Enabled != nil {
		c.Enabled = *o.Enabled
	}
	if o.Timeout != nil {
		c.Timeout = *o.Timeout
	}
	if o.MaxRetries != nil {
		c.MaxRetries = *o.MaxRetries
	}
	if o.Weight != nil {
		c.Weight = *o.Weight
	}
	if o.CacheTTL != nil {
		c.CacheTTL = *o.CacheTTL
	}
	if o.RateLimit != nil {
		c.RateLimit = *o.RateLimit
	}
	if o.Priority != nil {
		c.Priority = *o.Priority
	}
	if len(o.Options) > 0 {
		if c.Options == nil {
			c.Options = make(map[string]any, len(o.Options))
		}
		for k, v := range o.Options {
			c.Options[k] = v
		}
	}
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv(EnvPrefix+"WORKERS", ""); v != "" {
		cfg.Workers = parseInt(v, cfg.Workers)
	}
	if v := getenv(EnvPrefix+"SCHEDULER", ""); v != "" {
		cfg.Scheduler = v
	}
	if v := getenv(EnvPrefix+"PIPELINE_TIMEOUT", ""); v != "" {
		cfg.PipelineTimeout = parseDuration(v, cfg.PipelineTimeout)
	}
	if v := getenv(EnvPrefix+"MINIMUM_REQUIRED", ""); v != "" {
		cfg.MinimumRequired = parseInt(v, cfg.MinimumRequired)
	}
	if v := getenv(EnvPrefix+"LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}

	// Cache
	if v := getenv(EnvPrefix+"CACHE_ENABLED", ""); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := getenv(EnvPrefix+"CACHE_MAX_ENTRIES", ""); v != "" {
		cfg.Cache.MaxEntries = parseInt(v, cfg.Cache.MaxEntries)
	}
	if v := getenv(EnvPrefix+"CACHE_TTL", ""); v != "" {
		cfg.Cache.DefaultTTL = parseDuration(v, cfg.Cache.DefaultTTL)
	}

	// Retry
	if v := getenv(EnvPrefix+"RETRY_BASE_DELAY", ""); v != "" {
		cfg.Retry.BaseDelay = parseDuration(v, cfg.Retry.BaseDelay)
	}
	if v := getenv(EnvPrefix+"RETRY_STRATEGY", ""); v != "" {
		cfg.Retry.Strategy = v
	}

	// Breaker
	if v := getenv(EnvPrefix+"BREAKER_ENABLED", ""); v != "" {
		cfg.Breaker.Enabled = parseBool(v)
	}
	if v := getenv(EnvPrefix+"BREAKER_THRESHOLD", ""); v != "" {
		cfg.Breaker.FailureThreshold = parseInt(v, cfg.Breaker.FailureThreshold)
	}

	// Output
	if v := getenv(EnvPrefix+"OUTPUT_FORMAT", ""); v != "" {
		cfg.Output.Format = v
	}

	// Analyzers
	// Formato: TRUSTLENS_ANALYZERS_BIAS_ENABLED=false
	//          TRUSTLENS_ANALYZERS_BIAS_WEIGHT=0.3
	//          TRUSTLENS_ANALYZERS_FACTCHECK_ENDPOINT=https://...
	for i := range cfg.Analyzers {
		a := &cfg.Analyzers[i]
		prefix := EnvPrefix + "ANALYZERS_" + envName(a.Name) + "_"

		if v := getenv(prefix+"ENABLED", ""); v != "" {
			a.Enabled = parseBool(v)
		}
		if v := getenv(prefix+"TIMEOUT", ""); v != "" {
			a.Timeout = parseDuration(v, a.Timeout)
		}
		if v := getenv(prefix+"RETRIES", ""); v != "" {
			a.MaxRetries = parseInt(v, a.MaxRetries)
		}
		if v := getenv(prefix+"WEIGHT", ""); v != "" {
			a.Weight = parseFloat(v, a.Weight)
		}
		if v := getenv(prefix+"PRIORITY", ""); v != "" {
			a.Priority = parseInt(v, a.Priority)
		}
		if v := getenv(prefix+"RATE_LIMIT", ""); v != "" {
			a.RateLimit = parseFloat(v, a.RateLimit)
		}
		if v := getenv(prefix+"ENDPOINT", ""); v != "" {
			if a.Options == nil {
				a.Options = make(map[string]any)
			}
			a.Options["endpoint"] = v
		}
	}
}

// Flags valores de línea de comandos. Solo se aplican los flags que el
// usuario cambió explícitamente, para no pisar el archivo ni el entorno.
type Flags struct {
	ConfigPath      string
	Workers         int
	Scheduler       string
	PipelineTimeout time.Duration
	MinimumRequired int
	Only            []string
	Disable         []string
	Format          string
	JSONPath        string
	NoProgress      bool
	NoCache         bool
	LogLevel        string

	fs *pflag.FlagSet
}

// BindFlags registra los flags en fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	d := DefaultConfig()
	f := &Flags{fs: fs}

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Archivo de configuración YAML (o "+EnvPrefix+"CONFIG)")
	fs.IntVarP(&f.Workers, "workers", "w", d.Workers, "Analyzers ejecutados en paralelo")
	fs.StringVar(&f.Scheduler, "scheduler", d.Scheduler, "Orden de ejecución: "+strings.Join(Schedulers, "|"))
	fs.DurationVarP(&f.PipelineTimeout, "timeout", "T", d.PipelineTimeout, "Deadline global del pipeline (0 = sin deadline)")
	fs.IntVar(&f.MinimumRequired, "min-analyzers", d.MinimumRequired, "Analyzers exitosos necesarios para un resultado suficiente")
	fs.StringSliceVar(&f.Only, "only", nil, "Ejecutar solo estos analyzers (lista separada por comas)")
	fs.StringSliceVar(&f.Disable, "disable", nil, "Deshabilitar estos analyzers")
	fs.StringVarP(&f.Format, "format", "f", d.Output.Format, "Salida: "+strings.Join(OutputFormats, "|"))
	fs.StringVarP(&f.JSONPath, "json-out", "o", "", "Escribir el JSON en este archivo en lugar de stdout")
	fs.BoolVarP(&f.NoProgress, "quiet", "q", false, "Desactivar el progreso en terminal")
	fs.BoolVar(&f.NoCache, "no-cache", false, "Desactivar la cache de resultados")
	fs.StringVar(&f.LogLevel, "log-level", d.LogLevel, "Nivel de log: debug|info|warn|error")

	return f
}

func (f *Flags) changed(name string) bool {
	if f.fs == nil {
		return false
	}
	flag := f.fs.Lookup(name)
	return flag != nil && flag.Changed
}

func (f *Flags) apply(cfg *Config) error {
	if f.changed("workers") {
		cfg.Workers = f.Workers
	}
	if f.changed("scheduler") {
		cfg.Scheduler = f.Scheduler
	}
	if f.changed("timeout") {
		cfg.PipelineTimeout = f.PipelineTimeout
	}
	if f.changed("min-analyzers") {
		cfg.MinimumRequired = f.MinimumRequired
	}
	if f.changed("format") {
		cfg.Output.Format = f.Format
	}
	if f.changed("json-out") {
		cfg.Output.JSONPath = f.JSONPath
	}
	if f.NoProgress {
		cfg.Output.Progress = false
	}
	if f.NoCache {
		cfg.Cache.Enabled = false
	}
	if f.changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}

	if len(f.Only) > 0 {
		if err := cfg.selectOnly(f.Only); err != nil {
			return err
		}
	}
	if len(f.Disable) > 0 {
		return cfg.disable(f.Disable)
	}
	return nil
}

// selectOnly habilita exactamente los analyzers indicados.
func (c *Config) selectOnly(names []string) error {
	wanted, err := c.knownNames(names)
	if err != nil {
		return err
	}
	for i := range c.Analyzers {
		c.Analyzers[i].Enabled = wanted[c.Analyzers[i].Name]
	}
	return nil
}

// disable deshabilita los analyzers indicados.
func (c *Config) disable(names []string) error {
	unwanted, err := c.knownNames(names)
	if err != nil {
		return err
	}
	for i := range c.Analyzers {
		if unwanted[c.Analyzers[i].Name] {
			c.Analyzers[i].Enabled = false
		}
	}
	return nil
}

// knownNames normaliza names y falla con ErrUnknownAnalyzer si alguno no
// está declarado.
func (c *Config) knownNames(names []string) (map[string]bool, error) {
	declared := make(map[string]bool, len(c.Analyzers))
	for _, a := range c.Analyzers {
		declared[a.Name] = true
	}

	set := make(map[string]bool, len(names))
	var unknown []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if !declared[n] {
			unknown = append(unknown, n)
		}
		set[n] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAnalyzer, strings.Join(unknown, ", "))
	}
	return set, nil
}

func normalize(c *Config) {
	d := DefaultConfig()

	if c.Workers < 1 {
		c.Workers = 1
	}
	c.Scheduler = strings.ToLower(strings.TrimSpace(c.Scheduler))
	if c.Scheduler == "" {
		c.Scheduler = d.Scheduler
	}
	if c.PipelineTimeout < 0 {
		c.PipelineTimeout = 0
	}
	if c.MinimumRequired < 0 {
		c.MinimumRequired = 0
	}

	if c.Cache.MaxEntries < 1 {
		c.Cache.MaxEntries = d.Cache.MaxEntries
	}
	if c.Cache.DefaultTTL < 0 {
		c.Cache.DefaultTTL = 0
	}
	if c.Cache.CleanupInterval <= 0 {
		c.Cache.CleanupInterval = d.Cache.CleanupInterval
	}

	if c.Retry.BaseDelay < 0 {
		c.Retry.BaseDelay = d.Retry.BaseDelay
	}
	if c.Retry.MaxDelay < 0 {
		c.Retry.MaxDelay = 0
	}
	c.Retry.Strategy = strings.ToLower(strings.TrimSpace(c.Retry.Strategy))
	if c.Retry.Strategy == "" {
		c.Retry.Strategy = d.Retry.Strategy
	}
	if c.Retry.Multiplier <= 0 {
		c.Retry.Multiplier = d.Retry.Multiplier
	}

	if c.Breaker.FailureThreshold < 1 {
		c.Breaker.FailureThreshold = d.Breaker.FailureThreshold
	}
	if c.Breaker.Cooldown <= 0 {
		c.Breaker.Cooldown = d.Breaker.Cooldown
	}
	if c.Breaker.HalfOpenProbes < 1 {
		c.Breaker.HalfOpenProbes = 1
	}

	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = d.HTTP.Timeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = d.HTTP.UserAgent
	}

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	for i := range c.Analyzers {
		c.Analyzers[i].Name = strings.ToLower(strings.TrimSpace(c.Analyzers[i].Name))
	}
}

// Validate verifica los valores que normalize no puede corregir.
// Los errores de cada analyzer se reportan juntos.
func (c Config) Validate() error {
	var errs []error

	if err := registry.ValidateEnum("scheduler", c.Scheduler, Schedulers); err != nil {
		errs = append(errs, err)
	}
	if err := registry.ValidateEnum("retry.strategy", c.Retry.Strategy, RetryStrategies); err != nil {
		errs = append(errs, err)
	}
	if err := registry.ValidateEnum("output.format", c.Output.Format, OutputFormats); err != nil {
		errs = append(errs, err)
	}
	if l := c.Levels; !(l.Excellent <= 100 && l.Excellent > l.Good && l.Good > l.Fair && l.Fair >= 0) {
		errs = append(errs, fmt.Errorf("levels must satisfy 100 >= excellent > good > fair >= 0, got %d/%d/%d",
			l.Excellent, l.Good, l.Fair))
	}

	if c.Retry.Multiplier <= 1 {
		errs = append(errs, fmt.Errorf("retry.multiplier must be greater than 1, got %g", c.Retry.Multiplier))
	} else if err := c.RetryConfig().Validate(c.maxAttempts()); err != nil {
		errs = append(errs, err)
	}

	for _, a := range c.Analyzers {
		if a.Weight < 0 {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrNegativeWeight, a.Name))
		}
		if a.MaxRetries < 0 || a.Timeout < 0 {
			errs = append(errs, fmt.Errorf("%w: %s has negative retries or timeout", domain.ErrInvalidConfig, a.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// RetryConfig traduce la sección retry a la configuración del RetryPolicy.
func (c Config) RetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		BaseDelay:  c.Retry.BaseDelay,
		MaxDelay:   c.Retry.MaxDelay,
		Strategy:   resilience.BackoffStrategy(c.Retry.Strategy),
		Multiplier: c.Retry.Multiplier,
	}
}

func (c Config) maxAttempts() int {
	most := 1
	for _, a := range c.Analyzers {
		if a.Enabled && a.MaxRetries > most {
			most = a.MaxRetries
		}
	}
	return most
}

// EnabledAnalyzers nombres de los analyzers habilitados, en orden de declaración.
func (c Config) EnabledAnalyzers() []string {
	var names []string
	for _, a := range c.Analyzers {
		if a.Enabled {
			names = append(names, a.Name)
		}
	}
	return names
}

// ToYAML serializa la configuración efectiva (útil para `trustlens config`).
func (c Config) ToYAML() (string, error) {
	file := struct {
		Config    `yaml:",inline"`
		Analyzers []ports.AnalyzerConfig `yaml:"analyzers"`
	}{Config: c, Analyzers: c.Analyzers}

	data, err := yaml.Marshal(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helpers

func envName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// parseDuration acepta "1500ms", "2s" o un entero en segundos.
func parseDuration(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
