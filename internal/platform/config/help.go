// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

// Examples texto de ejemplos para la ayuda del comando analyze.
const Examples = `  Analyze a plain-text article:
    trustlens analyze article.txt --domain example.com --author "Ana Ortiz"

  Analyze an HTML page, only two analyzers, JSON output:
    trustlens analyze page.html --html --url https://news.example.com/story --only credibility,sourcing -f json

  Read from stdin with a tighter deadline:
    cat transcript.txt | trustlens analyze - --kind transcript -T 10s

  Enable the remote fact-checker through the environment:
    TRUSTLENS_ANALYZERS_FACTCHECK_ENABLED=true \
    TRUSTLENS_ANALYZERS_FACTCHECK_ENDPOINT=https://factcheck.example.org/v1/check \
    trustlens analyze article.txt`

// EnvHelp resume las variables de entorno reconocidas.
const EnvHelp = `Environment variables (flags override them, they override the YAML file):
  TRUSTLENS_CONFIG                     YAML configuration file
  TRUSTLENS_WORKERS                    Parallel analyzers
  TRUSTLENS_SCHEDULER                  priority|cost|hybrid|fifo
  TRUSTLENS_PIPELINE_TIMEOUT           Global deadline (e.g. 30s)
  TRUSTLENS_MINIMUM_REQUIRED           Successful analyzers for a sufficient result
  TRUSTLENS_CACHE_ENABLED              Result cache on/off
  TRUSTLENS_CACHE_TTL                  Default cache TTL
  TRUSTLENS_RETRY_BASE_DELAY           Base retry delay
  TRUSTLENS_RETRY_STRATEGY             linear|exponential
  TRUSTLENS_BREAKER_ENABLED            Circuit breaker on/off
  TRUSTLENS_LOG_LEVEL                  debug|info|warn|error
  TRUSTLENS_OUTPUT_FORMAT              table|json|both

  Per analyzer (replace BIAS with the analyzer name):
  TRUSTLENS_ANALYZERS_BIAS_ENABLED=false
  TRUSTLENS_ANALYZERS_BIAS_WEIGHT=0.3
  TRUSTLENS_ANALYZERS_BIAS_TIMEOUT=2s
  TRUSTLENS_ANALYZERS_BIAS_RETRIES=2`

// PrintVersion escribe la información de versión.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "TrustLens %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", getGoVersion())
}

func getGoVersion() string {
	return runtime.Version()
}
