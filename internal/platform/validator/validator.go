// internal/platform/validator/validator.go
package validator

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Etiquetas de 1 a 63 caracteres, sin guion al inicio ni al final.
var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

// IsDomain verifica si s es un nombre de host válido (punycode incluido).
// Las IPs no cuentan como dominio.
func IsDomain(s string) bool {
	if s == "" || len(s) > 253 || net.ParseIP(s) != nil {
		return false
	}
	return domainRegex.MatchString(s)
}

// NormalizeDomain pasa a minúsculas y quita espacios, punto final y "www.".
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimSuffix(domain, ".")
	return strings.TrimPrefix(domain, "www.")
}

// RegistrableDomain retorna el eTLD+1 de un host ("news.bbc.co.uk" -> "bbc.co.uk"),
// o "" si el host no es un dominio válido.
func RegistrableDomain(host string) string {
	host = NormalizeDomain(host)
	if !IsDomain(host) {
		return ""
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return registrable
}

// SameOrganization indica si dos hosts comparten dominio registrable.
func SameOrganization(a, b string) bool {
	ra := RegistrableDomain(a)
	return ra != "" && ra == RegistrableDomain(b)
}

// IsURL acepta solo URLs http(s) absolutas con host.
func IsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// HostFromURL extrae el host en minúsculas y sin puerto.
func HostFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// NormalizeWhitespace colapsa cualquier secuencia de espacios en uno solo.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
