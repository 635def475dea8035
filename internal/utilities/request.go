package utilities

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/supabase/siws/internal/conf"
)

// GetIPAddress returns the real IP address of the HTTP request. It parses the
// X-Forwarded-For header.
func GetIPAddress(r *http.Request) string {
	if r.Header != nil {
		xForwardedFor := r.Header.Get("X-Forwarded-For")
		if xForwardedFor != "" {
			ips := strings.Split(xForwardedFor, ",")
			for i := range ips {
				ips[i] = strings.TrimSpace(ips[i])
			}

			for _, ip := range ips {
				if ip != "" {
					parsed := net.ParseIP(ip)
					if parsed == nil {
						continue
					}

					return parsed.String()
				}
			}
		}
	}

	ipPort := r.RemoteAddr
	ip, _, err := net.SplitHostPort(ipPort)
	if err != nil {
		return ipPort
	}

	return ip
}

// GetBodyBytes reads the whole request body properly into a byte array.
func GetBodyBytes(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	originalBody := req.Body
	defer SafeClose(originalBody)

	buf, err := io.ReadAll(originalBody)
	if err != nil {
		return nil, err
	}

	req.Body = io.NopCloser(bytes.NewReader(buf))

	return buf, nil
}

var decimalIPAddressPattern = regexp.MustCompile("^[0-9]+$")

// IsMessageURIAllowed reports whether a signed message may name uri. The
// external URL's host and the expected domain are always allowed, loopback
// addresses are allowed for local development, and anything else must match
// the URI allow list.
func IsMessageURIAllowed(config *conf.GlobalConfiguration, uri string) bool {
	if uri == "" {
		return false
	}

	refurl, rerr := url.Parse(uri)
	if rerr != nil {
		// URI is for some reason invalid
		return false
	}

	base, berr := url.Parse(config.API.ExternalURL)
	if berr == nil && base.Hostname() != "" && base.Hostname() == refurl.Hostname() {
		return true
	}

	if config.SIWS.Domain != "" && refurl.Host == config.SIWS.Domain {
		return true
	}

	if decimalIPAddressPattern.MatchString(refurl.Hostname()) {
		// IP address in decimal form is never allowed
		return false
	} else if ip := net.ParseIP(refurl.Hostname()); ip != nil {
		return ip.IsLoopback()
	}

	for _, pattern := range config.SIWS.URIAllowListMap {
		if pattern.Match(refurl.String()) {
			return true
		}
	}

	return false
}
