package proxy

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

type Config struct {
	URL      string
	Username string
	Password string
	Protocol string
	Host     string
}

// ParseLine accepts [scheme://][user:pass@]host:port. Lines without a scheme
// are taken as http.
func ParseLine(line string) (*Config, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty proxy line")
	}

	proxy := &Config{Protocol: "http"}
	if scheme, rest, found := strings.Cut(line, "://"); found {
		proxy.Protocol = strings.ToLower(scheme)
		line = rest
	}

	if proxy.Protocol != "http" && proxy.Protocol != "https" && proxy.Protocol != "socks5" {
		return nil, fmt.Errorf("unsupported proxy protocol: %s", proxy.Protocol)
	}

	if auth, host, found := strings.Cut(line, "@"); found {
		user, pass, ok := strings.Cut(auth, ":")
		if !ok || user == "" {
			return nil, fmt.Errorf("invalid proxy credentials format")
		}
		proxy.Username = user
		proxy.Password = pass
		line = host
	}

	if _, port, found := strings.Cut(line, ":"); !found || port == "" || line == "" {
		return nil, fmt.Errorf("proxy address must be host:port")
	}
	proxy.Host = line

	if proxy.Username != "" {
		proxy.URL = fmt.Sprintf("%s://%s:%s@%s", proxy.Protocol, proxy.Username, proxy.Password, proxy.Host)
	} else {
		proxy.URL = fmt.Sprintf("%s://%s", proxy.Protocol, proxy.Host)
	}

	return proxy, nil
}

// ReadFile returns the proxy URLs found in path, skipping invalid lines.
func ReadFile(path string, logger *zap.Logger) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var proxies []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		proxy, err := ParseLine(line)
		if err != nil {
			logger.Warn("Skipping invalid proxy line", zap.String("line", line), zap.Error(err))
			continue
		}
		proxies = append(proxies, proxy.URL)
	}

	return proxies, scanner.Err()
}

// Distributor assigns proxies to sessions round-robin, so each session keeps
// one stable exit address.
type Distributor struct {
	sessions []string
	proxies  []string
	logger   *zap.Logger
}

func NewDistributor(sessions, proxies []string, logger *zap.Logger) *Distributor {
	return &Distributor{
		sessions: sessions,
		proxies:  proxies,
		logger:   logger,
	}
}

func (d *Distributor) Validate() error {
	if len(d.sessions) == 0 || len(d.proxies) == 0 {
		return fmt.Errorf("no sessions or proxies found")
	}
	if len(d.sessions) > len(d.proxies) {
		d.logger.Warn("Fewer proxies than sessions, some proxies will be shared",
			zap.Int("sessions", len(d.sessions)),
			zap.Int("proxies", len(d.proxies)))
	}
	return nil
}

func (d *Distributor) Distribute() map[string]string {
	distribution := make(map[string]string, len(d.sessions))
	if len(d.proxies) == 0 {
		return distribution
	}

	for i, session := range d.sessions {
		distribution[session] = d.proxies[i%len(d.proxies)]
		d.logger.Debug("Assigned proxy to session",
			zap.String("session", session),
			zap.Int("proxyIndex", i%len(d.proxies)))
	}
	return distribution
}
