package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment identifies a gateway deployment.
type Environment struct {
	Name   string
	Server string
	Port   int
	SSL    bool
}

var (
	Development = Environment{Name: "development", Server: "localhost", Port: 3000, SSL: false}
	QA          = Environment{Name: "qa", Server: "qa-master.braintreegateway.com", Port: 443, SSL: true}
	Sandbox     = Environment{Name: "sandbox", Server: "sandbox.braintreegateway.com", Port: 443, SSL: true}
	Production  = Environment{Name: "production", Server: "www.braintreegateway.com", Port: 443, SSL: true}
)

// ParseEnvironment resolves a named environment. The development port can be
// moved with GATEWAY_PORT.
func ParseEnvironment(name string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "development":
		env := Development
		env.Port = GetEnvInt("GATEWAY_PORT", Development.Port)
		return env, nil
	case "qa":
		return QA, nil
	case "sandbox":
		return Sandbox, nil
	case "production":
		return Production, nil
	default:
		return Environment{}, fmt.Errorf("unknown environment %q", name)
	}
}

// Protocol returns "https" for SSL environments and "http" otherwise.
func (e Environment) Protocol() string {
	if e.SSL {
		return "https"
	}
	return "http"
}

// BaseURL is the scheme, host and (non-default) port of the environment.
func (e Environment) BaseURL() string {
	defaultPort := (e.SSL && e.Port == 443) || (!e.SSL && e.Port == 80)
	if e.Port == 0 || defaultPort {
		return e.Protocol() + "://" + e.Server
	}
	return e.Protocol() + "://" + e.Server + ":" + strconv.Itoa(e.Port)
}
