// Package consul registers the passport service with HashiCorp Consul so
// gateways can discover it. Registration is optional.
package consul

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// Registration describes how the service announces itself.
type Registration struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string

	// HealthURL is polled by Consul to mark the instance healthy.
	HealthURL     string
	CheckInterval string
	CheckTimeout  string
}

// Registry wraps the Consul agent API for register/deregister.
type Registry struct {
	api *consulapi.Client
}

// NewRegistry creates a Consul registry client. The token may be empty when
// ACLs are disabled.
func NewRegistry(addr, token string) (*Registry, error) {
	config := consulapi.DefaultConfig()
	config.Address = addr
	if token != "" {
		config.Token = token
	}

	client, err := consulapi.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return &Registry{api: client}, nil
}

// Register announces the service instance to Consul.
func (r *Registry) Register(reg *Registration) error {
	svc := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Tags:    reg.Tags,
	}
	if reg.HealthURL != "" {
		svc.Check = &consulapi.AgentServiceCheck{
			HTTP:     reg.HealthURL,
			Interval: reg.CheckInterval,
			Timeout:  reg.CheckTimeout,
		}
	}

	if err := r.api.Agent().ServiceRegister(svc); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	return nil
}

// Deregister removes the service instance from Consul.
func (r *Registry) Deregister(serviceID string) error {
	if err := r.api.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}
