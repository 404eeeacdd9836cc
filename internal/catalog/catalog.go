package catalog

import (
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rdservicos/portal/internal/models"
)

// Catalog maps service identifiers to their validation rules. It is
// loaded once at startup and never mutated afterwards, so it is safe to
// share across concurrent sessions without locking.
type Catalog struct {
	services map[string]models.ServiceDefinition
}

// Load reads the service catalog from a YAML file shaped like:
//
//	IRPF:
//	  allowed_types: [pdf, xlsx, csv]
//	  fields:
//	    - {name: nome, label: Nome Completo, required: true}
//	  folder_key: [cpf, ano]
//
// A missing or malformed file degrades to an empty catalog with a logged
// warning; every Lookup then reports not-found and callers surface a
// warning state instead of crashing.
func Load(path string) *Catalog {
	c := &Catalog{services: map[string]models.ServiceDefinition{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: service catalog unavailable (%s): %v", path, err)
		return c
	}

	var parsed map[string]models.ServiceDefinition
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		log.Printf("Warning: service catalog malformed (%s): %v", path, err)
		return c
	}

	for id, def := range parsed {
		def.ID = id
		c.services[id] = def
	}
	log.Printf("Service catalog loaded: %d services from %s", len(c.services), path)
	return c
}

// Lookup returns the definition for serviceID, or false when the
// catalog has no such service.
func (c *Catalog) Lookup(serviceID string) (models.ServiceDefinition, bool) {
	def, ok := c.services[serviceID]
	return def, ok
}

// List returns every known definition ordered by service ID.
func (c *Catalog) List() []models.ServiceDefinition {
	out := make([]models.ServiceDefinition, 0, len(c.services))
	for _, def := range c.services {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports how many services are configured. Zero means the catalog
// source was missing or malformed.
func (c *Catalog) Len() int {
	return len(c.services)
}
