package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a catalogue file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML. Unknown fields fail so typos surface immediately.
// Intervention codes are normalised to upper case.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	normalise(&c)

	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func normalise(c *Catalog) {
	up := func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

	for i := range c.Interventions {
		c.Interventions[i].Code = up(c.Interventions[i].Code)
	}
	for i := range c.CapabilityMappings {
		m := &c.CapabilityMappings[i]
		m.Primary, m.Secondary, m.Tertiary = up(m.Primary), up(m.Secondary), up(m.Tertiary)
	}
	for i := range c.CellMappings {
		m := &c.CellMappings[i]
		m.Primary, m.Secondary, m.Tertiary = up(m.Primary), up(m.Secondary), up(m.Tertiary)
	}
	for i := range c.NextSteps {
		ns := &c.NextSteps[i]
		ns.InterventionCode = up(ns.InterventionCode)
		for j := range ns.NextCodes {
			ns.NextCodes[j] = up(ns.NextCodes[j])
		}
	}
}

// Hash returns the SHA256 of the catalogue's canonical JSON
func Hash(c *Catalog) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
