package bundle

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Permission is one entry of a resource's permissions block.
type Permission struct {
	Level                string `yaml:"level"`
	UserName             string `yaml:"user_name,omitempty"`
	GroupName            string `yaml:"group_name,omitempty"`
	ServicePrincipalName string `yaml:"service_principal_name,omitempty"`
}

// SetPermissions adds a permissions block to the resource unless one exists.
// It reports whether the block was added.
func SetPermissions(res Resource, perms []Permission) (bool, error) {
	if len(perms) == 0 || MappingValue(res.Node, "permissions") != nil {
		return false, nil
	}

	var node yaml.Node
	if err := node.Encode(perms); err != nil {
		return false, fmt.Errorf("failed to encode permissions for %s: %w", res.Key, err)
	}

	SetMappingValue(res.Node, "permissions", &node)

	return true, nil
}
